package chat

import "time"

// MessageType classifies a chat frame.
type MessageType string

const (
	// MessageChat is a regular conversational message.
	MessageChat MessageType = "CHAT"
	// MessageJoin announces a participant entering a room.
	MessageJoin MessageType = "JOIN"
	// MessageLeave announces a participant leaving a room.
	MessageLeave MessageType = "LEAVE"
	// MessageTyping signals that a participant is composing.
	MessageTyping MessageType = "TYPING"
)

// Message is the domain model for a chat message. The router stamps Room and
// Timestamp at receipt time; after that the message is treated as immutable.
type Message struct {
	Type      MessageType
	Content   string
	Sender    string
	Receiver  string // set only for direct messages
	Room      string
	Timestamp time.Time
}

// Direct reports whether the message is addressed to a single recipient.
func (m Message) Direct() bool {
	return m.Receiver != ""
}
