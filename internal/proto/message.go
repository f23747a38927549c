package proto

import "encoding/json"

// Inbound is the envelope for frames coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin    = "chat.join"
	InboundTypeSend    = "chat.send"
	InboundTypePrivate = "chat.private"
	InboundTypeTyping  = "chat.typing"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// Outbound event names.
const (
	EventMessage    = "message"
	EventUserJoined = "user_joined"
	EventUserLeft   = "user_left"
	EventTyping     = "typing"
	EventHistory    = "history"
	EventPrivate    = "private"
)

// JoinData requests to join a room and declares the username.
type JoinData struct {
	Room string `json:"room"`
	User string `json:"user"`
}

// SendData is a room chat message from the client.
type SendData struct {
	Room    string `json:"room"`
	Content string `json:"content"`
}

// PrivateData is a direct message to a single user. Room is optional and
// only controls whether the message lands in that room's history.
type PrivateData struct {
	To      string `json:"to"`
	Content string `json:"content"`
	Room    string `json:"room,omitempty"`
}

// TypingData signals that the user is composing in a room.
type TypingData struct {
	Room string `json:"room"`
}

// Outbound is the envelope for frames sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// MessagePayload is the wire form of a chat message.
type MessagePayload struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver,omitempty"`
	Room     string `json:"room,omitempty"`
	TS       int64  `json:"ts"`
}

// HistoryPayload delivers recent room messages to a late joiner.
type HistoryPayload struct {
	Room     string           `json:"room"`
	Messages []MessagePayload `json:"messages"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// Protocol-level error codes.
const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotJoined   = "not_joined"
	ErrCodeRateLimited = "rate_limited"
	ErrCodeInvalidType = "invalid_message"
)
