package chat

import (
	"time"

	"github.com/rs/zerolog"
)

// DeliveryKind tells the transport layer how to dispatch a routed message.
type DeliveryKind int

const (
	// DeliveryNone means nothing should be sent.
	DeliveryNone DeliveryKind = iota
	// DeliveryBroadcast targets every current occupant of a room topic.
	DeliveryBroadcast
	// DeliveryDirect targets a single named recipient.
	DeliveryDirect
)

// Topic distinguishes broadcast channels within a room. The transport layer
// owns the actual topic naming; the router only picks the channel.
type Topic string

const (
	// TopicRoom carries regular room traffic.
	TopicRoom Topic = "room"
	// TopicTyping carries composing notifications.
	TopicTyping Topic = "typing"
)

// Delivery is the instruction returned to the transport layer. The zero
// value means no delivery.
type Delivery struct {
	Kind      DeliveryKind
	Room      string // broadcast only
	Topic     Topic  // broadcast only
	Recipient string // direct only
	Message   Message
}

// SessionContext is the transport-owned per-connection state. The router
// annotates it on join so the transport can attribute a later disconnect;
// the core never stores it.
type SessionContext struct {
	ID       string
	Username string
	Room     string
}

// Router classifies inbound message events, consults the registry, appends
// to history where applicable, and reports the resulting delivery
// instruction. It performs no network I/O itself.
type Router struct {
	registry *Registry
	history  *History
	now      func() time.Time
	log      *zerolog.Logger
}

// NewRouter wires a router over the given registry and history.
func NewRouter(registry *Registry, history *History, logger *zerolog.Logger) *Router {
	return &Router{
		registry: registry,
		history:  history,
		now:      time.Now,
		log:      logger,
	}
}

// SendMessage stamps the message with room and receipt time, logs it, and
// returns a broadcast instruction for the room. The occupant set is resolved
// by the transport at delivery time, not snapshotted here.
func (rt *Router) SendMessage(room string, msg Message) Delivery {
	if msg.Type == "" {
		msg.Type = MessageChat
	}
	msg.Room = room
	msg.Timestamp = rt.now()

	rt.history.Append(msg)

	rt.log.Info().
		Str("room", room).
		Str("sender", msg.Sender).
		Msg("message routed")

	return Delivery{Kind: DeliveryBroadcast, Room: room, Topic: TopicRoom, Message: msg}
}

// AddUser registers the sender in the room, binds the transport session to
// the (username, room) pair, and returns a synthesized JOIN announcement for
// broadcast. JOIN announcements are not logged to history.
func (rt *Router) AddUser(room string, msg Message, sess *SessionContext) Delivery {
	if sess != nil {
		sess.Username = msg.Sender
		sess.Room = room
	}

	rt.registry.Join(room, msg.Sender)
	if sess != nil {
		rt.registry.BindSession(msg.Sender, sess.ID)
	}

	rt.log.Info().Str("user", msg.Sender).Str("room", room).Msg("user joined room")

	join := Message{
		Type:      MessageJoin,
		Content:   msg.Sender + " joined the conversation",
		Sender:    msg.Sender,
		Room:      room,
		Timestamp: rt.now(),
	}
	return Delivery{Kind: DeliveryBroadcast, Room: room, Topic: TopicRoom, Message: join}
}

// SendPrivate stamps a direct message and returns a single-recipient
// instruction. The message is logged only when it carries a room id.
func (rt *Router) SendPrivate(msg Message) Delivery {
	msg.Timestamp = rt.now()

	if msg.Room != "" {
		rt.history.Append(msg)
	}

	rt.log.Info().
		Str("sender", msg.Sender).
		Str("receiver", msg.Receiver).
		Msg("private message routed")

	return Delivery{Kind: DeliveryDirect, Recipient: msg.Receiver, Message: msg}
}

// Typing stamps a composing notification and returns a broadcast instruction
// on the room's typing topic. Never logged.
func (rt *Router) Typing(room string, msg Message) Delivery {
	msg.Type = MessageTyping
	msg.Room = room
	msg.Timestamp = rt.now()

	return Delivery{Kind: DeliveryBroadcast, Room: room, Topic: TopicTyping, Message: msg}
}

// Disconnect removes the user from the room, marks them offline, and returns
// a synthesized LEAVE announcement for broadcast. When the session never
// joined (empty username or room), nothing is removed and no delivery is
// produced.
func (rt *Router) Disconnect(username, room string) Delivery {
	if username == "" || room == "" {
		return Delivery{}
	}

	rt.registry.Leave(room, username)
	rt.registry.SetStatus(username, StatusOffline)

	rt.log.Info().Str("user", username).Str("room", room).Msg("user disconnected")

	leave := Message{
		Type:      MessageLeave,
		Content:   username + " left the conversation",
		Sender:    username,
		Room:      room,
		Timestamp: rt.now(),
	}
	return Delivery{Kind: DeliveryBroadcast, Room: room, Topic: TopicRoom, Message: leave}
}
