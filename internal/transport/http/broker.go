package http

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/duchoang-vn/chatdesk-server/internal/chat"
	"github.com/duchoang-vn/chatdesk-server/internal/proto"
)

const subscriberBuffer = 32

// subscriber is a live connection's outbound frame queue.
type subscriber struct {
	id     string
	frames chan proto.Outbound
}

func newSubscriber(id string) *subscriber {
	return &subscriber{
		id:     id,
		frames: make(chan proto.Outbound, subscriberBuffer),
	}
}

// enqueue offers a frame to the subscriber, dropping it when the queue is
// full so one slow consumer cannot stall the room.
func (s *subscriber) enqueue(frame proto.Outbound) bool {
	select {
	case s.frames <- frame:
		return true
	default:
		return false
	}
}

// Broker is the transport-side pub/sub: it resolves the router's delivery
// instructions to live connections. Topic naming lives here — room:<id> for
// regular traffic, typing:<id> for composing notices — plus a per-user queue
// for directed deliveries. Subscriptions are read at dispatch time, so a
// broadcast always reaches the current subscriber set.
type Broker struct {
	mu     sync.RWMutex
	topics map[string]map[*subscriber]struct{}
	users  map[string]map[*subscriber]struct{}
	log    *zerolog.Logger
}

// NewBroker constructs an empty broker.
func NewBroker(logger *zerolog.Logger) *Broker {
	return &Broker{
		topics: make(map[string]map[*subscriber]struct{}),
		users:  make(map[string]map[*subscriber]struct{}),
		log:    logger,
	}
}

func roomTopic(room string) string   { return "room:" + room }
func typingTopic(room string) string { return "typing:" + room }

// Subscribe adds the subscriber to a topic.
func (b *Broker) Subscribe(sub *subscriber, topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[*subscriber]struct{})
		b.topics[topic] = subs
	}
	subs[sub] = struct{}{}
}

// Unsubscribe removes the subscriber from a topic, dropping the topic entry
// once empty.
func (b *Broker) Unsubscribe(sub *subscriber, topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.topics[topic]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.topics, topic)
	}
}

// Bind associates the subscriber with a username for directed deliveries.
// One user may have several live connections.
func (b *Broker) Bind(sub *subscriber, username string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.users[username]
	if !ok {
		subs = make(map[*subscriber]struct{})
		b.users[username] = subs
	}
	subs[sub] = struct{}{}
}

// Drop removes the subscriber from every topic and user binding.
func (b *Broker) Drop(sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for topic, subs := range b.topics {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.topics, topic)
		}
	}
	for user, subs := range b.users {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.users, user)
		}
	}
}

// Dispatch fans a delivery instruction out to live connections. Directed
// deliveries to a recipient with no connection vanish silently; broadcasts to
// a topic nobody subscribes to do the same.
func (b *Broker) Dispatch(delivery chat.Delivery) {
	topic, frame, ok := frameForDelivery(delivery)
	if !ok {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	var targets map[*subscriber]struct{}
	if delivery.Kind == chat.DeliveryDirect {
		targets = b.users[delivery.Recipient]
	} else {
		targets = b.topics[topic]
	}

	for sub := range targets {
		if !sub.enqueue(frame) {
			b.log.Warn().Str("subscriber", sub.id).Str("topic", topic).Msg("dropping frame for slow consumer")
		}
	}
}
