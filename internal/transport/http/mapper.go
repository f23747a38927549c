package http

import (
	"github.com/duchoang-vn/chatdesk-server/internal/chat"
	"github.com/duchoang-vn/chatdesk-server/internal/proto"
)

func messagePayload(m chat.Message) proto.MessagePayload {
	return proto.MessagePayload{
		Type:     string(m.Type),
		Content:  m.Content,
		Sender:   m.Sender,
		Receiver: m.Receiver,
		Room:     m.Room,
		TS:       m.Timestamp.Unix(),
	}
}

func historyFrame(room string, msgs []chat.Message) proto.Outbound {
	payloads := make([]proto.MessagePayload, 0, len(msgs))
	for _, m := range msgs {
		payloads = append(payloads, messagePayload(m))
	}
	return proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: proto.EventHistory,
		Data:  proto.HistoryPayload{Room: room, Messages: payloads},
	}
}

func errorFrame(code, msg string) proto.Outbound {
	return proto.Outbound{
		Type:  proto.OutboundTypeError,
		Error: &proto.Error{Code: code, Msg: msg},
	}
}

// frameForDelivery maps a router delivery to its topic and outbound frame.
// Returns ok=false when the delivery carries nothing to send.
func frameForDelivery(d chat.Delivery) (string, proto.Outbound, bool) {
	switch d.Kind {
	case chat.DeliveryBroadcast:
		topic := roomTopic(d.Room)
		if d.Topic == chat.TopicTyping {
			topic = typingTopic(d.Room)
		}
		return topic, proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: eventForMessage(d.Message.Type),
			Data:  messagePayload(d.Message),
		}, true
	case chat.DeliveryDirect:
		return "", proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventPrivate,
			Data:  messagePayload(d.Message),
		}, true
	default:
		return "", proto.Outbound{}, false
	}
}

func eventForMessage(t chat.MessageType) string {
	switch t {
	case chat.MessageJoin:
		return proto.EventUserJoined
	case chat.MessageLeave:
		return proto.EventUserLeft
	case chat.MessageTyping:
		return proto.EventTyping
	default:
		return proto.EventMessage
	}
}
