package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/duchoang-vn/chatdesk-server/internal/chat"
	"github.com/duchoang-vn/chatdesk-server/internal/config"
	"github.com/duchoang-vn/chatdesk-server/internal/proto"
)

// WSHandler upgrades HTTP connections and bridges them to the fan-out
// router. Each connection owns a SessionContext remembering who joined
// where, so a dropped socket can be turned into a leave notification.
type WSHandler struct {
	router  *chat.Router
	history *chat.History
	broker  *Broker
	cfg     *config.Config
	log     *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(router *chat.Router, history *chat.History, broker *Broker, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{router: router, history: history, broker: broker, cfg: cfg, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	sess := &chat.SessionContext{ID: uuid.NewString()}
	sub := newSubscriber(sess.ID)

	h.log.Debug().Str("session", sess.ID).Msg("ws connection established")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, sess, sub)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, sub)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	// The session is gone: detach its queue first so the leave broadcast
	// only reaches the remaining occupants.
	h.broker.Drop(sub)
	h.broker.Dispatch(h.router.Disconnect(sess.Username, sess.Room))

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("session", sess.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, sess *chat.SessionContext, sub *subscriber) error {
	limiter := newMessageLimiter(h.cfg.MessageRate, h.cfg.MessageBurst)

	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		if !allowFrame(limiter) {
			sub.enqueue(errorFrame(proto.ErrCodeRateLimited, "too many messages"))
			continue
		}

		h.handleInbound(sess, sub, inbound)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, sub *subscriber) error {
	for {
		select {
		case frame := <-sub.frames:
			if err := wsjson.Write(ctx, conn, frame); err != nil {
				h.log.Error().Err(err).Str("session", sub.id).Msg("write ws frame")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) handleInbound(sess *chat.SessionContext, sub *subscriber, inbound proto.Inbound) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil || join.Room == "" || join.User == "" {
			sub.enqueue(errorFrame(proto.ErrCodeBadRequest, "room and user are required"))
			return
		}

		// Moving to another room counts as leaving the current one.
		if sess.Room != "" && sess.Room != join.Room {
			h.broker.Unsubscribe(sub, roomTopic(sess.Room))
			h.broker.Unsubscribe(sub, typingTopic(sess.Room))
			h.broker.Dispatch(h.router.Disconnect(sess.Username, sess.Room))
		}

		h.broker.Subscribe(sub, roomTopic(join.Room))
		h.broker.Subscribe(sub, typingTopic(join.Room))
		h.broker.Bind(sub, join.User)

		delivery := h.router.AddUser(join.Room, chat.Message{Type: chat.MessageJoin, Sender: join.User}, sess)

		// Hydrate the late joiner before announcing them.
		if msgs := h.history.Recent(join.Room, h.cfg.ReplayLimit); len(msgs) > 0 {
			sub.enqueue(historyFrame(join.Room, msgs))
		}

		h.broker.Dispatch(delivery)

	case proto.InboundTypeSend:
		if sess.Username == "" {
			sub.enqueue(errorFrame(proto.ErrCodeNotJoined, "join a room first"))
			return
		}
		var send proto.SendData
		if err := json.Unmarshal(inbound.Data, &send); err != nil || send.Room == "" {
			sub.enqueue(errorFrame(proto.ErrCodeBadRequest, "room is required"))
			return
		}
		h.broker.Dispatch(h.router.SendMessage(send.Room, chat.Message{
			Type:    chat.MessageChat,
			Content: send.Content,
			Sender:  sess.Username,
		}))

	case proto.InboundTypePrivate:
		if sess.Username == "" {
			sub.enqueue(errorFrame(proto.ErrCodeNotJoined, "join a room first"))
			return
		}
		var pm proto.PrivateData
		if err := json.Unmarshal(inbound.Data, &pm); err != nil || pm.To == "" {
			sub.enqueue(errorFrame(proto.ErrCodeBadRequest, "recipient is required"))
			return
		}
		h.broker.Dispatch(h.router.SendPrivate(chat.Message{
			Type:     chat.MessageChat,
			Content:  pm.Content,
			Sender:   sess.Username,
			Receiver: pm.To,
			Room:     pm.Room,
		}))

	case proto.InboundTypeTyping:
		if sess.Username == "" {
			return
		}
		var typing proto.TypingData
		if err := json.Unmarshal(inbound.Data, &typing); err != nil || typing.Room == "" {
			sub.enqueue(errorFrame(proto.ErrCodeBadRequest, "room is required"))
			return
		}
		h.broker.Dispatch(h.router.Typing(typing.Room, chat.Message{Sender: sess.Username}))

	default:
		sub.enqueue(errorFrame(proto.ErrCodeInvalidType, "unknown message type"))
	}
}
