package http

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/duchoang-vn/chatdesk-server/internal/config"
	"github.com/duchoang-vn/chatdesk-server/internal/proto"
)

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.ts.Client().Get(env.ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestJoinAndBroadcast(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialWS(ctx, t, env.wsURL())
	bob := dialWS(ctx, t, env.wsURL())

	sendFrame(ctx, t, alice, proto.InboundTypeJoin, proto.JoinData{Room: "room1", User: "alice"})
	mustReadEvent(ctx, t, alice, proto.EventUserJoined)

	sendFrame(ctx, t, bob, proto.InboundTypeJoin, proto.JoinData{Room: "room1", User: "bob"})
	joinEv := mustReadEvent(ctx, t, alice, proto.EventUserJoined)
	if msg := decodeMessage(t, joinEv); msg.Sender != "bob" || !strings.Contains(msg.Content, "bob") {
		t.Fatalf("unexpected join announcement: %+v", msg)
	}

	sendFrame(ctx, t, alice, proto.InboundTypeSend, proto.SendData{Room: "room1", Content: "hi"})

	msgEv := mustReadEvent(ctx, t, bob, proto.EventMessage)
	msg := decodeMessage(t, msgEv)
	if msg.Content != "hi" || msg.Sender != "alice" || msg.Room != "room1" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.TS == 0 {
		t.Fatal("expected server-assigned timestamp")
	}

	// The sender is just another occupant and receives the broadcast too.
	selfEv := mustReadEvent(ctx, t, alice, proto.EventMessage)
	if got := decodeMessage(t, selfEv); got.Content != "hi" {
		t.Fatalf("expected sender to receive own broadcast, got %+v", got)
	}
}

func TestLateJoinerReceivesHistory(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialWS(ctx, t, env.wsURL())
	sendFrame(ctx, t, alice, proto.InboundTypeJoin, proto.JoinData{Room: "room1", User: "alice"})
	mustReadEvent(ctx, t, alice, proto.EventUserJoined)

	sendFrame(ctx, t, alice, proto.InboundTypeSend, proto.SendData{Room: "room1", Content: "first"})
	sendFrame(ctx, t, alice, proto.InboundTypeSend, proto.SendData{Room: "room1", Content: "second"})
	mustReadEvent(ctx, t, alice, proto.EventMessage)
	mustReadEvent(ctx, t, alice, proto.EventMessage)

	carol := dialWS(ctx, t, env.wsURL())
	sendFrame(ctx, t, carol, proto.InboundTypeJoin, proto.JoinData{Room: "room1", User: "carol"})

	histEv := mustReadEvent(ctx, t, carol, proto.EventHistory)
	hist := decodeHistory(t, histEv)
	if hist.Room != "room1" || len(hist.Messages) != 2 {
		t.Fatalf("unexpected history: %+v", hist)
	}
	if hist.Messages[0].Content != "first" || hist.Messages[1].Content != "second" {
		t.Fatalf("history out of order: %+v", hist.Messages)
	}
}

func TestPrivateMessageReachesOnlyRecipient(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialWS(ctx, t, env.wsURL())
	bob := dialWS(ctx, t, env.wsURL())
	carol := dialWS(ctx, t, env.wsURL())

	for user, conn := range map[string]*websocket.Conn{"alice": alice, "bob": bob, "carol": carol} {
		sendFrame(ctx, t, conn, proto.InboundTypeJoin, proto.JoinData{Room: "room1", User: user})
	}
	waitFor(t, func() bool { return len(env.registry.Occupants("room1")) == 3 }, "expected three occupants")

	sendFrame(ctx, t, alice, proto.InboundTypePrivate, proto.PrivateData{To: "bob", Content: "secret"})

	privEv := mustReadEvent(ctx, t, bob, proto.EventPrivate)
	msg := decodeMessage(t, privEv)
	if msg.Content != "secret" || msg.Receiver != "bob" || msg.Sender != "alice" {
		t.Fatalf("unexpected private message: %+v", msg)
	}

	// Carol must not see the private message. Send a public follow-up and
	// verify no private frame arrives on her connection before it.
	sendFrame(ctx, t, alice, proto.InboundTypeSend, proto.SendData{Room: "room1", Content: "public"})
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, carol, &outbound); err != nil {
			t.Fatalf("read carol: %v", err)
		}
		if outbound.Event == proto.EventPrivate {
			t.Fatalf("private message leaked to carol: %+v", outbound)
		}
		if outbound.Event == proto.EventMessage {
			if got := decodeMessage(t, outbound); got.Content != "public" {
				t.Fatalf("unexpected broadcast: %+v", got)
			}
			break
		}
	}
}

func TestTypingNotification(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialWS(ctx, t, env.wsURL())
	bob := dialWS(ctx, t, env.wsURL())

	sendFrame(ctx, t, alice, proto.InboundTypeJoin, proto.JoinData{Room: "room1", User: "alice"})
	sendFrame(ctx, t, bob, proto.InboundTypeJoin, proto.JoinData{Room: "room1", User: "bob"})
	waitFor(t, func() bool { return len(env.registry.Occupants("room1")) == 2 }, "expected two occupants")

	sendFrame(ctx, t, alice, proto.InboundTypeTyping, proto.TypingData{Room: "room1"})

	ev := mustReadEvent(ctx, t, bob, proto.EventTyping)
	if msg := decodeMessage(t, ev); msg.Sender != "alice" || msg.Type != "TYPING" {
		t.Fatalf("unexpected typing event: %+v", msg)
	}

	// Typing is never logged.
	if got := env.history.All("room1"); len(got) != 0 {
		t.Fatalf("typing must not be logged, got %v", got)
	}
}

func TestDisconnectBroadcastsLeave(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialWS(ctx, t, env.wsURL())
	bob := dialWS(ctx, t, env.wsURL())

	sendFrame(ctx, t, alice, proto.InboundTypeJoin, proto.JoinData{Room: "room1", User: "alice"})
	sendFrame(ctx, t, bob, proto.InboundTypeJoin, proto.JoinData{Room: "room1", User: "bob"})
	waitFor(t, func() bool { return len(env.registry.Occupants("room1")) == 2 }, "expected two occupants")

	_ = alice.Close(websocket.StatusNormalClosure, "bye")

	leaveEv := mustReadEvent(ctx, t, bob, proto.EventUserLeft)
	if msg := decodeMessage(t, leaveEv); !strings.Contains(msg.Content, "alice") {
		t.Fatalf("expected leave announcement naming alice, got %+v", msg)
	}

	waitFor(t, func() bool { return !env.registry.InRoom("alice", "room1") }, "expected alice removed from room")
}

func TestSendWithoutJoinIsRejected(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(ctx, t, env.wsURL())
	sendFrame(ctx, t, conn, proto.InboundTypeSend, proto.SendData{Room: "room1", Content: "hi"})

	if protoErr := mustReadError(ctx, t, conn); protoErr.Code != proto.ErrCodeNotJoined {
		t.Fatalf("expected not_joined error, got %+v", protoErr)
	}
}

func TestInboundRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.MessageRate = 1
	cfg.MessageBurst = 2
	env := newTestEnvWithConfig(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(ctx, t, env.wsURL())
	sendFrame(ctx, t, conn, proto.InboundTypeJoin, proto.JoinData{Room: "room1", User: "alice"})
	mustReadEvent(ctx, t, conn, proto.EventUserJoined)

	// Burst well past the allowance; at least one frame must be rejected.
	for i := 0; i < 5; i++ {
		sendFrame(ctx, t, conn, proto.InboundTypeSend, proto.SendData{Room: "room1", Content: "spam"})
	}

	if protoErr := mustReadError(ctx, t, conn); protoErr.Code != proto.ErrCodeRateLimited {
		t.Fatalf("expected rate_limited error, got %+v", protoErr)
	}
}

func TestUnknownFrameTypeIsRejected(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(ctx, t, env.wsURL())
	sendFrame(ctx, t, conn, "chat.unknown", struct{}{})

	if protoErr := mustReadError(ctx, t, conn); protoErr.Code != proto.ErrCodeInvalidType {
		t.Fatalf("expected invalid_message error, got %+v", protoErr)
	}
}
