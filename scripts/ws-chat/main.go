package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/duchoang-vn/chatdesk-server/internal/proto"
)

// Minimal terminal client for poking at the server. Type to chat,
// "/to <user> <text>" for a private message, Ctrl+C to exit.
func main() {
	if err := run(); err != nil {
		log.Printf("ws-chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username")
	room := flag.String("room", "support", "room to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(frameType string, data any) {
		payload, err := json.Marshal(data)
		if err != nil {
			log.Printf("marshal %s: %v", frameType, err)
			return
		}
		if writeErr := wsjson.Write(ctx, conn, proto.Inbound{Type: frameType, Data: payload}); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	send(proto.InboundTypeJoin, proto.JoinData{Room: *room, User: *user})

	fmt.Printf("Connected to %s as %s in room %s\n", *addr, *user, *room)
	fmt.Println("Type messages and press Enter to send. /to <user> <text> for private. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if rest, ok := strings.CutPrefix(line, "/to "); ok {
			to, text, found := strings.Cut(rest, " ")
			if !found {
				fmt.Println("usage: /to <user> <text>")
				continue
			}
			send(proto.InboundTypePrivate, proto.PrivateData{To: to, Content: text, Room: *room})
			continue
		}

		send(proto.InboundTypeSend, proto.SendData{Room: *room, Content: line})
	}

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		printFrame(outbound)
	}
}

func printFrame(outbound proto.Outbound) {
	if outbound.Type == proto.OutboundTypeError && outbound.Error != nil {
		fmt.Printf("! error [%s]: %s\n", outbound.Error.Code, outbound.Error.Msg)
		return
	}

	raw, err := json.Marshal(outbound.Data)
	if err != nil {
		log.Printf("marshal outbound data: %v", err)
		return
	}

	switch outbound.Event {
	case proto.EventMessage, proto.EventPrivate:
		var msg proto.MessagePayload
		if json.Unmarshal(raw, &msg) == nil {
			prefix := ""
			if outbound.Event == proto.EventPrivate {
				prefix = "(private) "
			}
			fmt.Printf("%s%s: %s\n", prefix, msg.Sender, msg.Content)
		}
	case proto.EventUserJoined, proto.EventUserLeft:
		var msg proto.MessagePayload
		if json.Unmarshal(raw, &msg) == nil {
			fmt.Printf("* %s\n", msg.Content)
		}
	case proto.EventTyping:
		var msg proto.MessagePayload
		if json.Unmarshal(raw, &msg) == nil {
			fmt.Printf("* %s is typing...\n", msg.Sender)
		}
	case proto.EventHistory:
		var hist proto.HistoryPayload
		if json.Unmarshal(raw, &hist) == nil {
			for _, msg := range hist.Messages {
				fmt.Printf("[history] %s: %s\n", msg.Sender, msg.Content)
			}
		}
	}
}
