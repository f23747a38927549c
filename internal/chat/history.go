package chat

import "sync"

// History is the per-room ordered log of delivered messages, kept in memory
// for the process lifetime. Safe for concurrent use.
type History struct {
	mu        sync.RWMutex
	rooms     map[string][]Message
	retention int
}

// NewHistory constructs an empty history. retention caps how many messages
// each room keeps, dropping the oldest past the cap; retention <= 0 keeps
// everything.
func NewHistory(retention int) *History {
	return &History{
		rooms:     make(map[string][]Message),
		retention: retention,
	}
}

// Append adds a message to the log of its room, preserving arrival order.
// Messages without a room id are not logged.
func (h *History) Append(msg Message) {
	if msg.Room == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	log := append(h.rooms[msg.Room], msg)
	if h.retention > 0 && len(log) > h.retention {
		trimmed := make([]Message, h.retention)
		copy(trimmed, log[len(log)-h.retention:])
		log = trimmed
	}
	h.rooms[msg.Room] = log
}

// Recent returns up to the last limit messages for room in chronological
// order. Unknown rooms and limit <= 0 yield an empty slice; a limit past the
// log size returns the whole log.
func (h *History) Recent(room string, limit int) []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	log := h.rooms[room]
	if limit <= 0 {
		return []Message{}
	}
	if limit > len(log) {
		limit = len(log)
	}

	out := make([]Message, limit)
	copy(out, log[len(log)-limit:])
	return out
}

// All returns the full ordered log for room, empty when it has none.
func (h *History) All(room string) []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	log := h.rooms[room]
	out := make([]Message, len(log))
	copy(out, log)
	return out
}

// Reset drops every room's log. Administrative cleanup only.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rooms = make(map[string][]Message)
}
