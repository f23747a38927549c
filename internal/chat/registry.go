package chat

import (
	"sync"

	"github.com/rs/zerolog"
)

// Registry tracks room occupancy and the directory of known participants.
// It is the synchronization boundary for membership state: every method is
// safe for concurrent use without caller-side locking.
//
// Rooms exist implicitly: an occupant set appears on first join and its entry
// is removed as soon as the last occupant leaves. A participant may occupy
// more than one room at a time; nothing here enforces exclusivity.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
	users map[string]*Participant
	log   *zerolog.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(logger *zerolog.Logger) *Registry {
	return &Registry{
		rooms: make(map[string]map[string]struct{}),
		users: make(map[string]*Participant),
		log:   logger,
	}
}

// Join adds username to the room's occupant set, creating the set on first
// join. A participant record with role CUSTOMER and status ONLINE is created
// if the username is unknown; an existing record keeps its role and status.
// Idempotent.
func (r *Registry) Join(room, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	occupants, ok := r.rooms[room]
	if !ok {
		occupants = make(map[string]struct{})
		r.rooms[room] = occupants
	}
	occupants[username] = struct{}{}

	user, ok := r.users[username]
	if !ok {
		user = &Participant{
			Username:    username,
			DisplayName: username,
			Role:        RoleCustomer,
			Status:      StatusOnline,
		}
		r.users[username] = user
	}
	user.CurrentRoom = room

	r.log.Info().
		Str("user", username).
		Str("room", room).
		Int("occupants", len(occupants)).
		Msg("user added to room")
}

// Leave removes username from the room's occupant set. A no-op when either
// the room or the membership does not exist. The occupant-set entry is
// deleted once it becomes empty, so the room drops out of ActiveRooms
// independently of any logged history.
func (r *Registry) Leave(room, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	occupants, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(occupants, username)
	if len(occupants) == 0 {
		delete(r.rooms, room)
	}

	if user, ok := r.users[username]; ok && user.CurrentRoom == room {
		user.CurrentRoom = ""
	}

	r.log.Info().Str("user", username).Str("room", room).Msg("user removed from room")
}

// Occupants returns the usernames currently in room, in no particular order.
// Unknown rooms yield an empty slice.
func (r *Registry) Occupants(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	occupants := r.rooms[room]
	out := make([]string, 0, len(occupants))
	for name := range occupants {
		out = append(out, name)
	}
	return out
}

// InRoom reports whether username is currently in room.
func (r *Registry) InRoom(username, room string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	occupants, ok := r.rooms[room]
	if !ok {
		return false
	}
	_, in := occupants[username]
	return in
}

// Lookup returns a copy of the participant record for username.
func (r *Registry) Lookup(username string) (Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return Participant{}, false
	}
	return *user, true
}

// SetRole updates the role of a known participant. Unknown usernames are
// ignored.
func (r *Registry) SetRole(username string, role Role) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return
	}
	user.Role = role
	r.log.Info().Str("user", username).Str("role", string(role)).Msg("user role updated")
}

// SetStatus updates the presence status of a known participant. Unknown
// usernames are ignored.
func (r *Registry) SetStatus(username string, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return
	}
	user.Status = status
}

// BindSession records the transport session id on a known participant.
func (r *Registry) BindSession(username, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[username]; ok {
		user.SessionID = sessionID
	}
}

// ActiveRooms returns the ids of rooms with at least one occupant.
func (r *Registry) ActiveRooms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.rooms))
	for room := range r.rooms {
		out = append(out, room)
	}
	return out
}

// TotalKnownParticipants returns the number of participant records created
// this process lifetime. Records outlive membership, so this counts everyone
// ever seen, not just those currently in a room.
func (r *Registry) TotalKnownParticipants() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Reset clears all rooms and participants. Administrative cleanup only.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms = make(map[string]map[string]struct{})
	r.users = make(map[string]*Participant)
	r.log.Info().Msg("all rooms and users cleared")
}
