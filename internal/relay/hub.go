// Package relay fans chat events out to the members of a room. Delivery is
// at-most-once: a member that is offline, or whose buffer is full, misses
// the event permanently. Persistence is a separate write path (the chat
// save endpoint) with no correlation to broadcast delivery.
package relay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	EventMessage       = "message"
	EventCounselorJoin = "counselor_join"

	sendBuffer = 32
)

type Event struct {
	Type      string         `json:"type"`
	Room      string         `json:"room"`
	SenderID  string         `json:"sender_id,omitempty"`
	Role      string         `json:"role,omitempty"`
	Text      string         `json:"text,omitempty"`
	Profile   map[string]any `json:"profile,omitempty"`
	Timestamp time.Time      `json:"timestamp"`

	// Origin identifies the emitting member so fan-out can exclude it,
	// including events that arrive back through the redis bridge.
	Origin string `json:"origin,omitempty"`
}

type Member struct {
	ID   string
	Role string
	Send chan Event

	origin string
}

func NewMember(id, role string) *Member {
	return &Member{
		ID:     id,
		Role:   role,
		Send:   make(chan Event, sendBuffer),
		origin: uuid.NewString(),
	}
}

type roomState struct {
	members map[*Member]bool
	cancel  context.CancelFunc
}

// Hub tracks room membership for this process. With a redis client attached
// every broadcast goes through the room's pub/sub channel, so members on
// other instances receive it too; without one, fan-out is local only.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*roomState
	rdb   *redis.Client
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		rooms: make(map[string]*roomState),
		rdb:   rdb,
	}
}

func channelFor(room string) string { return "chat:" + room }

func (h *Hub) Join(room string, m *Member) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.rooms[room]
	if !ok {
		state = &roomState{members: make(map[*Member]bool)}
		if h.rdb != nil {
			ctx, cancel := context.WithCancel(context.Background())
			state.cancel = cancel
			go h.subscribe(ctx, room)
		}
		h.rooms[room] = state
	}
	state.members[m] = true
}

func (h *Hub) Leave(room string, m *Member) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.rooms[room]
	if !ok {
		return
	}
	if _, present := state.members[m]; !present {
		return
	}
	delete(state.members, m)
	close(m.Send)
	if len(state.members) == 0 {
		if state.cancel != nil {
			state.cancel()
		}
		delete(h.rooms, room)
	}
}

// Broadcast delivers the event to every room member except its sender.
func (h *Hub) Broadcast(ctx context.Context, event Event, from *Member) {
	if from != nil {
		event.Origin = from.origin
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if h.rdb != nil {
		payload, err := json.Marshal(event)
		if err != nil {
			return
		}
		// no retry; a failed publish is a lost event
		h.rdb.Publish(ctx, channelFor(event.Room), payload)
		return
	}
	h.deliver(event)
}

func (h *Hub) deliver(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	state, ok := h.rooms[event.Room]
	if !ok {
		return
	}
	for m := range state.members {
		if event.Origin != "" && m.origin == event.Origin {
			continue
		}
		select {
		case m.Send <- event:
		default:
			// slow member: drop rather than block the room
		}
	}
}

func (h *Hub) subscribe(ctx context.Context, room string) {
	sub := h.rdb.Subscribe(ctx, channelFor(room))
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			h.deliver(event)
		}
	}
}
