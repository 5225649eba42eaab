package relay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, m *Member) Event {
	t.Helper()
	select {
	case event := <-m.Send:
		return event
	case <-time.After(time.Second):
		t.Fatal("expected an event, got none")
		return Event{}
	}
}

func requireNoEvent(t *testing.T, m *Member) {
	t.Helper()
	select {
	case event := <-m.Send:
		t.Fatalf("unexpected event: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastExcludesSender(t *testing.T) {
	hub := NewHub(nil)
	student := NewMember("Nairobi High", "student")
	counsellor := NewMember("Jane Wanjiku", "counsellor")
	hub.Join("room-1", student)
	hub.Join("room-1", counsellor)

	hub.Broadcast(context.Background(), Event{
		Type: EventMessage, Room: "room-1", SenderID: student.ID, Role: student.Role, Text: "hello",
	}, student)

	event := recv(t, counsellor)
	require.Equal(t, EventMessage, event.Type)
	require.Equal(t, "hello", event.Text)
	require.Equal(t, "Nairobi High", event.SenderID)
	require.False(t, event.Timestamp.IsZero())

	requireNoEvent(t, student)
}

func TestBroadcastScopedToRoom(t *testing.T) {
	hub := NewHub(nil)
	a := NewMember("a", "student")
	b := NewMember("b", "student")
	hub.Join("room-1", a)
	hub.Join("room-2", b)

	hub.Broadcast(context.Background(), Event{Type: EventMessage, Room: "room-1", Text: "hi"}, nil)

	recv(t, a)
	requireNoEvent(t, b)
}

func TestCounselorJoinNotice(t *testing.T) {
	hub := NewHub(nil)
	student := NewMember("Nairobi High", "student")
	counsellor := NewMember("Jane Wanjiku", "counsellor")
	hub.Join("room-1", student)
	hub.Join("room-1", counsellor)

	hub.Broadcast(context.Background(), Event{
		Type: EventCounselorJoin, Room: "room-1", Role: "counsellor",
		Profile: map[string]any{"name": "Jane Wanjiku", "specialty": "Exam stress"},
	}, counsellor)

	event := recv(t, student)
	require.Equal(t, EventCounselorJoin, event.Type)
	require.Equal(t, "Jane Wanjiku", event.Profile["name"])
}

func TestLeaveClosesMember(t *testing.T) {
	hub := NewHub(nil)
	m := NewMember("a", "student")
	hub.Join("room-1", m)
	hub.Leave("room-1", m)

	_, open := <-m.Send
	require.False(t, open)

	// leaving twice must not panic on the closed channel
	hub.Leave("room-1", m)

	// the emptied room is gone; broadcasting into it is a no-op
	hub.Broadcast(context.Background(), Event{Type: EventMessage, Room: "room-1", Text: "x"}, nil)
}

// A member that stops draining its buffer loses events instead of blocking
// the room: at-most-once, no redelivery.
func TestSlowMemberDropsEvents(t *testing.T) {
	hub := NewHub(nil)
	slow := NewMember("slow", "student")
	hub.Join("room-1", slow)

	for i := 0; i < sendBuffer+10; i++ {
		hub.Broadcast(context.Background(), Event{Type: EventMessage, Room: "room-1", Text: "x"}, nil)
	}

	require.Len(t, slow.Send, sendBuffer)
}
