// Package realtime fans live events out to subscribers grouped in named rooms.
package realtime

import (
	"sync"
	"time"
)

const subscriberBuffer = 16

// Event is one message pushed to a room.
type Event struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sent_at"`
}

// Publisher emits events into rooms.
type Publisher interface {
	Publish(room, name string, payload interface{})
}

// Subscription receives the events of the rooms it joined.
type Subscription struct {
	C     <-chan Event
	ch    chan Event
	rooms []string
}

// Hub is an in-process room registry.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Subscription]struct{})}
}

// Subscribe joins rooms and returns the subscription. Callers must Unsubscribe.
func (h *Hub) Subscribe(rooms ...string) *Subscription {
	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch, rooms: rooms}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range rooms {
		members, ok := h.rooms[room]
		if !ok {
			members = make(map[*Subscription]struct{})
			h.rooms[room] = members
		}
		members[sub] = struct{}{}
	}
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range sub.rooms {
		members := h.rooms[room]
		if _, ok := members[sub]; !ok {
			continue
		}
		delete(members, sub)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	close(sub.ch)
	sub.rooms = nil
}

// Publish delivers without blocking; slow subscribers drop events.
func (h *Hub) Publish(room, name string, payload interface{}) {
	event := Event{Name: name, Payload: payload, SentAt: time.Now()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.rooms[room] {
		select {
		case sub.ch <- event:
		default:
		}
	}
}

// Subscribers returns the number of subscriptions in room.
func (h *Hub) Subscribers(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Discard is a Publisher that drops every event.
type Discard struct{}

func (Discard) Publish(room, name string, payload interface{}) {}
