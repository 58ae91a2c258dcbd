// Package broadcast implements the push side of room notifications: a
// per-room set of live subscribers receiving state-change and presence
// messages. Delivery is best-effort; a slow or disconnected subscriber simply
// misses the push and reconciles later through the pull channel.
package broadcast

import (
	"sync"

	"github.com/syncroom/syncroom/core"
	"github.com/syncroom/syncroom/logging"
)

// Subscriber channel depth. A subscriber that falls this far behind starts
// dropping messages instead of blocking the publisher.
const subscriberBuffer = 32

// MessageType enumerates outbound push message kinds.
type MessageType string

const (
	// TypeJoined is the initial snapshot reply to a join.
	TypeJoined MessageType = "joined"
	// TypePresenceUpdate announces a participant joining or leaving.
	TypePresenceUpdate MessageType = "presence_update"
	// TypeSharedStateUpdate announces a committed state mutation.
	TypeSharedStateUpdate MessageType = "shared_state_update"
	// TypeExperienceUpdated announces a reloaded tool table.
	TypeExperienceUpdated MessageType = "experience_updated"
)

// Message is one push notification. Fields are populated per type.
type Message struct {
	Type         MessageType                 `json:"type"`
	RoomID       string                      `json:"roomId"`
	ActorID      string                      `json:"actorId,omitempty"`
	Tool         string                      `json:"tool,omitempty"`
	State        map[string]any              `json:"state,omitempty"`
	Event        *core.ToolEvent             `json:"event,omitempty"`
	Events       []core.ToolEvent            `json:"events,omitempty"`
	Participants map[string]core.Participant `json:"participants,omitempty"`
	Tools        []core.ToolDescriptor       `json:"tools,omitempty"`
}

// Subscription is one live push channel for a room. Receive from C; call
// Close (or Broadcaster.Unsubscribe) when the connection goes away.
type Subscription struct {
	roomID string
	ch     chan Message
	once   sync.Once
}

// C returns the receive channel. It is closed when the subscription ends.
func (s *Subscription) C() <-chan Message { return s.ch }

func (s *Subscription) close() {
	s.once.Do(func() { close(s.ch) })
}

// Broadcaster maintains the live subscriber set per room and fans committed
// mutations and presence changes out to it. No retry or queueing beyond the
// per-subscriber buffer.
type Broadcaster struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Subscription]struct{}
	logger logging.Logger
}

// NewBroadcaster constructs an empty broadcaster. A nil logger disables logging.
func NewBroadcaster(logger logging.Logger) *Broadcaster {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Broadcaster{
		rooms:  make(map[string]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscribe registers a new push subscriber for a room.
func (b *Broadcaster) Subscribe(roomID string) *Subscription {
	sub := &Subscription{roomID: roomID, ch: make(chan Message, subscriberBuffer)}
	b.mu.Lock()
	if b.rooms[roomID] == nil {
		b.rooms[roomID] = make(map[*Subscription]struct{})
	}
	b.rooms[roomID][sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call more
// than once.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	if subs, ok := b.rooms[sub.roomID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.rooms, sub.roomID)
		}
	}
	b.mu.Unlock()
	sub.close()
}

// SubscriberCount reports the live subscriber count for a room.
func (b *Broadcaster) SubscriberCount(roomID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rooms[roomID])
}

// Publish fans msg out to every current subscriber of the room. Subscribers
// with a full buffer are skipped.
func (b *Broadcaster) Publish(roomID string, msg Message) {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.rooms[roomID]))
	for sub := range b.rooms[roomID] {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.ch <- msg:
		default:
			b.logger.Warn("broadcast.drop", "room_id", roomID, "type", string(msg.Type))
		}
	}
}

// StateUpdated pushes a shared_state_update carrying the new state, the
// committed event and the acting actor and tool.
func (b *Broadcaster) StateUpdated(roomID, actorID, toolName string, state map[string]any, ev core.ToolEvent) {
	b.Publish(roomID, Message{
		Type:    TypeSharedStateUpdate,
		RoomID:  roomID,
		ActorID: actorID,
		Tool:    toolName,
		State:   state,
		Event:   &ev,
	})
}

// PresenceChanged pushes a presence_update carrying the full participant set.
func (b *Broadcaster) PresenceChanged(roomID, actorID string, participants map[string]core.Participant) {
	b.Publish(roomID, Message{
		Type:         TypePresenceUpdate,
		RoomID:       roomID,
		ActorID:      actorID,
		Participants: participants,
	})
}

// ExperienceUpdated pushes the reloaded tool catalog to a room.
func (b *Broadcaster) ExperienceUpdated(roomID string, catalog []core.ToolDescriptor) {
	b.Publish(roomID, Message{
		Type:   TypeExperienceUpdated,
		RoomID: roomID,
		Tools:  catalog,
	})
}
