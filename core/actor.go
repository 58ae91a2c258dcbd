package core

import "time"

// ActorKind distinguishes human browser sessions from AI agent participants.
type ActorKind string

const (
	// ActorKindHuman marks a participant joined from a browser session.
	ActorKindHuman ActorKind = "human"
	// ActorKindAI marks a participant driven by an AI agent.
	ActorKindAI ActorKind = "ai"
)

// Valid reports whether the kind is one of the two supported values.
func (k ActorKind) Valid() bool {
	return k == ActorKindHuman || k == ActorKindAI
}

// Participant records one actor's membership in a room.
type Participant struct {
	Kind     ActorKind `json:"kind"`
	JoinedAt time.Time `json:"joinedAt"`
}
