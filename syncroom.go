// Package syncroom provides the owned context object tying the engine
// together: the room registry, the tool gate, the broadcaster, the watcher
// and the agent memory store, constructed once at process start and passed to
// the transport layer. Nothing here is a package-level global; tests build a
// fresh SyncRoom per case for full isolation.
//
// Typical usage:
//
//	sr := syncroom.New(func(o *syncroom.Options) {
//	    o.Experience = experience.NewBuiltin()
//	})
//	rm := sr.CreateRoom()
//	actorID, _ := sr.JoinRoom(rm.ID, "alice", core.ActorKindHuman)
//	out, err := sr.Invoke(ctx, rm.ID, "counter.increment", actorID, nil, "")
package syncroom

import (
	"context"
	"time"

	"github.com/syncroom/syncroom/broadcast"
	"github.com/syncroom/syncroom/core"
	"github.com/syncroom/syncroom/gate"
	"github.com/syncroom/syncroom/logging"
	"github.com/syncroom/syncroom/memory"
	"github.com/syncroom/syncroom/room"
	"github.com/syncroom/syncroom/watch"
)

// Options configures a SyncRoom instance.
type Options struct {
	// Experience is the injected tool table. May be nil; invocations then
	// fail with core.ErrExperienceUnavailable until ReloadExperience.
	Experience *core.Experience

	// MemoryStore overrides the default in-memory agent scratch store.
	MemoryStore core.MemoryStore

	// Logger receives engine logs. Defaults to NoOpLogger.
	Logger logging.Logger

	// WatchRecheckInterval overrides the watcher's re-check cadence.
	WatchRecheckInterval time.Duration
}

// SyncRoom is the engine façade: one instance owns all process-wide room and
// memory registries.
type SyncRoom struct {
	registry    *room.Registry
	memoryStore core.MemoryStore
	broadcaster *broadcast.Broadcaster
	gate        *gate.Gate
	watcher     *watch.Watcher
	logger      logging.Logger
}

// New constructs a SyncRoom with safe in-memory defaults.
func New(optFns ...func(o *Options)) *SyncRoom {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.MemoryStore == nil {
		opts.MemoryStore = memory.NewInMemoryStore()
	}

	registry := room.NewRegistry()
	broadcaster := broadcast.NewBroadcaster(opts.Logger)

	return &SyncRoom{
		registry:    registry,
		memoryStore: opts.MemoryStore,
		broadcaster: broadcaster,
		gate:        gate.New(registry, opts.MemoryStore, broadcaster, opts.Experience, opts.Logger),
		watcher:     watch.NewWatcher(opts.WatchRecheckInterval),
		logger:      opts.Logger,
	}
}

// Registry exposes the room registry.
func (s *SyncRoom) Registry() *room.Registry { return s.registry }

// Gate exposes the tool gate.
func (s *SyncRoom) Gate() *gate.Gate { return s.gate }

// Broadcaster exposes the push fan-out.
func (s *SyncRoom) Broadcaster() *broadcast.Broadcaster { return s.broadcaster }

// Watcher exposes the long-poll primitive.
func (s *SyncRoom) Watcher() *watch.Watcher { return s.watcher }

// Memory exposes the agent scratch store.
func (s *SyncRoom) Memory() core.MemoryStore { return s.memoryStore }

// experienceID names the loaded experience, or empty when none is.
func (s *SyncRoom) experienceID() string {
	if exp := s.gate.Experience(); exp != nil {
		return exp.ID
	}
	return ""
}

// CreateRoom allocates a fresh room bound to the loaded experience.
func (s *SyncRoom) CreateRoom() *core.Room {
	rm := s.registry.Create(s.experienceID())
	s.logger.Info("room.created", "room_id", rm.ID, "experience_id", rm.ExperienceID)
	return rm
}

// JoinRoom allocates an actor identity in the room (creating the room on
// demand) and broadcasts the presence change. Both the pull join endpoint and
// the push channel join use this same path, so ordinals never collide across
// transports.
func (s *SyncRoom) JoinRoom(roomID, username string, kind core.ActorKind) (string, *core.Room) {
	rm := s.registry.GetOrCreate(roomID, s.experienceID())
	actorID := rm.Join(username, kind)
	s.logger.Info("room.joined", "room_id", rm.ID, "actor", actorID)
	s.broadcaster.PresenceChanged(rm.ID, actorID, rm.Participants())
	return actorID, rm
}

// LeaveRoom removes a participant and broadcasts the presence change. The
// actor's ordinal stays consumed; a rejoining username gets a fresh identity.
func (s *SyncRoom) LeaveRoom(roomID, actorID string) error {
	rm, ok := s.registry.Get(roomID)
	if !ok {
		return core.NewRoomNotFound(roomID)
	}
	if !rm.Leave(actorID) {
		return &core.NotFoundError{Kind: "actor", ID: actorID}
	}
	s.logger.Info("room.left", "room_id", roomID, "actor", actorID)
	s.broadcaster.PresenceChanged(roomID, actorID, rm.Participants())
	return nil
}

// Invoke funnels one tool invocation through the gate.
func (s *SyncRoom) Invoke(ctx context.Context, roomID, toolName, actorID string, rawInput map[string]any, owner string) (any, error) {
	return s.gate.Invoke(ctx, roomID, toolName, actorID, rawInput, owner)
}

// AwaitEvents blocks on the room's event log per the watcher contract.
func (s *SyncRoom) AwaitEvents(ctx context.Context, roomID string, since int64, timeout time.Duration) (watch.Result, error) {
	rm, ok := s.registry.Get(roomID)
	if !ok {
		return watch.Result{}, core.NewRoomNotFound(roomID)
	}
	return s.watcher.Await(ctx, rm, since, timeout)
}

// ReloadExperience swaps the injected tool table and notifies all rooms.
func (s *SyncRoom) ReloadExperience(exp *core.Experience) {
	s.gate.ReloadExperience(exp)
}
