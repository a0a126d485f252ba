package lifecycle

import (
	"sync"

	"github.com/cardanohealth/vault/internal/entity"
)

// ActorDirectory resolves an actorID to its registered public keys.
// Wrap rejects any actorID not present here.
type ActorDirectory interface {
	Get(actorID string) (entity.Actor, bool)
}

// MemoryActorDirectory is a plain-map ActorDirectory used by tests and
// single-process deployments.
type MemoryActorDirectory struct {
	mu     sync.RWMutex
	actors map[string]entity.Actor
}

// NewMemoryActorDirectory builds an empty directory.
func NewMemoryActorDirectory() *MemoryActorDirectory {
	return &MemoryActorDirectory{actors: make(map[string]entity.Actor)}
}

// Register adds or replaces an actor's registration.
func (d *MemoryActorDirectory) Register(actor entity.Actor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actors[actor.ActorID] = actor
}

// Deactivate marks an actor inactive without removing its registration
// (a deactivated actor can still be looked up for historical envelopes
// but should not be included in new wrap requests by policy above this
// layer).
func (d *MemoryActorDirectory) Deactivate(actorID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if a, ok := d.actors[actorID]; ok {
		a.Status = entity.ActorInactive
		d.actors[actorID] = a
	}
}

func (d *MemoryActorDirectory) Get(actorID string) (entity.Actor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.actors[actorID]
	return a, ok
}

var _ ActorDirectory = (*MemoryActorDirectory)(nil)
