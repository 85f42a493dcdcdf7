package memory

import (
	"sync"

	"github.com/google/uuid"
)

// Identity is what the relay knows about one live connection. RoomID is
// empty until the first join.
type Identity struct {
	DisplayName string
	RoomID      string
}

// ConnectionRepository хранит идентичность активных соединений в памяти
type ConnectionRepository interface {
	// Register creates an empty entry, no-op when already present.
	Register(connID uuid.UUID)

	// SetIdentity updates the display name and current room. Unknown
	// connections are ignored, callers must Register first.
	SetIdentity(connID uuid.UUID, displayName, roomID string)

	Lookup(connID uuid.UUID) (Identity, bool)

	// Remove deletes the entry, no error when absent.
	Remove(connID uuid.UUID)
}

type connectionRepository struct {
	conns map[uuid.UUID]Identity
	mu    sync.RWMutex
}

func NewConnectionRepository() ConnectionRepository {
	return &connectionRepository{
		conns: make(map[uuid.UUID]Identity),
	}
}

func (r *connectionRepository) Register(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connID]; ok {
		return
	}

	r.conns[connID] = Identity{}
}

func (r *connectionRepository) SetIdentity(connID uuid.UUID, displayName, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connID]; !ok {
		return
	}

	r.conns[connID] = Identity{DisplayName: displayName, RoomID: roomID}
}

func (r *connectionRepository) Lookup(connID uuid.UUID) (Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ident, ok := r.conns[connID]
	return ident, ok
}

func (r *connectionRepository) Remove(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, connID)
}
