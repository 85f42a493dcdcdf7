package memory

import (
	"sync"

	"github.com/google/uuid"
)

// RoomMembersRepository хранит множества участников комнат в памяти.
// Комната существует только пока в ней есть хотя бы один участник.
type RoomMembersRepository interface {
	// AddMember creates the room when needed, adding the same connection
	// twice is a no-op.
	AddMember(roomID string, connID uuid.UUID)

	// RemoveMember drops the connection from the room and deletes the
	// room once its member set is empty.
	RemoveMember(roomID string, connID uuid.UUID)

	Members(roomID string) []uuid.UUID

	Exists(roomID string) bool

	// Rooms returns the identifiers of all non-empty rooms.
	Rooms() []string
}

type roomMembersRepository struct {
	members map[string]map[uuid.UUID]struct{}
	mu      sync.RWMutex
}

func NewRoomMembersRepository() RoomMembersRepository {
	return &roomMembersRepository{
		members: make(map[string]map[uuid.UUID]struct{}),
	}
}

func (r *roomMembersRepository) AddMember(roomID string, connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[roomID]; !ok {
		r.members[roomID] = make(map[uuid.UUID]struct{})
	}

	r.members[roomID][connID] = struct{}{}
}

func (r *roomMembersRepository) RemoveMember(roomID string, connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[roomID]
	if !ok {
		return
	}

	delete(set, connID)

	if len(set) == 0 {
		delete(r.members, roomID)
	}
}

func (r *roomMembersRepository) Members(roomID string) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.members[roomID]
	if !ok {
		return nil
	}

	members := make([]uuid.UUID, 0, len(set))
	for connID := range set {
		members = append(members, connID)
	}

	return members
}

func (r *roomMembersRepository) Exists(roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.members[roomID]
	return ok
}

func (r *roomMembersRepository) Rooms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]string, 0, len(r.members))
	for roomID := range r.members {
		rooms = append(rooms, roomID)
	}

	return rooms
}
