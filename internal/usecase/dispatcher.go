package usecase

import (
	"github.com/google/uuid"

	"github.com/qrave1/chatline/internal/domain/events"
	"github.com/qrave1/chatline/internal/infra/adapters/memory"
)

// Dispatcher доставляет события нужной аудитории. Порядок доставки в рамках
// одной комнаты совпадает с порядком вызовов.
type Dispatcher interface {
	ToConnection(connID uuid.UUID, event events.Message)

	// ToRoom delivers to every member, sender included.
	ToRoom(roomID string, event events.Message)

	// ToRoomExcept delivers to every member except the acting connection.
	ToRoomExcept(roomID string, actorID uuid.UUID, event events.Message)

	// ToAll delivers to every connection regardless of room.
	ToAll(event events.Message)
}

type dispatcher struct {
	wsRepo      memory.WebsocketConnectionRepository
	membersRepo memory.RoomMembersRepository
}

func NewDispatcher(
	wsRepo memory.WebsocketConnectionRepository,
	membersRepo memory.RoomMembersRepository,
) Dispatcher {
	return &dispatcher{
		wsRepo:      wsRepo,
		membersRepo: membersRepo,
	}
}

func (d *dispatcher) ToConnection(connID uuid.UUID, event events.Message) {
	d.wsRepo.Write(connID, event)
}

func (d *dispatcher) ToRoom(roomID string, event events.Message) {
	for _, connID := range d.membersRepo.Members(roomID) {
		d.wsRepo.Write(connID, event)
	}
}

func (d *dispatcher) ToRoomExcept(roomID string, actorID uuid.UUID, event events.Message) {
	for _, connID := range d.membersRepo.Members(roomID) {
		if connID == actorID {
			continue
		}

		d.wsRepo.Write(connID, event)
	}
}

func (d *dispatcher) ToAll(event events.Message) {
	for _, connID := range d.wsRepo.ConnIDs() {
		d.wsRepo.Write(connID, event)
	}
}
