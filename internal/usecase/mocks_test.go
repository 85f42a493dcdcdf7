package usecase_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"

	"github.com/qrave1/chatline/internal/domain/events"
	"github.com/qrave1/chatline/internal/domain/models"
)

// fakeConnSink реализует memory.WebsocketConnectionRepository и записывает
// все доставленные события по соединениям.
type fakeConnSink struct {
	mu     sync.Mutex
	active map[uuid.UUID]struct{}
	writes map[uuid.UUID][]events.Message
}

func newFakeConnSink() *fakeConnSink {
	return &fakeConnSink{
		active: make(map[uuid.UUID]struct{}),
		writes: make(map[uuid.UUID][]events.Message),
	}
}

func (f *fakeConnSink) Add(connID uuid.UUID, _ *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.active[connID] = struct{}{}
}

func (f *fakeConnSink) Remove(connID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.active, connID)
}

func (f *fakeConnSink) Write(connID uuid.UUID, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.active[connID]; !ok {
		return
	}

	event, ok := payload.(events.Message)
	if !ok {
		return
	}

	f.writes[connID] = append(f.writes[connID], event)
}

func (f *fakeConnSink) ConnIDs() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(f.active))
	for connID := range f.active {
		ids = append(ids, connID)
	}

	return ids
}

func (f *fakeConnSink) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.active)
}

func (f *fakeConnSink) eventsFor(connID uuid.UUID) []events.Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]events.Message, len(f.writes[connID]))
	copy(out, f.writes[connID])

	return out
}

func (f *fakeConnSink) countOfType(connID uuid.UUID, eventType string) int {
	count := 0
	for _, event := range f.eventsFor(connID) {
		if event.Type == eventType {
			count++
		}
	}

	return count
}

func (f *fakeConnSink) lastOfType(connID uuid.UUID, eventType string) (events.Message, bool) {
	all := f.eventsFor(connID)
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Type == eventType {
			return all[i], true
		}
	}

	return events.Message{}, false
}

// MockMessageRepo реализует repository.MessageRepository.
type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Append(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepo) History(ctx context.Context, roomID string) ([]models.Message, error) {
	args := m.Called(ctx, roomID)

	if history := args.Get(0); history != nil {
		return history.([]models.Message), args.Error(1)
	}

	return nil, args.Error(1)
}
