package memory

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/qrave1/chatline/internal/application/constant"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second

	sendBuffer = 256
)

// WebsocketConnectionRepository интерфейс для работы с активными сессиями в памяти.
// Каждое соединение получает свою write pump горутину, поэтому Write никогда
// не блокирует вызывающий поток на сетевом I/O.
type WebsocketConnectionRepository interface {
	Add(connID uuid.UUID, conn *websocket.Conn)
	Remove(connID uuid.UUID)

	// Write enqueues the payload for delivery. Events to one connection
	// are delivered in enqueue order; when the buffer is full the event
	// is dropped.
	Write(connID uuid.UUID, payload any)

	ConnIDs() []uuid.UUID
	Len() int
}

type clientSender struct {
	conn *websocket.Conn
	send chan any
	once sync.Once
}

func (s *clientSender) close() {
	s.once.Do(func() {
		close(s.send)
	})
}

// run is the write pump. It owns all writes to the underlying connection,
// including keepalive pings.
func (s *clientSender) run() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := s.conn.WriteJSON(payload); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type wsConnectionRepository struct {
	// senders хранит map[conn_id]*clientSender
	senders map[uuid.UUID]*clientSender

	mu sync.RWMutex
}

func NewWSConnectionRepository() WebsocketConnectionRepository {
	return &wsConnectionRepository{
		senders: make(map[uuid.UUID]*clientSender, 10),
	}
}

func (w *wsConnectionRepository) Add(connID uuid.UUID, conn *websocket.Conn) {
	sender := &clientSender{
		conn: conn,
		send: make(chan any, sendBuffer),
	}

	w.mu.Lock()
	w.senders[connID] = sender
	w.mu.Unlock()

	go sender.run()
}

func (w *wsConnectionRepository) Remove(connID uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sender, ok := w.senders[connID]
	if !ok {
		return
	}

	delete(w.senders, connID)
	sender.close()
}

func (w *wsConnectionRepository) Write(connID uuid.UUID, payload any) {
	// The read lock is held while enqueueing so Remove cannot close the
	// channel under a concurrent send.
	w.mu.RLock()
	defer w.mu.RUnlock()

	sender, ok := w.senders[connID]
	if !ok {
		return
	}

	select {
	case sender.send <- payload:
	default:
		slog.Warn("send buffer full, dropping event", slog.String(constant.ConnID, connID.String()))
	}
}

func (w *wsConnectionRepository) ConnIDs() []uuid.UUID {
	w.mu.RLock()
	defer w.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(w.senders))
	for connID := range w.senders {
		ids = append(ids, connID)
	}

	return ids
}

func (w *wsConnectionRepository) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return len(w.senders)
}
