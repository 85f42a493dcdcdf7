package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/qrave1/chatline/internal/application/constant"
	"github.com/qrave1/chatline/internal/application/metric"
	"github.com/qrave1/chatline/internal/domain/events"
	"github.com/qrave1/chatline/internal/domain/models"
	"github.com/qrave1/chatline/internal/infra/adapters/memory"
	"github.com/qrave1/chatline/internal/infra/adapters/postgres/repository"
)

// RoomUsecase владеет составом комнат и идентичностью соединений. Все
// мутации сериализованы одним мьютексом, поэтому события обрабатываются
// строго по одному, как единый поток управления.
type RoomUsecase interface {
	// Connect registers a fresh connection without identity or room.
	Connect(connID uuid.UUID, conn *websocket.Conn)

	// Disconnect runs the leave sequence exactly once and forgets the
	// connection.
	Disconnect(connID uuid.UUID)

	Join(ctx context.Context, connID uuid.UUID, event events.JoinRoomEvent) error
	Leave(connID uuid.UUID)
	SendMessage(ctx context.Context, connID uuid.UUID, event events.SendMessageEvent) error
	CreateRoom(connID uuid.UUID, event events.CreateRoomEvent) error

	// SendActiveRooms delivers the directory snapshot to one requester.
	SendActiveRooms(connID uuid.UUID) error

	ActiveRooms() []models.RoomSummary

	// Stats returns current connection and room counts.
	Stats() (connections, rooms int)
}

type roomUsecase struct {
	connRepo    memory.ConnectionRepository
	membersRepo memory.RoomMembersRepository
	wsRepo      memory.WebsocketConnectionRepository
	messageRepo repository.MessageRepository

	dispatcher Dispatcher

	// mu охраняет обе карты состояния разом: join должен атомарно
	// обновить и реестр соединений, и состав комнат.
	mu sync.Mutex
}

func NewRoomUsecase(
	connRepo memory.ConnectionRepository,
	membersRepo memory.RoomMembersRepository,
	wsRepo memory.WebsocketConnectionRepository,
	messageRepo repository.MessageRepository,
	dispatcher Dispatcher,
) RoomUsecase {
	return &roomUsecase{
		connRepo:    connRepo,
		membersRepo: membersRepo,
		wsRepo:      wsRepo,
		messageRepo: messageRepo,
		dispatcher:  dispatcher,
	}
}

func (u *roomUsecase) Connect(connID uuid.UUID, conn *websocket.Conn) {
	u.wsRepo.Add(connID, conn)
	u.connRepo.Register(connID)

	metric.IncrementWSActiveConnections()

	slog.Info("connection established", slog.String(constant.ConnID, connID.String()))
}

func (u *roomUsecase) Disconnect(connID uuid.UUID) {
	u.mu.Lock()
	u.leaveLocked(connID)
	u.connRepo.Remove(connID)
	u.mu.Unlock()

	u.wsRepo.Remove(connID)

	metric.DecrementWSActiveConnections()

	slog.Info("connection closed", slog.String(constant.ConnID, connID.String()))
}

func (u *roomUsecase) Join(ctx context.Context, connID uuid.UUID, event events.JoinRoomEvent) error {
	if event.RoomID == "" || event.UserName == "" {
		u.sendError(connID, "roomId and userName are required")
		return nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	ident, ok := u.connRepo.Lookup(connID)
	if !ok {
		return fmt.Errorf("connection %s is not registered", connID)
	}

	// Switching rooms is leave-then-join so the old room observes a normal
	// departure. Rejoining the same room only updates the display name.
	if ident.RoomID != "" && ident.RoomID != event.RoomID {
		u.leaveLocked(connID)
	}

	u.connRepo.SetIdentity(connID, event.UserName, event.RoomID)
	u.membersRepo.AddMember(event.RoomID, connID)

	if err := u.replayHistory(ctx, connID, event.RoomID); err != nil {
		// History is best-effort on join, the member list must still go out.
		slog.Error("replay history",
			slog.Any(constant.Error, err),
			slog.String(constant.RoomID, event.RoomID),
		)
	}

	names := u.memberNamesLocked(event.RoomID)

	joined, err := events.Envelope(events.TypeUserJoined, events.PresenceEvent{
		UserName: event.UserName,
		Users:    names,
	})
	if err != nil {
		return err
	}

	u.dispatcher.ToRoomExcept(event.RoomID, connID, joined)

	info, err := events.Envelope(events.TypeRoomInfo, events.RoomInfoEvent{
		RoomID: event.RoomID,
		Users:  names,
	})
	if err != nil {
		return err
	}

	u.dispatcher.ToConnection(connID, info)

	u.broadcastActiveRoomsLocked()

	slog.Info("user joined room",
		slog.String(constant.ConnID, connID.String()),
		slog.String(constant.RoomID, event.RoomID),
		slog.String(constant.UserName, event.UserName),
	)

	return nil
}

func (u *roomUsecase) Leave(connID uuid.UUID) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.leaveLocked(connID)
}

// leaveLocked removes the connection from its current room, deletes the room
// when it empties and notifies the remaining members. No-op and no events
// when the connection is not in any room.
func (u *roomUsecase) leaveLocked(connID uuid.UUID) {
	ident, ok := u.connRepo.Lookup(connID)
	if !ok || ident.RoomID == "" {
		return
	}

	roomID := ident.RoomID

	u.membersRepo.RemoveMember(roomID, connID)
	u.connRepo.SetIdentity(connID, ident.DisplayName, "")

	names := u.memberNamesLocked(roomID)
	if len(names) > 0 {
		left, err := events.Envelope(events.TypeUserLeft, events.PresenceEvent{
			UserName: ident.DisplayName,
			Users:    names,
		})
		if err != nil {
			slog.Error("marshal user-left", slog.Any(constant.Error, err))
		} else {
			u.dispatcher.ToRoom(roomID, left)
		}
	}

	u.broadcastActiveRoomsLocked()

	slog.Info("user left room",
		slog.String(constant.ConnID, connID.String()),
		slog.String(constant.RoomID, roomID),
		slog.String(constant.UserName, ident.DisplayName),
	)
}

func (u *roomUsecase) SendMessage(ctx context.Context, connID uuid.UUID, event events.SendMessageEvent) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	ident, ok := u.connRepo.Lookup(connID)
	if !ok || ident.RoomID == "" {
		// Reject explicitly so the sender knows nothing was delivered.
		u.sendError(connID, "join a room before sending messages")
		return nil
	}

	kind := event.Kind
	if kind == "" {
		kind = models.KindText
	}

	if kind != models.KindText && kind != models.KindAudio {
		u.sendError(connID, "unsupported message kind: "+event.Kind)
		return nil
	}

	msg := models.NewMessage(ident.RoomID, ident.DisplayName, event.Content, kind)

	// Persistence is best-effort and independent of delivery: a failed
	// append is logged and the broadcast still goes out.
	go func() {
		if err := u.messageRepo.Append(context.Background(), msg); err != nil {
			metric.RecordPersistFailure()
			slog.Error("append message",
				slog.Any(constant.Error, err),
				slog.String(constant.RoomID, msg.RoomID),
			)
		}
	}()

	received, err := events.Envelope(events.TypeReceiveMessage, events.ReceiveMessageEvent{
		Kind:      kind,
		Content:   event.Content,
		Sender:    ident.DisplayName,
		Timestamp: msg.CreatedAt,
		Duration:  event.Duration,
		IsReplay:  false,
	})
	if err != nil {
		return err
	}

	u.dispatcher.ToRoom(ident.RoomID, received)

	metric.RecordMessageRelayed(kind)

	return nil
}

func (u *roomUsecase) CreateRoom(connID uuid.UUID, event events.CreateRoomEvent) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	roomID, err := u.newRoomIDLocked()
	if err != nil {
		u.sendError(connID, "could not create a room, try again")
		return fmt.Errorf("generate room id: %w", err)
	}

	created, err := events.Envelope(events.TypeRoomCreated, events.RoomCreatedEvent{
		RoomID:   roomID,
		UserName: event.UserName,
	})
	if err != nil {
		return err
	}

	u.dispatcher.ToConnection(connID, created)

	slog.Info("room created",
		slog.String(constant.RoomID, roomID),
		slog.String(constant.UserName, event.UserName),
	)

	return nil
}

// newRoomIDLocked regenerates on collision with a live room. Identifiers of
// rooms that emptied out are free to be handed out again.
func (u *roomUsecase) newRoomIDLocked() (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		roomID, err := generateRoomID()
		if err != nil {
			return "", err
		}

		if !u.membersRepo.Exists(roomID) {
			return roomID, nil
		}
	}

	return "", errors.New("room id space exhausted")
}

func (u *roomUsecase) SendActiveRooms(connID uuid.UUID) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	snapshot, err := events.Envelope(events.TypeActiveRooms, u.activeRoomsLocked())
	if err != nil {
		return err
	}

	u.dispatcher.ToConnection(connID, snapshot)

	return nil
}

func (u *roomUsecase) ActiveRooms() []models.RoomSummary {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.activeRoomsLocked()
}

func (u *roomUsecase) Stats() (int, int) {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.wsRepo.Len(), len(u.membersRepo.Rooms())
}

func (u *roomUsecase) activeRoomsLocked() []models.RoomSummary {
	roomIDs := u.membersRepo.Rooms()
	sort.Strings(roomIDs)

	summaries := make([]models.RoomSummary, 0, len(roomIDs))
	for _, roomID := range roomIDs {
		names := u.memberNamesLocked(roomID)
		if len(names) == 0 {
			continue
		}

		summaries = append(summaries, models.RoomSummary{
			RoomID:      roomID,
			MemberCount: len(names),
			MemberNames: names,
		})
	}

	return summaries
}

func (u *roomUsecase) broadcastActiveRoomsLocked() {
	snapshot, err := events.Envelope(events.TypeActiveRooms, u.activeRoomsLocked())
	if err != nil {
		slog.Error("marshal active-rooms", slog.Any(constant.Error, err))
		return
	}

	u.dispatcher.ToAll(snapshot)
}

func (u *roomUsecase) replayHistory(ctx context.Context, connID uuid.UUID, roomID string) error {
	history, err := u.messageRepo.History(ctx, roomID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	for _, msg := range history {
		replayed, err := events.Envelope(events.TypeReceiveMessage, events.ReceiveMessageEvent{
			Kind:      msg.Kind,
			Content:   msg.Content,
			Sender:    msg.Sender,
			Timestamp: msg.CreatedAt,
			IsReplay:  true,
		})
		if err != nil {
			return err
		}

		u.dispatcher.ToConnection(connID, replayed)
	}

	return nil
}

// memberNamesLocked resolves member display names through the connection
// registry. Names are sorted so every payload built from one membership
// state lists users identically.
func (u *roomUsecase) memberNamesLocked(roomID string) []string {
	members := u.membersRepo.Members(roomID)

	names := make([]string, 0, len(members))
	for _, connID := range members {
		ident, ok := u.connRepo.Lookup(connID)
		if !ok {
			continue
		}

		names = append(names, ident.DisplayName)
	}

	sort.Strings(names)

	return names
}

func (u *roomUsecase) sendError(connID uuid.UUID, message string) {
	event, err := events.Envelope(events.TypeError, events.ErrorEvent{Message: message})
	if err != nil {
		slog.Error("marshal error event", slog.Any(constant.Error, err))
		return
	}

	u.dispatcher.ToConnection(connID, event)
}
