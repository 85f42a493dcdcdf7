package handlers_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/chatline/internal/application/config"
	"github.com/qrave1/chatline/internal/domain/events"
	"github.com/qrave1/chatline/internal/domain/models"
	"github.com/qrave1/chatline/internal/infra/adapters/memory"
	"github.com/qrave1/chatline/internal/infra/ports/http/handlers"
	"github.com/qrave1/chatline/internal/usecase"
)

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Append(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockMessageRepo) History(ctx context.Context, roomID string) ([]models.Message, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).([]models.Message), args.Error(1)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := new(mockMessageRepo)
	store.On("History", mock.Anything, mock.Anything).Return([]models.Message{}, nil)
	store.On("Append", mock.Anything, mock.Anything).Return(nil)

	connRepo := memory.NewConnectionRepository()
	membersRepo := memory.NewRoomMembersRepository()
	wsConnRepo := memory.NewWSConnectionRepository()

	dispatcher := usecase.NewDispatcher(wsConnRepo, membersRepo)
	roomUsecase := usecase.NewRoomUsecase(connRepo, membersRepo, wsConnRepo, store, dispatcher)

	wsHandler := handlers.NewWebSocketHandler(&config.Config{Debug: true}, roomUsecase)

	e := echo.New()
	e.GET("/ws", wsHandler.Handle)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}

	t.Cleanup(func() { conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()

	event, err := events.Envelope(eventType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(event))
}

func readEvent(t *testing.T, conn *websocket.Conn) events.Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var event events.Message
	require.NoError(t, conn.ReadJSON(&event))

	return event
}

func readEventOfType(t *testing.T, conn *websocket.Conn, eventType string) events.Message {
	t.Helper()

	for i := 0; i < 10; i++ {
		event := readEvent(t, conn)
		if event.Type == eventType {
			return event
		}
	}

	t.Fatalf("did not receive %s event", eventType)
	return events.Message{}
}

func TestWebSocketChatFlow(t *testing.T) {
	srv := newTestServer(t)

	alice := dial(t, srv)
	send(t, alice, events.TypeJoinRoom, events.JoinRoomEvent{RoomID: "ABCD", UserName: "Alice"})

	info := readEventOfType(t, alice, events.TypeRoomInfo)
	var roomInfo events.RoomInfoEvent
	require.NoError(t, json.Unmarshal(info.Data, &roomInfo))
	assert.Equal(t, "ABCD", roomInfo.RoomID)
	assert.Equal(t, []string{"Alice"}, roomInfo.Users)

	bob := dial(t, srv)
	send(t, bob, events.TypeJoinRoom, events.JoinRoomEvent{RoomID: "ABCD", UserName: "Bob"})

	joined := readEventOfType(t, alice, events.TypeUserJoined)
	var presence events.PresenceEvent
	require.NoError(t, json.Unmarshal(joined.Data, &presence))
	assert.Equal(t, "Bob", presence.UserName)
	assert.Equal(t, []string{"Alice", "Bob"}, presence.Users)

	readEventOfType(t, bob, events.TypeRoomInfo)

	send(t, alice, events.TypeSendMessage, events.SendMessageEvent{Content: "hi", Kind: models.KindText})

	for _, conn := range []*websocket.Conn{alice, bob} {
		event := readEventOfType(t, conn, events.TypeReceiveMessage)

		var received events.ReceiveMessageEvent
		require.NoError(t, json.Unmarshal(event.Data, &received))
		assert.Equal(t, "hi", received.Content)
		assert.Equal(t, "Alice", received.Sender)
		assert.False(t, received.IsReplay)
	}

	require.NoError(t, bob.Close())

	left := readEventOfType(t, alice, events.TypeUserLeft)
	require.NoError(t, json.Unmarshal(left.Data, &presence))
	assert.Equal(t, "Bob", presence.UserName)
	assert.Equal(t, []string{"Alice"}, presence.Users)
}

func TestWebSocketCreateRoomAndDirectory(t *testing.T) {
	srv := newTestServer(t)

	conn := dial(t, srv)

	send(t, conn, events.TypeCreateRoom, events.CreateRoomEvent{UserName: "Alice"})

	created := readEventOfType(t, conn, events.TypeRoomCreated)
	var room events.RoomCreatedEvent
	require.NoError(t, json.Unmarshal(created.Data, &room))
	assert.Regexp(t, `^[A-Z0-9]{6}$`, room.RoomID)

	send(t, conn, events.TypeGetActiveRooms, struct{}{})

	snapshot := readEventOfType(t, conn, events.TypeActiveRooms)
	var rooms []models.RoomSummary
	require.NoError(t, json.Unmarshal(snapshot.Data, &rooms))
	assert.Empty(t, rooms, "create-room does not make the room active")
}

func TestWebSocketSendWithoutRoom(t *testing.T) {
	srv := newTestServer(t)

	conn := dial(t, srv)

	send(t, conn, events.TypeSendMessage, events.SendMessageEvent{Content: "hello?", Kind: models.KindText})

	event := readEventOfType(t, conn, events.TypeError)

	var errEvent events.ErrorEvent
	require.NoError(t, json.Unmarshal(event.Data, &errEvent))
	assert.Contains(t, errEvent.Message, "join a room")
}
