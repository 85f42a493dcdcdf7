package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/chatline/internal/application/config"
	"github.com/qrave1/chatline/internal/application/constant"
	"github.com/qrave1/chatline/internal/application/metric"
	"github.com/qrave1/chatline/internal/domain/events"
	"github.com/qrave1/chatline/internal/usecase"
)

const (
	maxMessageSize = 64 * 1024
	pongWait       = 60 * time.Second
)

type WebSocketHandler struct {
	upgrader *websocket.Upgrader

	roomUsecase usecase.RoomUsecase
}

func NewWebSocketHandler(cfg *config.Config, roomUsecase usecase.RoomUsecase) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return r.Header.Get("Origin") == cfg.Domain
			},
		},
		roomUsecase: roomUsecase,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"WebSocket upgrade error",
			slog.Any(constant.Error, err),
		)
		return err
	}
	defer ws.Close()

	connID := uuid.New()

	h.roomUsecase.Connect(connID, ws)
	// Transport teardown is the only cancellation signal, the deferred
	// Disconnect runs the leave sequence exactly once.
	defer h.roomUsecase.Disconnect(connID)

	ws.SetReadLimit(maxMessageSize)

	if err = ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return err
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Error(
					"webSocket read error",
					slog.Any(constant.Error, err),
				)
			}

			return nil
		}

		event := new(events.Message)

		if err = json.Unmarshal(msg, event); err != nil {
			slog.Warn("unmarshal websocket message", slog.Any(constant.Error, err))
			continue
		}

		metric.RecordWSEvent(event.Type)

		if err = h.handleEvent(c.Request().Context(), connID, event); err != nil {
			slog.Error("handle event",
				slog.Any(constant.Error, err),
				slog.String("type", event.Type),
			)
		}
	}
}

func (h *WebSocketHandler) handleEvent(
	ctx context.Context,
	connID uuid.UUID,
	event *events.Message,
) error {
	switch event.Type {
	case events.TypeJoinRoom:
		var join events.JoinRoomEvent

		if err := json.Unmarshal(event.Data, &join); err != nil {
			return fmt.Errorf("unmarshal join-room: %w", err)
		}

		return h.roomUsecase.Join(ctx, connID, join)

	case events.TypeSendMessage:
		var send events.SendMessageEvent

		if err := json.Unmarshal(event.Data, &send); err != nil {
			return fmt.Errorf("unmarshal send-message: %w", err)
		}

		return h.roomUsecase.SendMessage(ctx, connID, send)

	case events.TypeCreateRoom:
		var create events.CreateRoomEvent

		if err := json.Unmarshal(event.Data, &create); err != nil {
			return fmt.Errorf("unmarshal create-room: %w", err)
		}

		return h.roomUsecase.CreateRoom(connID, create)

	case events.TypeGetActiveRooms:
		return h.roomUsecase.SendActiveRooms(connID)

	default:
		return errors.New("unknown event type: " + event.Type)
	}
}
