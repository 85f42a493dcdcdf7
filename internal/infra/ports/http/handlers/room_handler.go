package handlers

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/chatline/internal/usecase"
)

type RoomHandler struct {
	roomUsecase usecase.RoomUsecase
	db          *sqlx.DB
}

func NewRoomHandler(roomUsecase usecase.RoomUsecase, db *sqlx.DB) *RoomHandler {
	return &RoomHandler{
		roomUsecase: roomUsecase,
		db:          db,
	}
}

// ListRooms отдаёт снапшот активных комнат
func (h *RoomHandler) ListRooms(c echo.Context) error {
	return c.JSON(http.StatusOK, h.roomUsecase.ActiveRooms())
}

func (h *RoomHandler) Health(c echo.Context) error {
	connections, rooms := h.roomUsecase.Stats()

	database := "ok"
	if err := h.db.PingContext(c.Request().Context()); err != nil {
		database = "unreachable"
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":   "OK",
		"users":    connections,
		"rooms":    rooms,
		"database": database,
	})
}
