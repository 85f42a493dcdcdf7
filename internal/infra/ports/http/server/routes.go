package server

import (
	"github.com/labstack/echo/v4"

	"github.com/qrave1/chatline/internal/application/config"
	"github.com/qrave1/chatline/internal/infra/ports/http/handlers"
	"github.com/qrave1/chatline/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	roomHandler *handlers.RoomHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true

	e.Use(middleware.SlogLogger())

	e.GET("/health", roomHandler.Health)

	api := e.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ws", wsHandler.Handle)

			v1.GET("/rooms", roomHandler.ListRooms)
		}
	}

	e.Static("/", cfg.StaticDir)

	return e
}
