package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qrave1/chatline/internal/application/config"
	"github.com/qrave1/chatline/internal/application/constant"
	"github.com/qrave1/chatline/internal/application/metric"
	"github.com/qrave1/chatline/internal/infra/adapters/memory"
	"github.com/qrave1/chatline/internal/infra/adapters/postgres"
	"github.com/qrave1/chatline/internal/infra/adapters/postgres/repository"
	"github.com/qrave1/chatline/internal/infra/ports/http/handlers"
	"github.com/qrave1/chatline/internal/infra/ports/http/server"
	"github.com/qrave1/chatline/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: slog.LevelInfo},
			),
		),
	)

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	slog.Info("Running app", slog.Bool("debug", cfg.Debug))

	dbConn, err := postgres.NewPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		slog.Error("connect to postgres", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer dbConn.Close()

	messageRepo := repository.NewMessageRepo(dbConn)

	connRepo := memory.NewConnectionRepository()
	membersRepo := memory.NewRoomMembersRepository()
	wsConnRepo := memory.NewWSConnectionRepository()

	dispatcher := usecase.NewDispatcher(wsConnRepo, membersRepo)
	roomUsecase := usecase.NewRoomUsecase(connRepo, membersRepo, wsConnRepo, messageRepo, dispatcher)

	roomHandler := handlers.NewRoomHandler(roomUsecase, dbConn)
	wsHandler := handlers.NewWebSocketHandler(cfg, roomUsecase)

	echoSrv := server.New(cfg, roomHandler, wsHandler)
	metricsSrv := metric.NewServer()

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	go func() {
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricsPort)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down server due to context cancel")
	case err = <-echoSrvCh:
		slog.Error("HTTP server failed", slog.Any(constant.Error, err))
	case err = <-metricsSrvCh:
		slog.Error("Metrics server failed", slog.Any(constant.Error, err))
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err = echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown server", slog.Any(constant.Error, err))
	}

	if err = metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metrics server", slog.Any(constant.Error, err))
	}
}
