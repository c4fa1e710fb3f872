package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ittop-club/secret-santa-bot/internal/api"
	"github.com/ittop-club/secret-santa-bot/internal/bot"
	"github.com/ittop-club/secret-santa-bot/internal/config"
	"github.com/ittop-club/secret-santa-bot/internal/db"
	"github.com/ittop-club/secret-santa-bot/internal/logger"
	"github.com/ittop-club/secret-santa-bot/internal/messages"
	"github.com/ittop-club/secret-santa-bot/internal/repository"
	"github.com/ittop-club/secret-santa-bot/internal/repository/dao"
	"github.com/ittop-club/secret-santa-bot/internal/scheduler"
	"github.com/ittop-club/secret-santa-bot/internal/service"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	store := config.NewStore(conf)
	store.Watch()

	gdb, err := openDB(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	if err = dao.InitTables(gdb); err != nil {
		return fmt.Errorf("failed to initialize tables -> %w", err)
	}

	participantRepo := repository.NewParticipantRepository(dao.NewParticipantDAO(gdb))
	pairingRepo := repository.NewPairingRepository(dao.NewAssignmentDAO(gdb))
	revealRepo := repository.NewRevealRepository(dao.NewRevealDAO(gdb))

	registry := service.NewRegistryService(participantRepo, pairingRepo, revealRepo)
	drawSvc := service.NewDrawService(participantRepo, pairingRepo)
	revealSvc := service.NewRevealService(pairingRepo, revealRepo, participantRepo)

	tgBot, err := bot.NewBot(conf.Bot.Token, conf.Bot.Debug, registry, drawSvc, revealSvc, store.Game)
	if err != nil {
		return fmt.Errorf("failed to initialize bot -> %w", err)
	}

	notifier := service.NewNotifier(pairingRepo, participantRepo, tgBot, func() messages.GameInfo {
		return store.Game().Info()
	})
	tgBot.SetDispatcher(notifier)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go tgBot.Run(ctx)
	go scheduler.NewScheduler(store.Game, drawSvc, revealSvc, notifier, nil).Run(ctx)

	s := api.NewServer(conf, registry, drawSvc, revealSvc, notifier, func() int {
		return store.Game().Year()
	})

	addr := ":" + s.Config.API.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("server shutdown failed", zap.Error(err))
		}
	}()

	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

func openDB(conf *config.AppConfig) (*gorm.DB, error) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return db.OpenPostgresWithURL(dbURL)
	}

	if conf.Postgres != nil && conf.Postgres.Host != "" {
		return db.OpenPostgres(conf.Postgres)
	}

	path := "secret_santa.db"
	if conf.SQLite != nil && conf.SQLite.Path != "" {
		path = conf.SQLite.Path
	}

	return db.OpenSQLite(path)
}
