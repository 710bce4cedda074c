package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/VaryushinFleksey/Vitka-bot/internal/config"
	"github.com/VaryushinFleksey/Vitka-bot/internal/domain"
	"github.com/VaryushinFleksey/Vitka-bot/internal/scheduler"
	"github.com/VaryushinFleksey/Vitka-bot/internal/store"
	"github.com/VaryushinFleksey/Vitka-bot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	fireAt  domain.Clock
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	fireAt, err := cfg.FireAt()
	if err != nil {
		return nil, err
	}

	// Every Telegram call is bounded by the client timeout; there are no retries.
	client := &http.Client{Timeout: cfg.SendTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Info("authorized", zap.String("bot", bot.Self.UserName))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv, fireAt: fireAt}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting countdown bot",
		zap.String("store", a.cfg.StorePath),
		zap.Bool("owner_override", a.cfg.OwnerID != 0),
		zap.String("notify_at", a.fireAt.String()),
		zap.String("http", a.cfg.HTTPAddr),
	)

	repo := store.Open(a.cfg.StorePath, a.log.Named("store"))
	router := telegram.NewRouter(a.bot, a.bot.Self.UserName, a.log.Named("telegram"), repo, a.cfg.Owners())
	router.RegisterCommands()
	sched := scheduler.New(repo, a.log.Named("scheduler"), router, a.fireAt)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := sched.Run(ctx); err != nil {
			a.log.Error("scheduler error", zap.Error(err))
		}
	}()

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.bot.StopReceivingUpdates()

			// Let an in-flight scheduler tick finish before the final flush.
			wg.Wait()

			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()
			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if err := repo.Close(); err != nil {
				a.log.Error("final store flush failed", zap.Error(err))
			}
			return nil

		case upd, ok := <-updCh:
			if !ok {
				updCh = nil
				continue
			}
			router.HandleUpdate(ctx, upd)
		}
	}
}
