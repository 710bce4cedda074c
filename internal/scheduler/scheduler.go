package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/VaryushinFleksey/Vitka-bot/internal/domain"
	"github.com/VaryushinFleksey/Vitka-bot/internal/store"
)

// pollSpec fires at second zero of every minute, matching the one-minute
// fire window.
const pollSpec = "* * * * *"

// Notifier delivers the countdown message to one chat.
// telegram.Router implements this (method: SendCountdown).
type Notifier interface {
	SendCountdown(chatID string, cfg domain.ChatConfig, now time.Time) error
}

// Scheduler sends each chat its daily countdown at the configured local time.
type Scheduler struct {
	repo     store.Repo
	log      *zap.Logger
	notifier Notifier
	fireAt   domain.Clock
	now      func() time.Time
	cron     *cron.Cron
	mu       sync.Mutex
}

// New creates a new Scheduler firing at fireAt in each chat's own offset.
func New(repo store.Repo, log *zap.Logger, notifier Notifier, fireAt domain.Clock) *Scheduler {
	cronLog := cron.PrintfLogger(zap.NewStdLog(log.Named("cron")))
	return &Scheduler{
		repo:     repo,
		log:      log,
		notifier: notifier,
		fireAt:   fireAt,
		now:      time.Now,
		// Overlapping polls queue on mu instead of being skipped: a slow
		// tick must not swallow the next chat's fire minute.
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLog)),
		),
	}
}

// Run polls until ctx is canceled, then waits for a running tick to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(pollSpec, s.poll); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("scheduler started", zap.String("fire_at", s.fireAt.String()))

	<-ctx.Done()
	s.log.Info("scheduler stopping")
	<-s.cron.Stop().Done()
	return nil
}

// poll reads the clock when cron dispatches, before waiting behind a
// previous tick, so a delayed tick still judges its own minute.
func (s *Scheduler) poll() {
	now := s.now()
	s.Tick(now)
}

// Tick performs one scheduling cycle and returns how many chats were notified.
// A chat is marked as notified for its local day only after a successful send.
func (s *Scheduler) Tick(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.With(zap.String("tick", uuid.NewString()))
	chats := s.repo.Snapshot()

	ids := make([]string, 0, len(chats))
	for id := range chats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sent := 0
	for _, id := range ids {
		cfg := chats[id]
		today, due := domain.DueForNotification(cfg, now, s.fireAt)
		if !due {
			continue
		}

		if err := s.notifier.SendCountdown(id, cfg, now); err != nil {
			log.Error("daily notification failed", zap.String("chat", id), zap.Error(err))
			continue
		}

		if _, err := s.repo.Update(id, func(c *domain.ChatConfig) {
			c.LastNotifiedISO = domain.StrPtr(today)
		}); err != nil {
			log.Error("mark notified failed", zap.String("chat", id), zap.Error(err))
			continue
		}
		sent++
		log.Info("daily notification sent", zap.String("chat", id), zap.String("day", today))
	}
	return sent
}
