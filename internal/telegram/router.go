package telegram

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/VaryushinFleksey/Vitka-bot/assets"
	"github.com/VaryushinFleksey/Vitka-bot/internal/domain"
	"github.com/VaryushinFleksey/Vitka-bot/internal/store"
)

// BotAPI is the part of *tgbotapi.BotAPI the router uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Router wires Telegram updates to handlers.
type Router struct {
	bot      BotAPI
	username string
	log      *zap.Logger
	repo     store.Repo
	owners   map[int64]struct{}
	lines    []string
	images   []string
	now      func() time.Time
	pick     func(n int) int
}

// NewRouter creates a new Telegram router. Only owners may change settings.
// username is the bot's own login; commands addressed to another bot are
// ignored.
func NewRouter(bot BotAPI, username string, log *zap.Logger, repo store.Repo, owners []int64) *Router {
	set := make(map[int64]struct{}, len(owners))
	for _, id := range owners {
		set[id] = struct{}{}
	}
	return &Router{
		bot:      bot,
		username: username,
		log:      log,
		repo:     repo,
		owners:   set,
		lines:    assets.ExtraLines(),
		images:   assets.ImageURLs(),
		now:      time.Now,
		pick:     rand.Intn,
	}
}

// RegisterCommands publishes the command menu. Failure is not fatal.
func (r *Router) RegisterCommands() {
	if _, err := r.bot.Request(tgbotapi.NewSetMyCommands(commands()...)); err != nil {
		r.log.Warn("set commands failed", zap.Error(err))
	}
}

// HandleUpdate routes a single update to the matching command handler.
// Anything that is not a known command is ignored.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}
	if !r.addressedToMe(msg) {
		return
	}

	switch msg.Command() {
	case "start":
		r.handleStart(msg)
	case "date", "left":
		r.handleDate(msg)
	case "setdate":
		r.handleSetDate(msg)
	case "tz":
		r.handleTZ(msg)
	case "notify":
		r.handleNotify(msg)
	default:
		// Unknown command: stay silent
	}
}

// addressedToMe reports false for "/cmd@OtherBot"; a bare "/cmd" is ours.
func (r *Router) addressedToMe(msg *tgbotapi.Message) bool {
	_, mention, found := strings.Cut(msg.CommandWithAt(), "@")
	if !found || mention == "" || r.username == "" {
		return true
	}
	return strings.EqualFold(mention, r.username)
}

func (r *Router) isOwner(msg *tgbotapi.Message) bool {
	if msg.From == nil {
		return false
	}
	_, ok := r.owners[msg.From.ID]
	return ok
}

// SendCountdown sends the days-left message to a chat, with a picture when
// possible. This makes Router satisfy scheduler.Notifier.
func (r *Router) SendCountdown(chatID string, cfg domain.ChatConfig, now time.Time) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("chat id %q: %w", chatID, err)
	}
	text, err := countdownText(cfg, r.lines, now)
	if err != nil {
		return err
	}
	return r.sendWithImage(id, text)
}

// sendWithImage sends text as a photo caption and falls back to plain text
// if there is no image or the photo cannot be delivered.
func (r *Router) sendWithImage(chatID int64, text string) error {
	if url := r.randomImage(); url != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(url))
		photo.Caption = text
		_, err := r.bot.Send(photo)
		if err == nil {
			return nil
		}
		r.log.Warn("send photo failed, falling back to text",
			zap.Int64("chat", chatID), zap.String("url", url), zap.Error(err))
	}
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (r *Router) randomImage() string {
	if len(r.images) == 0 {
		return ""
	}
	return r.images[r.pick(len(r.images))]
}

func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Warn("send message failed", zap.Int64("chat", chatID), zap.Error(err))
	}
}
