package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/VaryushinFleksey/Vitka-bot/internal/domain"
)

// ensureChat makes sure the chat has a config; new chats get defaults for their kind.
func (r *Router) ensureChat(msg *tgbotapi.Message) (string, domain.ChatConfig) {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	return chatID, r.repo.EnsureChat(chatID, domain.ChatKind(msg.Chat.Type))
}

func isGroup(msg *tgbotapi.Message) bool {
	return domain.ChatKind(msg.Chat.Type).IsGroup()
}

// --- Commands for everyone ---

func (r *Router) handleStart(msg *tgbotapi.Message) {
	r.ensureChat(msg)
	if isGroup(msg) {
		r.sendText(msg.Chat.ID, groupStartText)
		return
	}
	r.sendText(msg.Chat.ID, privateStartText)
}

func (r *Router) handleDate(msg *tgbotapi.Message) {
	chatID, cfg := r.ensureChat(msg)
	if cfg.TargetDate == nil {
		if isGroup(msg) {
			r.sendText(msg.Chat.ID, noDateGroupText)
		} else {
			r.sendText(msg.Chat.ID, noDatePrivateText)
		}
		return
	}
	if err := r.SendCountdown(chatID, cfg, r.now()); err != nil {
		r.log.Error("send countdown failed", zap.String("chat", chatID), zap.Error(err))
	}
}

// --- Owner-only commands ---

func (r *Router) handleSetDate(msg *tgbotapi.Message) {
	chatID, _ := r.ensureChat(msg)
	if !r.isOwner(msg) {
		return
	}

	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		r.sendText(msg.Chat.ID, setDateHintText)
		return
	}
	date, err := domain.ParseDate(arg)
	if err != nil {
		r.sendText(msg.Chat.ID, badDateText)
		return
	}

	cfg, err := r.repo.Update(chatID, func(c *domain.ChatConfig) {
		c.TargetDate = domain.StrPtr(date.Format(domain.DateLayout))
	})
	if err != nil {
		r.log.Error("set date failed", zap.String("chat", chatID), zap.Error(err))
		return
	}
	r.log.Info("target date set", zap.String("chat", chatID), zap.String("date", *cfg.TargetDate))

	countdown, err := countdownText(cfg, r.lines, r.now())
	if err != nil {
		r.log.Error("render countdown failed", zap.String("chat", chatID), zap.Error(err))
		return
	}
	r.sendText(msg.Chat.ID, fmt.Sprintf(dateSetFmt, date.Format(domain.DisplayLayout), countdown))
}

func (r *Router) handleTZ(msg *tgbotapi.Message) {
	chatID, _ := r.ensureChat(msg)
	if !r.isOwner(msg) {
		return
	}

	offset, err := domain.NormalizeTZOffset(msg.CommandArguments())
	if err != nil {
		r.sendText(msg.Chat.ID, tzHintText)
		return
	}
	if _, err := r.repo.Update(chatID, func(c *domain.ChatConfig) {
		c.TZOffset = offset
		// Moving west can leave the marker on a day that has not begun yet.
		domain.ClampLastNotified(c, r.now())
	}); err != nil {
		r.log.Error("set tz failed", zap.String("chat", chatID), zap.Error(err))
		return
	}
	r.log.Info("tz offset set", zap.String("chat", chatID), zap.String("tz", offset))
	r.sendText(msg.Chat.ID, fmt.Sprintf(tzSetFmt, offset))
}

func (r *Router) handleNotify(msg *tgbotapi.Message) {
	chatID, cfg := r.ensureChat(msg)
	if !r.isOwner(msg) {
		return
	}

	var enable bool
	switch strings.ToLower(strings.TrimSpace(msg.CommandArguments())) {
	case "on":
		enable = true
	case "off":
		enable = false
	default:
		state := "off"
		if cfg.Notify {
			state = "on"
		}
		r.sendText(msg.Chat.ID, fmt.Sprintf(notifyStateFmt, state))
		return
	}

	if _, err := r.repo.Update(chatID, func(c *domain.ChatConfig) { c.Notify = enable }); err != nil {
		r.log.Error("set notify failed", zap.String("chat", chatID), zap.Error(err))
		return
	}
	if enable {
		r.sendText(msg.Chat.ID, notifyOnText)
	} else {
		r.sendText(msg.Chat.ID, notifyOffText)
	}
}
