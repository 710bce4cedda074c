package telegram

import (
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/VaryushinFleksey/Vitka-bot/internal/domain"
)

// UI texts in English
const (
	groupStartText   = "Bot activated. Send /date to see how many days are left."
	privateStartText = "👋 Hi! I count how many days are left until a set date.\n\n" +
		"Commands (owner only):\n" +
		"/setdate 2025-09-10  — set the date (or 10.09.2025)\n" +
		"/tz +04:00           — set the timezone offset\n" +
		"/notify on|off       — daily morning message\n\n" +
		"For everyone:\n" +
		"/date                — days left (with a picture)\n"

	noDateGroupText   = "The date is not set. The owner can set it with /setdate 2025-09-10"
	noDatePrivateText = "The date is not set. Set it: /setdate 2025-09-10"
	setDateHintText   = "Send a date: /setdate 2025-09-10 or /setdate 10.09.2025"
	badDateText       = "Invalid date. Example: 2025-09-10"
	tzHintText        = "Format: /tz +04:00 (or -03:00 etc.)"
	tzSetFmt          = "Timezone set: %s"
	dateSetFmt        = "Date set: %s\n\nCommand for everyone: /date\n\n%s"
	notifyHintText    = "Usage: /notify on or /notify off"
	notifyOnText      = "Daily message enabled ✅"
	notifyOffText     = "Daily message disabled ⏸"
	notifyStateFmt    = "Daily message is %s. " + notifyHintText
)

var errNoTarget = errors.New("chat has no valid target date")

// commands is the menu shown by Telegram clients.
func commands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "date", Description: "Days left"},
		{Command: "start", Description: "Help"},
	}
}

// plural picks the singular form only for exactly one.
func plural(n int, one, many string) string {
	if n == 1 || n == -1 {
		return one
	}
	return many
}

func mainLine(days int) string {
	return fmt.Sprintf("%d %s left until the possibly legendary meetup, or maybe not so legendary, we'll see.",
		days, plural(days, "day", "days"))
}

// dailyExtraLine rotates through lines by the day of year in the chat's offset,
// so everyone in the chat sees the same line for the whole local day.
func dailyExtraLine(lines []string, loc *time.Location, now time.Time) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[now.In(loc).YearDay()%len(lines)]
}

// countdownText renders the days-left message for a chat with a target date.
func countdownText(cfg domain.ChatConfig, lines []string, now time.Time) (string, error) {
	target, ok := cfg.Target()
	if !ok {
		return "", errNoTarget
	}
	loc, err := domain.OffsetLocation(cfg.TZOffset)
	if err != nil {
		return "", err
	}
	days, err := domain.DaysRemaining(target, cfg.TZOffset, now)
	if err != nil {
		return "", err
	}
	text := mainLine(days)
	if extra := dailyExtraLine(lines, loc, now); extra != "" {
		text += "\n" + extra
	}
	return text, nil
}
