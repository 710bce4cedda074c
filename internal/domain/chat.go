package domain

import "time"

// ChatKind is the Telegram chat type: private, group, supergroup or channel.
type ChatKind string

const (
	KindPrivate    ChatKind = "private"
	KindGroup      ChatKind = "group"
	KindSupergroup ChatKind = "supergroup"
)

// IsGroup reports whether the chat has many participants.
func (k ChatKind) IsGroup() bool {
	return k == KindGroup || k == KindSupergroup
}

// ChatConfig is the persisted per-chat state.
type ChatConfig struct {
	TargetDate      *string `json:"target_date"`       // YYYY-MM-DD, nil when unset
	TZOffset        string  `json:"tz_offset"`         // ±HH:MM
	Notify          bool    `json:"notify"`            // daily auto-notification
	LastNotifiedISO *string `json:"last_notified_iso"` // YYYY-MM-DD, nil until first send
}

// NewChatConfig returns the defaults for a freshly seen chat. Groups get the
// daily notification switched on, direct chats do not.
func NewChatConfig(kind ChatKind) ChatConfig {
	return ChatConfig{
		TZOffset: DefaultTZOffset,
		Notify:   kind.IsGroup(),
	}
}

// Target returns the parsed target date, if one is set and valid.
func (c ChatConfig) Target() (time.Time, bool) {
	if c.TargetDate == nil {
		return time.Time{}, false
	}
	parsed, err := ParseDate(*c.TargetDate)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// StrPtr is a small helper for the nullable string fields.
func StrPtr(s string) *string { return &s }
