package store

import (
	"errors"

	"github.com/VaryushinFleksey/Vitka-bot/internal/domain"
)

var ErrChatNotFound = errors.New("chat not found")

// Repo defines per-chat configuration storage. Every mutation is persisted
// before the call returns; persistence failures are logged, not returned.
type Repo interface {
	EnsureChat(chatID string, kind domain.ChatKind) domain.ChatConfig
	Chat(chatID string) (domain.ChatConfig, bool)
	Update(chatID string, fn func(cfg *domain.ChatConfig)) (domain.ChatConfig, error)
	Snapshot() map[string]domain.ChatConfig
	Close() error
}
