package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"go.uber.org/zap"

	"github.com/VaryushinFleksey/Vitka-bot/internal/domain"
)

// FileRepo implements Repo on top of a single pretty-printed JSON document
// keyed by chat id. The whole mapping is rewritten on every mutation.
type FileRepo struct {
	mu    sync.Mutex
	path  string
	log   *zap.Logger
	chats map[string]domain.ChatConfig
}

// Open loads the store at path. A missing or unreadable file yields an empty
// store: this is lossy recovery and the old content is overwritten on the
// next save.
func Open(path string, log *zap.Logger) *FileRepo {
	return openAt(path, log, time.Now())
}

// openAt is Open with the clock used to repair notification markers.
func openAt(path string, log *zap.Logger, now time.Time) *FileRepo {
	r := &FileRepo{path: path, log: log}
	chats, err := load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Info("store file not found, starting empty", zap.String("path", path))
		chats = make(map[string]domain.ChatConfig)
	case err != nil:
		log.Warn("store file unreadable, starting empty", zap.String("path", path), zap.Error(err))
		chats = make(map[string]domain.ChatConfig)
	}
	r.chats = chats
	if r.sanitize(now) {
		r.persistLocked()
	}
	log.Info("store loaded", zap.String("path", path), zap.Int("chats", len(chats)))
	return r
}

func load(path string) (map[string]domain.ChatConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var chats map[string]domain.ChatConfig
	if err := json.Unmarshal(data, &chats); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if chats == nil {
		// "null" decodes without error
		chats = make(map[string]domain.ChatConfig)
	}
	return chats, nil
}

// canonicalDate rewrites a stored date into DateLayout. ok is false when the
// value is not a date at all.
func canonicalDate(s *string) (out *string, ok bool) {
	parsed, err := domain.ParseDate(*s)
	if err != nil {
		return nil, false
	}
	return domain.StrPtr(parsed.Format(domain.DateLayout)), true
}

// sanitize repairs fields that would break the date engine or the
// once-per-day check, and reports whether anything changed.
func (r *FileRepo) sanitize(now time.Time) bool {
	repaired := false
	for id, cfg := range r.chats {
		changed := false
		if norm, err := domain.NormalizeTZOffset(cfg.TZOffset); err != nil {
			cfg.TZOffset = domain.DefaultTZOffset
			changed = true
		} else if norm != cfg.TZOffset {
			cfg.TZOffset = norm
			changed = true
		}
		if cfg.TargetDate != nil {
			canon, ok := canonicalDate(cfg.TargetDate)
			if !ok || *canon != *cfg.TargetDate {
				cfg.TargetDate = canon
				changed = true
			}
		}
		if cfg.LastNotifiedISO != nil {
			canon, ok := canonicalDate(cfg.LastNotifiedISO)
			if !ok || *canon != *cfg.LastNotifiedISO {
				cfg.LastNotifiedISO = canon
				changed = true
			}
		}
		if domain.ClampLastNotified(&cfg, now) {
			changed = true
		}
		if changed {
			r.log.Warn("repaired invalid chat entry", zap.String("chat", id))
			r.chats[id] = cfg
			repaired = true
		}
	}
	return repaired
}

// Save writes the full mapping atomically: readers see either the previous
// file or the new one.
func (r *FileRepo) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked()
}

func (r *FileRepo) saveLocked() error {
	data, err := json.MarshalIndent(r.chats, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}
	if err := renameio.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

// persistLocked saves and swallows the error after logging it.
func (r *FileRepo) persistLocked() {
	if err := r.saveLocked(); err != nil {
		r.log.Error("failed to save store", zap.String("path", r.path), zap.Error(err))
	}
}

// EnsureChat returns the chat config, creating and persisting the default
// for kind if the chat is new.
func (r *FileRepo) EnsureChat(chatID string, kind domain.ChatKind) domain.ChatConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg, ok := r.chats[chatID]; ok {
		return cfg
	}
	cfg := domain.NewChatConfig(kind)
	r.chats[chatID] = cfg
	r.persistLocked()
	r.log.Info("chat registered", zap.String("chat", chatID), zap.String("kind", string(kind)))
	return cfg
}

func (r *FileRepo) Chat(chatID string) (domain.ChatConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.chats[chatID]
	return cfg, ok
}

// Update applies fn to a copy of the chat config, stores the result and
// persists the whole mapping.
func (r *FileRepo) Update(chatID string, fn func(cfg *domain.ChatConfig)) (domain.ChatConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.chats[chatID]
	if !ok {
		return domain.ChatConfig{}, fmt.Errorf("%w: %s", ErrChatNotFound, chatID)
	}
	fn(&cfg)
	r.chats[chatID] = cfg
	r.persistLocked()
	return cfg, nil
}

// Snapshot returns a copy of the mapping safe to iterate without the lock.
func (r *FileRepo) Snapshot() map[string]domain.ChatConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]domain.ChatConfig, len(r.chats))
	for id, cfg := range r.chats {
		out[id] = cfg
	}
	return out
}

// Close flushes the mapping one last time.
func (r *FileRepo) Close() error {
	return r.Save()
}
