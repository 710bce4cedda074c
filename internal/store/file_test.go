package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/VaryushinFleksey/Vitka-bot/internal/domain"
)

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "data", "store.json")
}

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	r := Open(tempPath(t), zap.NewNop())
	if n := len(r.Snapshot()); n != 0 {
		t.Fatalf("want empty store, got %d chats", n)
	}
}

func TestOpen_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := Open(path, zap.NewNop())
	if n := len(r.Snapshot()); n != 0 {
		t.Fatalf("want empty store, got %d chats", n)
	}
}

func TestOpen_NullDocumentIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("null"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := Open(path, zap.NewNop())
	r.EnsureChat("1", domain.KindPrivate)
	if _, ok := r.Chat("1"); !ok {
		t.Fatal("store must be writable after a null document")
	}
}

func TestEnsureChat_DefaultsAndPersists(t *testing.T) {
	path := tempPath(t)
	r := Open(path, zap.NewNop())

	group := r.EnsureChat("-100", domain.KindSupergroup)
	if !group.Notify {
		t.Fatal("supergroup must default to notify=true")
	}
	private := r.EnsureChat("42", domain.KindPrivate)
	if private.Notify {
		t.Fatal("private chat must default to notify=false")
	}

	// Second call keeps the existing config even with a different kind.
	again := r.EnsureChat("42", domain.KindGroup)
	if again.Notify {
		t.Fatal("existing chat config must not be replaced")
	}

	reloaded := Open(path, zap.NewNop())
	if got := len(reloaded.Snapshot()); got != 2 {
		t.Fatalf("want 2 persisted chats, got %d", got)
	}
}

func TestUpdate_RoundTrip(t *testing.T) {
	path := tempPath(t)
	r := Open(path, zap.NewNop())
	r.EnsureChat("-100", domain.KindGroup)
	r.EnsureChat("7", domain.KindPrivate)

	_, err := r.Update("-100", func(cfg *domain.ChatConfig) {
		cfg.TargetDate = domain.StrPtr("2025-09-10")
		cfg.TZOffset = "-03:00"
		cfg.LastNotifiedISO = domain.StrPtr("2025-09-01")
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	before := r.Snapshot()
	reloaded := Open(path, zap.NewNop())
	after := reloaded.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("round trip mismatch:\nbefore %+v\nafter  %+v", before, after)
	}

	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := reloaded.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("file changed across load/save:\n%s\n---\n%s", first, second)
	}
}

func TestUpdate_UnknownChat(t *testing.T) {
	r := Open(tempPath(t), zap.NewNop())
	_, err := r.Update("nope", func(cfg *domain.ChatConfig) { cfg.Notify = true })
	if !errors.Is(err, ErrChatNotFound) {
		t.Fatalf("want ErrChatNotFound, got %v", err)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	r := Open(tempPath(t), zap.NewNop())
	r.EnsureChat("1", domain.KindGroup)
	snap := r.Snapshot()
	cfg := snap["1"]
	cfg.Notify = false
	snap["1"] = cfg
	delete(snap, "1")

	got, ok := r.Chat("1")
	if !ok || !got.Notify {
		t.Fatalf("store changed through snapshot: %+v %v", got, ok)
	}
}

func TestOpen_RepairsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	doc := `{
  "5": {"target_date": "soon", "tz_offset": "Europe/Moscow", "notify": true, "last_notified_iso": "yesterday"}
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	r := Open(path, zap.NewNop())
	cfg, ok := r.Chat("5")
	if !ok {
		t.Fatal("chat 5 missing")
	}
	if cfg.TargetDate != nil || cfg.LastNotifiedISO != nil {
		t.Fatalf("invalid dates must be cleared: %+v", cfg)
	}
	if cfg.TZOffset != domain.DefaultTZOffset {
		t.Fatalf("want default offset, got %s", cfg.TZOffset)
	}
	if !cfg.Notify {
		t.Fatal("notify must be kept")
	}
}

func TestSave_WriteFailureIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	// The parent of the store path is a regular file, so every write fails.
	r := Open(filepath.Join(blocker, "store.json"), zap.NewNop())
	cfg := r.EnsureChat("1", domain.KindGroup)
	if !cfg.Notify {
		t.Fatal("in-memory state must still be updated")
	}
	if err := r.Save(); err == nil {
		t.Fatal("want explicit Save to report the failure")
	}
}

func TestOpen_CanonicalizesDayFirstDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	doc := `{
  "-100": {"target_date": "10.09.2025", "tz_offset": "+04:00", "notify": true, "last_notified_iso": "08.09.2025"}
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, time.September, 8, 4, 0, 0, 0, time.UTC)
	r := openAt(path, zap.NewNop(), now)
	cfg, _ := r.Chat("-100")
	if cfg.TargetDate == nil || *cfg.TargetDate != "2025-09-10" {
		t.Fatalf("target not canonical: %+v", cfg)
	}
	if cfg.LastNotifiedISO == nil || *cfg.LastNotifiedISO != "2025-09-08" {
		t.Fatalf("marker not canonical: %+v", cfg)
	}

	// The repair is written back immediately.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "10.09.2025") || strings.Contains(string(data), "08.09.2025") {
		t.Fatalf("file still holds day-first dates:\n%s", data)
	}
}

func TestOpen_ClampsFutureMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	doc := `{
  "-100": {"target_date": "2025-09-10", "tz_offset": "-12:00", "notify": true, "last_notified_iso": "2025-09-09"}
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	// 12:00 UTC is 00:00 on 2025-09-08 at -12:00.
	now := time.Date(2025, time.September, 8, 12, 0, 0, 0, time.UTC)
	r := openAt(path, zap.NewNop(), now)
	cfg, _ := r.Chat("-100")
	if cfg.LastNotifiedISO == nil || *cfg.LastNotifiedISO != "2025-09-08" {
		t.Fatalf("want marker clamped to 2025-09-08, got %+v", cfg)
	}
}
