package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestOpen_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s := Open(path, zerolog.Nop())

	if got := s.Get("bot_mode", ""); got != "bot" {
		t.Fatalf("bot_mode default: got %q", got)
	}
	if got := s.Get("download_quality", ""); got != "video_hd" {
		t.Fatalf("download_quality default: got %q", got)
	}
	if s.GetBool("topic_mode") {
		t.Fatal("topic_mode should default to false")
	}
}

func TestOpen_StoredValuesOverrideDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"download_quality":"audio_only","topic_mode":true}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s := Open(path, zerolog.Nop())
	if got := s.Get("download_quality", ""); got != "audio_only" {
		t.Fatalf("stored value should win: got %q", got)
	}
	if !s.GetBool("topic_mode") {
		t.Fatal("stored topic_mode should win")
	}
	// untouched keys keep their defaults
	if got := s.Get("bot_mode", ""); got != "bot" {
		t.Fatalf("bot_mode default lost: got %q", got)
	}
}

func TestOpen_CorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s := Open(path, zerolog.Nop())
	if got := s.Get("bot_mode", ""); got != "bot" {
		t.Fatalf("corrupt file should fall back to defaults, got %q", got)
	}
}

func TestSet_RewritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s := Open(path, zerolog.Nop())

	s.Set("welcome_message", "hello")
	s.Set("topic_mode", true)

	// a fresh Store must see the persisted values
	s2 := Open(path, zerolog.Nop())
	if got := s2.Get("welcome_message", ""); got != "hello" {
		t.Fatalf("welcome_message not persisted: got %q", got)
	}
	if !s2.GetBool("topic_mode") {
		t.Fatal("topic_mode not persisted")
	}
}

func TestGet_UnknownKeyReturnsCallerDefault(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "config.json"), zerolog.Nop())
	if got := s.Get("no_such_key", "fallback"); got != "fallback" {
		t.Fatalf("got %q", got)
	}
}
