package settings

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Store is the durable bot-settings map: a flat JSON object merged
// over compiled-in defaults at open and rewritten whole-file on every
// Set. Shared across all request handlers.
type Store struct {
	mu   sync.Mutex
	path string
	vals map[string]any
	log  zerolog.Logger
}

func defaults() map[string]any {
	return map[string]any{
		"welcome_message":      "🎉 Welcome to the download bot!\n\n📥 I can fetch media from more than 1000 platforms.\n\n🔗 Send a link and I will download it for you.",
		"subscription_message": "📢 To use the bot you must join the channel first:",
		"topic_mode":           false,
		"bot_mode":             "bot",
		"download_quality":     "video_hd",
	}
}

// Open loads the settings file if present; a missing or unreadable
// file falls back to defaults and is never fatal.
func Open(path string, log zerolog.Logger) *Store {
	s := &Store{path: path, vals: defaults(), log: log}

	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Error().Err(err).Str("path", path).Msg("read settings file")
		}
		return s
	}

	var stored map[string]any
	if err := json.Unmarshal(b, &stored); err != nil {
		log.Error().Err(err).Str("path", path).Msg("parse settings file")
		return s
	}
	for k, v := range stored {
		s.vals[k] = v // stored keys win over defaults
	}
	return s
}

func (s *Store) Get(key, def string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.vals[key].(string); ok {
		return v
	}
	return def
}

func (s *Store) GetBool(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, _ := s.vals[key].(bool)
	return v
}

// Set updates the in-memory value and rewrites the durable copy.
// A failed rewrite is logged and swallowed: the in-memory value stays
// changed even if the file on disk is now stale.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[key] = value
	if err := s.save(); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("persist settings")
	}
}

func (s *Store) save() error {
	b, err := json.MarshalIndent(s.vals, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}
