package scheduler

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// maxAge is how long a downloaded file may sit in the downloads dir.
// Uploads remove their file right away; the sweep covers leftovers
// from crashes and failed uploads.
const maxAge = time.Hour

// Start runs the periodic downloads-dir sweep.
func Start(dir string, log zerolog.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			sweep(dir, log)
		}),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	return s, nil
}

func sweep(dir string, log zerolog.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("read downloads dir")
		return
	}

	cutoff := time.Now().Add(-maxAge)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			log.Debug().Err(err).Str("path", path).Msg("remove stale download")
			continue
		}
		log.Info().Str("path", path).Msg("removed stale download")
	}
}
