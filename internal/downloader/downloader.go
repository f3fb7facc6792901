package downloader

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// QualityPresets maps a preset name to a yt-dlp format-selection
// expression, best candidate first.
var QualityPresets = map[string]string{
	"video_hd":     "best[height<=720][ext=mp4]/best[height<=720]/best[ext=mp4]/best",
	"video_sd":     "best[height<=480][ext=mp4]/best[height<=480]/best[ext=mp4]/best",
	"video_mobile": "best[height<=360][ext=mp4]/best[height<=360]/best[ext=mp4]/best",
	"video_best":   "best[ext=mp4]/best",
	"audio_only":   "bestaudio[ext=m4a]/bestaudio[ext=mp3]/bestaudio/best",
}

const DefaultQuality = "video_hd"

// Ordered: the first domain whose string appears in the host wins.
var platforms = []struct {
	domain string
	label  string
}{
	{"youtube.com", "YouTube"},
	{"youtu.be", "YouTube"},
	{"instagram.com", "Instagram"},
	{"tiktok.com", "TikTok"},
	{"twitter.com", "Twitter/X"},
	{"x.com", "Twitter/X"},
	{"facebook.com", "Facebook"},
	{"fb.watch", "Facebook"},
	{"threads.net", "Threads"},
	{"t.me", "Telegram"},
}

var urlRx = regexp.MustCompile(`https?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\(\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)

// ExtractURLs pulls every http/https URL out of free text, in order.
func ExtractURLs(text string) []string {
	return urlRx.FindAllString(text, -1)
}

// DetectPlatform maps a URL to a platform label by domain substring,
// "Unknown" when nothing matches.
func DetectPlatform(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "Unknown"
	}
	host := strings.ToLower(u.Host)
	for _, p := range platforms {
		if strings.Contains(host, p.domain) {
			return p.label
		}
	}
	return "Unknown"
}

// Result is the metadata of one completed fetch.
type Result struct {
	Title    string
	Platform string
	FilePath string
	Duration int64 // seconds, 0 when unknown
	FileSize int64
}

// Downloader shells out to yt-dlp. Its internal retry and format
// negotiation is yt-dlp's contract, not ours.
type Downloader struct {
	Dir string
	Log zerolog.Logger
}

func New(dir string, log zerolog.Logger) *Downloader {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("create downloads dir")
	}
	return &Downloader{Dir: dir, Log: log}
}

// Fetch downloads the URL with the named quality preset and returns
// the saved file plus metadata. The caller bounds the whole operation
// through ctx.
func (d *Downloader) Fetch(ctx context.Context, rawURL, quality string) (*Result, error) {
	format, ok := QualityPresets[quality]
	if !ok {
		format = QualityPresets[DefaultQuality]
	}

	prefix := uuid.New().String()
	outputTemplate := filepath.Join(d.Dir, prefix+"_%(title)s.%(ext)s")

	args := []string{
		"--format", format,
		"--output", outputTemplate,
		"--no-playlist",
		"--no-warnings",
		rawURL,
	}
	cmd := exec.CommandContext(ctx, "yt-dlp", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("download timed out")
		}
		d.Log.Error().Err(err).Str("url", rawURL).Str("output", lastLine(out)).Msg("yt-dlp failed")
		return nil, fmt.Errorf("download failed: %s", lastLine(out))
	}

	matches, err := filepath.Glob(filepath.Join(d.Dir, prefix+"_*"))
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("downloaded file not found")
	}
	path := matches[0]

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat downloaded file: %w", err)
	}

	title, duration := d.probe(ctx, rawURL)
	if title == "" {
		title = titleFromPath(path, prefix)
	}

	return &Result{
		Title:    title,
		Platform: DetectPlatform(rawURL),
		FilePath: path,
		Duration: duration,
		FileSize: info.Size(),
	}, nil
}

// probe asks yt-dlp for title and duration without downloading.
// Best effort: a probe failure only degrades the caption.
func (d *Downloader) probe(ctx context.Context, rawURL string) (string, int64) {
	out, err := exec.CommandContext(ctx, "yt-dlp",
		"--no-playlist", "--no-warnings",
		"--print", "title",
		"--print", "duration",
		rawURL,
	).Output()
	if err != nil {
		return "", 0
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) == 0 {
		return "", 0
	}
	title := strings.TrimSpace(lines[0])
	var duration int64
	if len(lines) > 1 {
		if f, err := strconv.ParseFloat(strings.TrimSpace(lines[1]), 64); err == nil {
			duration = int64(f)
		}
	}
	return title, duration
}

func titleFromPath(path, prefix string) string {
	name := filepath.Base(path)
	name = strings.TrimPrefix(name, prefix+"_")
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func lastLine(out []byte) string {
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return "unknown error"
	}
	lines := strings.Split(trimmed, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
