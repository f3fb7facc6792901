package downloader

import (
	"reflect"
	"testing"
)

func TestExtractURLs(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"check this out https://youtu.be/abc123 thanks", []string{"https://youtu.be/abc123"}},
		{"no links here", nil},
		{"http://a.example/x and https://b.example/y", []string{"http://a.example/x", "https://b.example/y"}},
		{"percent https://example.com/a%20b ok", []string{"https://example.com/a%20b"}},
		{"ftp://example.com/not-matched", nil},
	}
	for _, tc := range cases {
		got := ExtractURLs(tc.text)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ExtractURLs(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestDetectPlatform(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://youtu.be/abc123", "YouTube"},
		{"https://www.youtube.com/watch?v=abc", "YouTube"},
		{"https://www.instagram.com/reel/xyz/", "Instagram"},
		{"https://vm.tiktok.com/ZMabc/", "TikTok"},
		{"https://twitter.com/u/status/1", "Twitter/X"},
		{"https://x.com/u/status/1", "Twitter/X"},
		{"https://fb.watch/abc/", "Facebook"},
		{"https://www.threads.net/@user/post/1", "Threads"},
		{"https://t.me/channel/42", "Telegram"},
		{"https://example.org/x", "Unknown"},
		{"://not-a-url", "Unknown"},
	}
	for _, tc := range cases {
		if got := DetectPlatform(tc.url); got != tc.want {
			t.Fatalf("DetectPlatform(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestQualityPresets(t *testing.T) {
	names := []string{"video_hd", "video_sd", "video_mobile", "video_best", "audio_only"}
	for _, name := range names {
		if QualityPresets[name] == "" {
			t.Fatalf("missing preset %q", name)
		}
	}
	if QualityPresets[DefaultQuality] == "" {
		t.Fatal("default preset must exist")
	}
}

func TestTitleFromPath(t *testing.T) {
	got := titleFromPath("downloads/abc-123_My Video.mp4", "abc-123")
	if got != "My Video" {
		t.Fatalf("got %q", got)
	}
}

func TestLastLine(t *testing.T) {
	if got := lastLine([]byte("first\nERROR: unsupported url\n")); got != "ERROR: unsupported url" {
		t.Fatalf("got %q", got)
	}
	if got := lastLine(nil); got == "" {
		t.Fatal("empty output should still produce a message")
	}
}
