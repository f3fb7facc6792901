package models

import "time"

// User is one row per distinct sender. user_id comes from Telegram
// and is immutable; profile fields are last-write-wins.
type User struct {
	UserID                int64  `db:"user_id"`
	Username              string `db:"username"`
	FirstName             string `db:"first_name"`
	LastName              string `db:"last_name"`
	LanguageCode          string `db:"language_code"`
	IsSubscribed          bool   `db:"is_subscribed"`           // cache of the last channel check
	SubscriptionCheckedAt int64  `db:"subscription_checked_at"` // unix seconds, 0 = never checked
	FirstSeen             int64  `db:"first_seen"`
	LastActivity          int64  `db:"last_activity"`
	TotalDownloads        int64  `db:"total_downloads"`
	IsBanned              bool   `db:"is_banned"`
	IsAdmin               bool   `db:"is_admin"` // informational; authorization uses the allow-list
	ChatMode              string `db:"chat_mode"`
}

// UserPatch is a partial update for a User row: nil fields are left
// untouched. A zero patch is valid and only ensures the row exists.
type UserPatch struct {
	Username              *string
	FirstName             *string
	LastName              *string
	LanguageCode          *string
	IsSubscribed          *bool
	SubscriptionCheckedAt *time.Time
	LastActivity          *time.Time
	ChatMode              *string
}

// DownloadRecord is one append-only audit row per download attempt,
// success or failure.
type DownloadRecord struct {
	ID           int64  `db:"id"`
	UserID       int64  `db:"user_id"`
	URL          string `db:"url"`
	Platform     string `db:"platform"`
	Quality      string `db:"quality"`
	FileSize     int64  `db:"file_size"`
	DownloadTime int64  `db:"download_time"`
	Success      bool   `db:"success"`
	ErrorMessage string `db:"error_message"`
}

// UserStats is the aggregate view shown in the admin panel.
type UserStats struct {
	Total      int64
	Subscribed int64
	Banned     int64
}

// DownloadStats is the aggregate download view shown in the admin panel.
type DownloadStats struct {
	Total     int64
	Succeeded int64
	Failed    int64
}

func StrPtr(s string) *string        { return &s }
func BoolPtr(b bool) *bool           { return &b }
func TimePtr(t time.Time) *time.Time { return &t }
