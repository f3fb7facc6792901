package storage

import (
	"database/sql"
	"embed"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"telegram-downloader-bot/internal/models"
)

//go:embed schema.sql
var ddl embed.FS

// DB wraps the sqlite handle plus the static admin allow-list captured
// at startup. The allow-list, not the stored is_admin column, is the
// source of truth for authorization.
type DB struct {
	*sql.DB
	admins map[int64]struct{}
}

func New(path string, adminIDs []int64) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if err = migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &DB{DB: db, admins: admins}, nil
}

func migrate(db *sql.DB) error {
	b, err := ddl.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(string(b))
	return err
}

// IsAdmin is a pure allow-list membership test.
func (d *DB) IsAdmin(userID int64) bool {
	_, ok := d.admins[userID]
	return ok
}

// ---------- users -----------------------------------------------------------

// UpsertActivity makes sure a row exists for userID and then applies
// the non-nil patch fields. Safe to call with a zero patch.
func (d *DB) UpsertActivity(userID int64, p models.UserPatch) error {
	now := time.Now().Unix()
	isAdmin := 0
	if d.IsAdmin(userID) {
		isAdmin = 1
	}
	_, err := d.Exec(`
        INSERT INTO users (user_id, is_admin, first_seen, last_activity)
        VALUES (?,?,?,?)
        ON CONFLICT(user_id) DO NOTHING
    `, userID, isAdmin, now, now)
	if err != nil {
		return err
	}

	set, args := patchClauses(p)
	if len(set) == 0 {
		return nil
	}
	args = append(args, userID)
	_, err = d.Exec(
		"UPDATE users SET "+strings.Join(set, ", ")+" WHERE user_id = ?",
		args...,
	)
	return err
}

func patchClauses(p models.UserPatch) (set []string, args []any) {
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if p.Username != nil {
		add("username", *p.Username)
	}
	if p.FirstName != nil {
		add("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		add("last_name", *p.LastName)
	}
	if p.LanguageCode != nil {
		add("language_code", *p.LanguageCode)
	}
	if p.IsSubscribed != nil {
		add("is_subscribed", *p.IsSubscribed)
	}
	if p.SubscriptionCheckedAt != nil {
		add("subscription_checked_at", p.SubscriptionCheckedAt.Unix())
	}
	if p.LastActivity != nil {
		add("last_activity", p.LastActivity.Unix())
	}
	if p.ChatMode != nil {
		add("chat_mode", *p.ChatMode)
	}
	return set, args
}

func (d *DB) GetUser(userID int64) (*models.User, error) {
	var u models.User
	err := d.QueryRow(`
        SELECT user_id, username, first_name, last_name, language_code,
               is_subscribed, subscription_checked_at, first_seen, last_activity,
               total_downloads, is_banned, is_admin, chat_mode
        FROM users WHERE user_id = ?`, userID,
	).Scan(&u.UserID, &u.Username, &u.FirstName, &u.LastName, &u.LanguageCode,
		&u.IsSubscribed, &u.SubscriptionCheckedAt, &u.FirstSeen, &u.LastActivity,
		&u.TotalDownloads, &u.IsBanned, &u.IsAdmin, &u.ChatMode)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *DB) ListUserIDs() ([]int64, error) {
	rows, err := d.Query(`SELECT user_id FROM users WHERE is_banned = 0`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetSubscription is the gate's cache write-back after an external
// membership query.
func (d *DB) SetSubscription(userID int64, subscribed bool, checkedAt time.Time) error {
	return d.UpsertActivity(userID, models.UserPatch{
		IsSubscribed:          models.BoolPtr(subscribed),
		SubscriptionCheckedAt: models.TimePtr(checkedAt),
	})
}

func (d *DB) SetBanned(userID int64, banned bool) error {
	if err := d.UpsertActivity(userID, models.UserPatch{}); err != nil {
		return err
	}
	_, err := d.Exec(`UPDATE users SET is_banned = ? WHERE user_id = ?`, banned, userID)
	return err
}

// ---------- downloads -------------------------------------------------------

// RecordDownloadAttempt appends one audit row per attempt and, on
// success, bumps the user's counter. The increment happens inside the
// database so concurrent successes never lose updates.
func (d *DB) RecordDownloadAttempt(rec *models.DownloadRecord) error {
	if rec.DownloadTime == 0 {
		rec.DownloadTime = time.Now().Unix()
	}

	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
        INSERT INTO downloads (user_id, url, platform, quality, file_size,
                               download_time, success, error_message)
        VALUES (?,?,?,?,?,?,?,?)
    `, rec.UserID, rec.URL, rec.Platform, rec.Quality, rec.FileSize,
		rec.DownloadTime, rec.Success, rec.ErrorMessage)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}

	if rec.Success {
		if _, err := tx.Exec(
			`UPDATE users SET total_downloads = total_downloads + 1 WHERE user_id = ?`,
			rec.UserID,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ---------- stats -----------------------------------------------------------

func (d *DB) UserStats() (models.UserStats, error) {
	var s models.UserStats
	err := d.QueryRow(`
        SELECT COUNT(*),
               COALESCE(SUM(is_subscribed), 0),
               COALESCE(SUM(is_banned), 0)
        FROM users`).Scan(&s.Total, &s.Subscribed, &s.Banned)
	return s, err
}

func (d *DB) DownloadStats() (models.DownloadStats, error) {
	var s models.DownloadStats
	err := d.QueryRow(`
        SELECT COUNT(*),
               COALESCE(SUM(success), 0),
               COALESCE(SUM(1 - success), 0)
        FROM downloads`).Scan(&s.Total, &s.Succeeded, &s.Failed)
	return s, err
}

// ---------- admin input states ---------------------------------------------

// SetUserState stores what free-text input the admin panel is waiting
// for from a user ("" clears it).
func (d *DB) SetUserState(userID int64, state string) error {
	if state == "" {
		_, err := d.Exec(`DELETE FROM user_states WHERE user_id = ?`, userID)
		return err
	}
	_, err := d.Exec(`
        INSERT INTO user_states (user_id, state) VALUES (?,?)
        ON CONFLICT(user_id) DO UPDATE SET state = excluded.state`, userID, state)
	return err
}

func (d *DB) GetUserState(userID int64) (string, error) {
	var st string
	err := d.QueryRow(`SELECT state FROM user_states WHERE user_id = ?`, userID).Scan(&st)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return st, err
}
