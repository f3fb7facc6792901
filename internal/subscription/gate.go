package subscription

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Channel-member statuses that count as subscribed.
const (
	StatusMember        = "member"
	StatusAdministrator = "administrator"
	StatusCreator       = "creator"
)

// MembershipChecker asks the chat platform whether a user currently
// belongs to a channel. Implemented by the tgbotapi adapter in the
// handlers package and by fakes in tests.
type MembershipChecker interface {
	MemberStatus(ctx context.Context, channel string, userID int64) (string, error)
}

// Directory is the slice of user storage the gate needs.
type Directory interface {
	IsAdmin(userID int64) bool
	SetSubscription(userID int64, subscribed bool, checkedAt time.Time) error
}

// Gate decides per request whether a user may proceed. Every check on
// the external-query path re-queries the platform and writes the
// result back to the user row; the cached columns are never trusted
// to skip the query.
type Gate struct {
	Channel string // without leading @; empty means no gating
	Members MembershipChecker
	Dir     Directory
	Timeout time.Duration
	Log     zerolog.Logger
}

// Check returns true when the user is authorized. Query failures are
// logged and treated as "not a member".
func (g *Gate) Check(ctx context.Context, userID int64) bool {
	if g.Dir.IsAdmin(userID) {
		return true
	}
	if g.Channel == "" {
		return true
	}

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	subscribed := false
	status, err := g.Members.MemberStatus(ctx, g.Channel, userID)
	if err != nil {
		g.Log.Warn().Err(err).Int64("user_id", userID).Str("channel", g.Channel).
			Msg("membership query failed, treating as not subscribed")
	} else {
		switch status {
		case StatusMember, StatusAdministrator, StatusCreator:
			subscribed = true
		}
	}

	if err := g.Dir.SetSubscription(userID, subscribed, time.Now()); err != nil {
		g.Log.Error().Err(err).Int64("user_id", userID).Msg("write subscription cache")
	}
	return subscribed
}
