package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeChecker struct {
	status string
	err    error
	calls  int
}

func (f *fakeChecker) MemberStatus(ctx context.Context, channel string, userID int64) (string, error) {
	f.calls++
	return f.status, f.err
}

type fakeDir struct {
	admins      map[int64]bool
	subscribed  *bool
	checkedAt   time.Time
	writeCalled int
}

func (f *fakeDir) IsAdmin(userID int64) bool { return f.admins[userID] }

func (f *fakeDir) SetSubscription(userID int64, subscribed bool, checkedAt time.Time) error {
	f.subscribed = &subscribed
	f.checkedAt = checkedAt
	f.writeCalled++
	return nil
}

func newGate(channel string, checker *fakeChecker, dir *fakeDir) *Gate {
	return &Gate{
		Channel: channel,
		Members: checker,
		Dir:     dir,
		Timeout: time.Second,
		Log:     zerolog.Nop(),
	}
}

func TestCheck_AdminBypassSkipsQuery(t *testing.T) {
	checker := &fakeChecker{status: "left"}
	dir := &fakeDir{admins: map[int64]bool{1: true}}
	g := newGate("mychannel", checker, dir)

	if !g.Check(context.Background(), 1) {
		t.Fatal("admin must be authorized")
	}
	if checker.calls != 0 {
		t.Fatalf("admin bypass must not query the platform, got %d calls", checker.calls)
	}
	if dir.writeCalled != 0 {
		t.Fatal("admin bypass must not touch the subscription cache")
	}
}

func TestCheck_NoChannelConfigured(t *testing.T) {
	checker := &fakeChecker{status: "left"}
	dir := &fakeDir{admins: map[int64]bool{}}
	g := newGate("", checker, dir)

	if !g.Check(context.Background(), 2) {
		t.Fatal("no configured channel means everyone is authorized")
	}
	if checker.calls != 0 {
		t.Fatal("no query expected without a channel")
	}
}

func TestCheck_StatusMapping(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{"member", true},
		{"administrator", true},
		{"creator", true},
		{"left", false},
		{"kicked", false},
		{"restricted", false},
		{"", false},
	}
	for _, tc := range cases {
		checker := &fakeChecker{status: tc.status}
		dir := &fakeDir{admins: map[int64]bool{}}
		g := newGate("mychannel", checker, dir)

		got := g.Check(context.Background(), 3)
		if got != tc.want {
			t.Fatalf("status %q: got %v want %v", tc.status, got, tc.want)
		}
		if dir.subscribed == nil || *dir.subscribed != tc.want {
			t.Fatalf("status %q: cache write %v, want %v", tc.status, dir.subscribed, tc.want)
		}
		if dir.checkedAt.IsZero() {
			t.Fatalf("status %q: checked-at not written", tc.status)
		}
	}
}

func TestCheck_QueryErrorBlocks(t *testing.T) {
	checker := &fakeChecker{err: errors.New("network down")}
	dir := &fakeDir{admins: map[int64]bool{}}
	g := newGate("mychannel", checker, dir)

	if g.Check(context.Background(), 4) {
		t.Fatal("query failure must block")
	}
	if dir.subscribed == nil || *dir.subscribed {
		t.Fatal("failure must be cached as not subscribed")
	}
}

func TestCheck_AlwaysRequeries(t *testing.T) {
	checker := &fakeChecker{status: "member"}
	dir := &fakeDir{admins: map[int64]bool{}}
	g := newGate("mychannel", checker, dir)

	g.Check(context.Background(), 5)
	g.Check(context.Background(), 5)
	if checker.calls != 2 {
		t.Fatalf("every check must re-query, got %d calls", checker.calls)
	}
	if dir.writeCalled != 2 {
		t.Fatalf("every query must write the cache, got %d writes", dir.writeCalled)
	}
}
