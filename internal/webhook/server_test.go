package webhook

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T) (*Server, chan tgbotapi.Update, *httptest.Server) {
	t.Helper()
	updates := make(chan tgbotapi.Update, 1)
	s := &Server{Updates: updates, Log: zerolog.Nop()}
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, updates, ts
}

func TestIndex_Liveness(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
}

func TestWebhook_ForwardsUpdate(t *testing.T) {
	_, updates, ts := newTestServer(t)

	payload := `{"update_id":7,"message":{"message_id":1,"text":"hello","chat":{"id":10},"from":{"id":20}}}`
	resp, err := http.Post(ts.URL+"/webhook", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}

	select {
	case upd := <-updates:
		if upd.UpdateID != 7 {
			t.Fatalf("update id: %d", upd.UpdateID)
		}
		if upd.Message == nil || upd.Message.Text != "hello" {
			t.Fatalf("message not decoded: %+v", upd.Message)
		}
	default:
		t.Fatal("update not handed to the dispatcher")
	}
}

func TestWebhook_MalformedPayloadIs500(t *testing.T) {
	_, updates, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/webhook", "application/json", strings.NewReader("{broken"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status: %d, want 500", resp.StatusCode)
	}
	select {
	case <-updates:
		t.Fatal("malformed payload must not reach the dispatcher")
	default:
	}
}
