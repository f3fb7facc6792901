package webhook

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Server receives webhook deliveries and hands the decoded updates to
// the dispatcher. It does no authorization or storage work itself.
type Server struct {
	Addr    string
	Updates chan<- tgbotapi.Update
	Log     zerolog.Logger
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Post("/webhook", s.handleWebhook)
	return r
}

func (s *Server) Start() error {
	s.Log.Info().Str("addr", s.Addr).Msg("webhook server listening")
	return http.ListenAndServe(s.Addr, s.Router())
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("Bot is running!"))
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var upd tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		s.Log.Error().Err(err).Msg("decode webhook payload")
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}
	s.Updates <- upd
	w.Write([]byte("OK"))
}
