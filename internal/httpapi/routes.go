package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pkeller/movie-trivia/internal/hub"
	"github.com/pkeller/movie-trivia/internal/solo"
	"github.com/pkeller/movie-trivia/internal/ws"
)

func SetupRoutes(h *hub.Hub, s *solo.Store, baseURL string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Single-player endpoints
	r.Post("/start_game", s.StartGame)
	r.Post("/get_question", s.GetQuestion)
	r.Post("/check_answer", s.CheckAnswer)

	// Multiplayer channel
	r.Get("/ws", ws.Handler(h, log))

	r.Get("/games/{code}/qr", GameQR(h, baseURL))
	r.Get("/healthz", Healthz)
	return r
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
