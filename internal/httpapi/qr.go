package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/pkeller/movie-trivia/internal/hub"
	"github.com/pkeller/movie-trivia/internal/room"
)

const qrSize = 256

// GameQR serves a PNG QR code encoding the join link for an active game, for
// showing on the lobby screen.
func GameQR(h *hub.Hub, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.ToUpper(chi.URLParam(r, "code"))

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		if <-reply == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		url := strings.TrimRight(baseURL, "/") + "/?join=" + code
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "failed to generate qr code", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}
