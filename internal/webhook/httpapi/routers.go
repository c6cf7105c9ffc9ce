package httpapi

import "net/http"

func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /webhooks/media", h.MediaWebhook)
	mux.HandleFunc("POST /webhooks/identity", h.IdentityWebhook)

	return mux
}
