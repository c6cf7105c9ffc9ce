package httpapi

import "net/http"

func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("POST /videos", h.CreateUploadSlot)
	mux.HandleFunc("GET /videos/{id}", h.GetVideo)
	mux.HandleFunc("PATCH /videos/{id}", h.UpdateVideo)
	mux.HandleFunc("DELETE /videos/{id}", h.DeleteVideo)
	mux.HandleFunc("POST /videos/{id}/thumbnail/restore", h.RestoreThumbnail)

	return mux
}
