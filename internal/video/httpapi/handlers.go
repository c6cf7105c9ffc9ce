package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/romariotrain/video-platform/internal/video/models"
	"github.com/romariotrain/video-platform/internal/video/service"
)

// AuthFunc resolves the authenticated owner from a request. Authentication
// itself lives at the edge; this service only needs the resolved identity.
type AuthFunc func(r *http.Request) (uuid.UUID, error)

// HeaderAuth trusts an already-verified id forwarded by the gateway in the
// named header.
func HeaderAuth(header string) AuthFunc {
	return func(r *http.Request) (uuid.UUID, error) {
		raw := r.Header.Get(header)
		if raw == "" {
			return uuid.Nil, models.ErrUnauthenticated
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, models.ErrUnauthenticated
		}
		return id, nil
	}
}

type Handler struct {
	svc    *service.Service
	auth   AuthFunc
	logger zerolog.Logger
}

func New(svc *service.Service, auth AuthFunc, logger zerolog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		auth:   auth,
		logger: logger.With().Str("component", "studio_http").Logger(),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreateUploadSlot(w http.ResponseWriter, r *http.Request) {
	ownerID, err := h.auth(r)
	if err != nil {
		writeErrorJSON(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	v, uploadURL, err := h.svc.CreateUploadSlot(r.Context(), ownerID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, UploadSlotResponse{
		Video:     toVideoResponse(v),
		UploadURL: uploadURL,
	})
}

func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	ownerID, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	v, err := h.svc.GetVideo(r.Context(), id, ownerID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVideoResponse(v))
}

func (h *Handler) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	ownerID, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}
	defer r.Body.Close()

	var req UpdateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid json body")
		return
	}

	v, err := h.svc.UpdateVideo(r.Context(), id, ownerID, models.VideoUpdate{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Visibility:  req.Visibility,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVideoResponse(v))
}

func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	ownerID, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	v, err := h.svc.RemoveVideo(r.Context(), id, ownerID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVideoResponse(v))
}

func (h *Handler) RestoreThumbnail(w http.ResponseWriter, r *http.Request) {
	ownerID, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	v, err := h.svc.RestoreThumbnail(r.Context(), id, ownerID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVideoResponse(v))
}

func (h *Handler) ownerAndID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	ownerID, err := h.auth(r)
	if err != nil {
		writeErrorJSON(w, http.StatusUnauthorized, "unauthenticated")
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, id, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeErrorJSON(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrInvalidArgument):
		writeErrorJSON(w, http.StatusBadRequest, "invalid argument")
	case errors.Is(err, models.ErrConflict):
		writeErrorJSON(w, http.StatusConflict, "conflict")
	case errors.Is(err, models.ErrUpstream):
		h.logger.Error().Err(err).Msg("upstream provider failure")
		writeErrorJSON(w, http.StatusBadGateway, "upstream failure")
	default:
		h.logger.Error().Err(err).Msg("unhandled service error")
		writeErrorJSON(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
