package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/romariotrain/video-platform/internal/video/models"
	"github.com/romariotrain/video-platform/internal/webhook/event"
	"github.com/romariotrain/video-platform/internal/webhook/reconcile"
	"github.com/romariotrain/video-platform/internal/webhook/signature"
)

// Providers retry anything that is not a 2xx. The mapping below is therefore
// a contract: acknowledged statuses mean "never send this again", error
// statuses mean "please retry". Unknown references are the one deliberate
// exception: they come back 404 so the provider retries until the local row
// exists (slot creation and the first webhook can race).
const maxBodyBytes = 1 << 20

type Handler struct {
	mediaVerifier    *signature.MuxVerifier
	identityVerifier *signature.SvixVerifier
	media            *reconcile.MediaReconciler
	identity         *reconcile.IdentityReconciler
	logger           zerolog.Logger
}

func New(
	mediaVerifier *signature.MuxVerifier,
	identityVerifier *signature.SvixVerifier,
	media *reconcile.MediaReconciler,
	identity *reconcile.IdentityReconciler,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		mediaVerifier:    mediaVerifier,
		identityVerifier: identityVerifier,
		media:            media,
		identity:         identity,
		logger:           logger.With().Str("component", "webhook_http").Logger(),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) MediaWebhook(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	if err := h.mediaVerifier.Verify(r.Header, body); err != nil {
		h.logger.Warn().Err(err).Msg("media webhook signature rejected")
		writeErrorJSON(w, http.StatusUnauthorized, "signature verification failed")
		return
	}

	ev, err := event.DecodeMedia(body)
	if err != nil {
		h.writeDecodeError(w, err)
		return
	}

	out, err := h.media.Apply(r.Context(), ev)
	if err != nil {
		h.writeApplyError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"outcome": out.String()})
}

func (h *Handler) IdentityWebhook(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	if err := h.identityVerifier.Verify(r.Header, body); err != nil {
		if errors.Is(err, signature.ErrMissingHeader) {
			writeErrorJSON(w, http.StatusBadRequest, "missing webhook headers")
			return
		}
		h.logger.Warn().Err(err).Msg("identity webhook signature rejected")
		writeErrorJSON(w, http.StatusUnauthorized, "signature verification failed")
		return
	}

	// The identity endpoint only speaks 200/400/401: any payload problem,
	// malformed included, is a plain bad request.
	ev, err := event.DecodeIdentity(body)
	if err != nil {
		if errors.Is(err, models.ErrMalformedEvent) {
			writeErrorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		writeErrorJSON(w, http.StatusBadRequest, "invalid payload")
		return
	}

	deliveryID := r.Header.Get(signature.SvixIDHeader)
	out, err := h.identity.Apply(r.Context(), deliveryID, ev)
	if err != nil {
		if errors.Is(err, models.ErrMalformedEvent) {
			writeErrorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("identity webhook apply failed")
		writeErrorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"outcome": out.String()})
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "unreadable body")
		return nil, false
	}
	return body, true
}

func (h *Handler) writeDecodeError(w http.ResponseWriter, err error) {
	var malformed *event.MalformedError
	if errors.As(err, &malformed) {
		// A created event without its correlation id is a provider contract
		// break, reported as a plain bad request; everything else recognized
		// but unusable is 406 so delivery logs separate the two.
		if malformed.Type == event.TypeAssetCreated && malformed.Field == "upload_id" {
			writeErrorJSON(w, http.StatusBadRequest, malformed.Error())
			return
		}
		writeErrorJSON(w, http.StatusNotAcceptable, malformed.Error())
		return
	}
	writeErrorJSON(w, http.StatusBadRequest, "invalid payload")
}

func (h *Handler) writeApplyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeErrorJSON(w, http.StatusNotFound, "unknown reference")
	case errors.Is(err, models.ErrMalformedEvent):
		writeErrorJSON(w, http.StatusNotAcceptable, err.Error())
	default:
		h.logger.Error().Err(err).Msg("webhook apply failed")
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
