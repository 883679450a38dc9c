package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dcode-github/listing_analytics/analytics"
	"github.com/dcode-github/listing_analytics/repository"
	"github.com/rs/zerolog/log"
)

type Response struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Message: msg})
}

// statusError is a handler-level refusal with its own status and message.
type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string { return e.msg }

func notFound(msg string) error { return &statusError{code: http.StatusNotFound, msg: msg} }

// fail maps err onto a status code. Caller mistakes keep their own message;
// anything unexpected is logged under op and answered with msg.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error, msg string) {
	var se *statusError
	switch {
	case errors.As(err, &se):
		writeMessage(w, se.code, se.msg)
	case errors.Is(err, analytics.ErrInvalidParameter), errors.Is(err, repository.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrInvalidID):
		writeMessage(w, http.StatusBadRequest, "Invalid property ID")
	case errors.Is(err, repository.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Property not found")
	default:
		log.Error().Err(err).
			Str("op", op).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		resp := ErrorResponse{Message: msg}
		if h.Development {
			resp.Error = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// cached serves a GET from the response cache and fills the cache on a miss.
// Only successful responses are stored.
func (h *Handler) cached(w http.ResponseWriter, r *http.Request, op, msg string, load func(ctx context.Context) (interface{}, error)) {
	key := h.Cache.Key(r.URL.Path, r.URL.Query())
	if body, ok := h.Cache.Get(r.Context(), key); ok {
		writeRaw(w, "HIT", body)
		return
	}

	v, err := load(r.Context())
	if err != nil {
		h.fail(w, r, op, err, msg)
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		h.fail(w, r, op, err, "Failed to encode response")
		return
	}
	h.Cache.Set(r.Context(), key, body)
	writeRaw(w, "MISS", body)
}

func writeRaw(w http.ResponseWriter, cacheStatus string, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheStatus)
	if _, err := w.Write(body); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}
