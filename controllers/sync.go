package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dcode-github/listing_analytics/mirror"
	"github.com/dcode-github/listing_analytics/models"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
)

const defaultSyncTimeout = 10 * time.Minute

type syncResponse struct {
	Message     string `json:"message"`
	Synced      int    `json:"synced"`
	Skipped     int    `json:"skipped"`
	Errored     int    `json:"errored"`
	Uncommitted int    `json:"uncommitted,omitempty"`
	Error       string `json:"error,omitempty"`
}

// TriggerSync runs one mirror sync pass. The pass outlives a disconnected
// client. Per-record errors still answer 200; a failed commit answers 500
// with the number of writes that were not applied.
func (h *Handler) TriggerSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timeout := h.SyncTimeout
		if timeout <= 0 {
			timeout = defaultSyncTimeout
		}
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeout)
		defer cancel()

		tally, err := h.Sync.Run(ctx)
		resp := syncResponse{Synced: tally.Synced, Skipped: tally.Skipped, Errored: tally.Errored}
		if err != nil {
			log.Error().Err(err).Msg("Error in manual sync trigger")
			resp.Message = "Sync failed"
			var commitErr *mirror.BatchCommitError
			if errors.As(err, &commitErr) {
				resp.Uncommitted = commitErr.Uncommitted
			}
			if h.Development {
				resp.Error = err.Error()
			}
			writeJSON(w, http.StatusInternalServerError, resp)
			return
		}
		resp.Message = "Mirror sync triggered successfully"
		writeJSON(w, http.StatusOK, resp)
	}
}

// SaveBackup stores a new record and writes its mirror copy right away.
// Records matching an existing propertyId, or an existing name, location and
// price, are refused. A mirror copy that already exists is left untouched.
func (h *Handler) SaveBackup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var property models.Property
		if err := decodeBody(r, &property); err != nil {
			writeJSON(w, http.StatusBadRequest, models.APIResponse{Message: "Invalid request body"})
			return
		}
		if _, err := mirror.Key(property); err != nil {
			writeJSON(w, http.StatusBadRequest, models.APIResponse{Message: "propertyId is required"})
			return
		}

		exists, err := h.Properties.Exists(r.Context(), property)
		if err != nil {
			h.fail(w, r, "save backup", err, "Error saving property")
			return
		}
		if exists {
			writeJSON(w, http.StatusBadRequest, models.APIResponse{Message: "Property already exists in MongoDB"})
			return
		}

		if err := h.Properties.Insert(r.Context(), &property); err != nil {
			h.fail(w, r, "save backup", err, "Error saving property")
			return
		}
		h.Cache.InvalidateAsync()

		doc, err := mirror.NewDocument(property)
		if err != nil {
			h.fail(w, r, "save backup mirror", err, "Property saved to MongoDB but mirror write failed")
			return
		}
		mirrored, err := h.Mirror.Exists(r.Context(), doc.Key)
		if err == nil && !mirrored {
			err = h.Mirror.Commit(r.Context(), []mirror.Document{doc})
		}
		if err != nil {
			h.fail(w, r, "save backup mirror", err, "Property saved to MongoDB but mirror write failed")
			return
		}

		msg := "Property saved to MongoDB and synced to mirror"
		if mirrored {
			msg = "Property saved to MongoDB, mirror copy already present"
		}
		log.Info().Str("id", property.ID.Hex()).Str("propertyId", doc.Key).Bool("alreadyMirrored", mirrored).Msg("Property saved to MongoDB and mirror")
		writeJSON(w, http.StatusCreated, models.APIResponse{
			Success: true,
			Message: msg,
			Data:    property,
		})
	}
}

func (h *Handler) GetBackup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		properties, err := h.Properties.Find(r.Context(), bson.M{})
		if err != nil {
			h.fail(w, r, "get backup", err, "Error fetching properties")
			return
		}
		writeJSON(w, http.StatusOK, models.APIResponse{Success: true, Data: properties})
	}
}
