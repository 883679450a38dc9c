package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dcode-github/listing_analytics/analytics"
	"github.com/dcode-github/listing_analytics/models"
	"github.com/dcode-github/listing_analytics/repository"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	filterLimit         = 100
	defaultSearchLimit  = 20
	defaultVerifyStatus = "Verified"
)

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(repository.NewestFirst)
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string, def int64) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, &statusError{code: http.StatusBadRequest, msg: name + " must be a non-negative integer"}
	}
	return n, nil
}

func (h *Handler) UploadProperty() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var property models.Property
		if err := decodeBody(r, &property); err != nil {
			log.Debug().Err(err).Msg("Invalid upload body")
			writeMessage(w, http.StatusBadRequest, "Images must be an array of URLs.")
			return
		}
		if property.Images == nil {
			writeMessage(w, http.StatusBadRequest, "Images must be an array of URLs.")
			return
		}
		if listedOn := string(property.ListedOn); listedOn != "" {
			if _, err := time.Parse(analytics.DateLayout, listedOn); err != nil {
				writeMessage(w, http.StatusBadRequest, "listedOn must use YYYY-MM-DD.")
				return
			}
		}

		if err := h.Properties.Insert(r.Context(), &property); err != nil {
			h.fail(w, r, "upload property", err, "Internal server error")
			return
		}
		h.Cache.InvalidateAsync()

		log.Info().Str("id", property.ID.Hex()).Str("propertyId", property.PropertyID).Msg("Property uploaded")
		writeJSON(w, http.StatusCreated, property)
	}
}

func (h *Handler) UpdateRemarks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PropertyID string `json:"propertyId"`
			Remarks    string `json:"remarks"`
		}
		if err := decodeBody(r, &body); err != nil || body.PropertyID == "" || body.Remarks == "" {
			writeMessage(w, http.StatusBadRequest, "propertyId and remarks are required.")
			return
		}

		updated, err := h.Properties.UpdateByID(r.Context(), body.PropertyID, bson.M{"remarks": body.Remarks})
		if err != nil {
			h.fail(w, r, "update remarks", err, "Internal server error")
			return
		}
		h.Cache.InvalidateAsync()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":  "Remarks updated successfully",
			"property": updated,
		})
	}
}

// GetProperties lists every record, newest first. With limit it lists only
// pinned premium records that are verified or unreviewed.
func (h *Handler) GetProperties() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.cached(w, r, "get properties", "Internal server error", func(ctx context.Context) (interface{}, error) {
			limit, err := queryInt(r, "limit", 0)
			if err != nil {
				return nil, err
			}
			filter, opts := bson.M{}, newestFirst()
			if limit > 0 {
				filter = repository.PinnedFilter()
				opts.SetLimit(limit)
			}
			return h.Properties.Find(ctx, filter, opts)
		})
	}
}

func (h *Handler) GetPaginatedProperties() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.cached(w, r, "get paginated properties", "Internal server error", func(ctx context.Context) (interface{}, error) {
			limit, err := queryInt(r, "limit", 0)
			if err != nil {
				return nil, err
			}
			offset, err := queryInt(r, "offset", 0)
			if err != nil {
				return nil, err
			}
			opts := newestFirst().SetSkip(offset)
			if limit > 0 {
				opts.SetLimit(limit)
			}
			return h.Properties.Find(ctx, bson.M{}, opts)
		})
	}
}

func (h *Handler) GetPropertyCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := h.Properties.Count(r.Context(), bson.M{})
		if err != nil {
			h.fail(w, r, "count properties", err, "Internal Server Error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"count": count})
	}
}

func (h *Handler) GetPropertyPosition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		position, total, err := h.Properties.Position(r.Context(), id)
		if err != nil {
			h.fail(w, r, "property position", err, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"_id":      id,
			"position": position,
			"total":    total,
		})
	}
}

func (h *Handler) GetPropertyByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		property, err := h.Properties.FindByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			h.fail(w, r, "get property", err, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, property)
	}
}

func (h *Handler) GetVerifiedDocuments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		if status == "" {
			status = defaultVerifyStatus
		}
		documents, err := h.Properties.Find(r.Context(), bson.M{"verified": status}, newestFirst())
		if err != nil {
			h.fail(w, r, "verified documents", err, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "success",
			"results": len(documents),
			"data":    map[string]interface{}{"documents": documents},
		})
	}
}

func (h *Handler) UpdateVerificationStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PropertyID string `json:"propertyId"`
			Status     string `json:"status"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if body.Status != repository.VerifiedByAdmin && body.Status != repository.RejectedByAdmin {
			writeMessage(w, http.StatusBadRequest, "Invalid status provided")
			return
		}

		document, err := h.Properties.UpdateOne(r.Context(), bson.M{"propertyId": body.PropertyID}, bson.M{"verified": body.Status})
		if err != nil {
			h.fail(w, r, "update verification", err, "Internal server error")
			return
		}
		h.Cache.InvalidateAsync()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"data":   map[string]interface{}{"document": document},
		})
	}
}

func (h *Handler) FilterPropertiesByBody() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.FilterRequest
		if err := decodeBody(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		filter, err := repository.BodyFilter(req)
		if err != nil {
			h.fail(w, r, "filter properties", err, "Internal server error")
			return
		}

		opts := options.Find().SetSort(bson.D{{Key: "listedOn", Value: -1}}).SetLimit(filterLimit)
		properties, err := h.Properties.Find(r.Context(), filter, opts)
		if err != nil {
			h.fail(w, r, "filter properties", err, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, properties)
	}
}

func (h *Handler) DeleteProperty() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := h.Properties.DeleteByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			h.fail(w, r, "delete property", err, "Server error")
			return
		}
		h.Cache.InvalidateAsync()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":    "Document deleted successfully",
			"deletedDoc": deleted,
		})
	}
}

func (h *Handler) GetPropertiesByIds() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PropertyIDs []string `json:"propertyIds"`
		}
		if err := decodeBody(r, &body); err != nil || len(body.PropertyIDs) == 0 {
			writeMessage(w, http.StatusBadRequest, "propertyIds must be a non-empty array")
			return
		}
		properties, err := h.Properties.Find(r.Context(), bson.M{"propertyId": bson.M{"$in": body.PropertyIDs}})
		if err != nil {
			h.fail(w, r, "properties by ids", err, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, properties)
	}
}
