package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/dcode-github/listing_analytics/models"
	"github.com/dcode-github/listing_analytics/repository"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
)

type searchPage struct {
	Data  []models.Property `json:"data"`
	Total int64             `json:"total"`
	Count int               `json:"count"`
	Skip  int64             `json:"skip"`
	Limit int64             `json:"limit"`
}

func (h *Handler) SearchAgentProperties() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent := strings.TrimSpace(r.URL.Query().Get("agent"))
		if agent == "" {
			writeMessage(w, http.StatusBadRequest, "Agent ID is required")
			return
		}
		filter := repository.AgentSearchFilter(agent, r.URL.Query().Get("searchQuery"))
		properties, err := h.Properties.Find(r.Context(), filter, newestFirst())
		if err != nil {
			h.fail(w, r, "search agent properties", err, "Internal server error")
			return
		}
		if len(properties) == 0 {
			writeMessage(w, http.StatusNotFound, "No matching properties found")
			return
		}
		writeJSON(w, http.StatusOK, properties)
	}
}

func (h *Handler) SearchProperty() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text := strings.TrimSpace(r.URL.Query().Get("searchQuery"))
		if text == "" {
			writeMessage(w, http.StatusBadRequest, "Search query is required")
			return
		}
		h.cached(w, r, "search properties", "Internal server error", func(ctx context.Context) (interface{}, error) {
			skip, err := queryInt(r, "skip", 0)
			if err != nil {
				return nil, err
			}
			limit, err := queryInt(r, "limit", defaultSearchLimit)
			if err != nil {
				return nil, err
			}

			filter := repository.SearchFilter(text)
			properties, err := h.Properties.Find(ctx, filter, newestFirst().SetSkip(skip).SetLimit(limit))
			if err != nil {
				return nil, err
			}
			total, err := h.Properties.Count(ctx, filter)
			if err != nil {
				return nil, err
			}
			return searchPage{Data: properties, Total: total, Count: len(properties), Skip: skip, Limit: limit}, nil
		})
	}
}

func (h *Handler) LocationProperties() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		location := strings.TrimSpace(r.URL.Query().Get("location"))
		if location == "" {
			writeMessage(w, http.StatusBadRequest, "Location is required")
			return
		}
		h.cached(w, r, "location search", "Internal server error", func(ctx context.Context) (interface{}, error) {
			properties, err := h.Properties.Find(ctx, repository.LocationFilter(location), newestFirst())
			if err != nil {
				return nil, err
			}
			if len(properties) == 0 {
				return nil, notFound("No properties found for the location")
			}
			return properties, nil
		})
	}
}

// UpdateProperty applies a partial edit; empty fields are left unchanged.
func (h *Handler) UpdateProperty() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update models.PropertyUpdate
		if err := decodeBody(r, &update); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid update data")
			return
		}
		updated, err := h.Properties.UpdateByID(r.Context(), mux.Vars(r)["id"], repository.UpdateSet(update))
		if err != nil {
			h.fail(w, r, "update property", err, "Internal Server Error")
			return
		}
		h.Cache.InvalidateAsync()
		writeJSON(w, http.StatusOK, updated)
	}
}

func (h *Handler) UpdatePropertyImages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Updates []models.ImageUpdate `json:"updates"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeMessage(w, http.StatusBadRequest, "Updates array is required")
			return
		}

		id := mux.Vars(r)["id"]
		property, err := h.Properties.FindByID(r.Context(), id)
		if err != nil {
			h.fail(w, r, "update images", err, "Internal Server Error")
			return
		}
		images, err := repository.ApplyImageUpdates(property.Images, body.Updates)
		if err != nil {
			h.fail(w, r, "update images", err, "Internal Server Error")
			return
		}
		updated, err := h.Properties.UpdateByID(r.Context(), id, bson.M{"images": images})
		if err != nil {
			h.fail(w, r, "update images", err, "Internal Server Error")
			return
		}
		h.Cache.InvalidateAsync()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":  "Images updated successfully",
			"property": updated,
		})
	}
}
