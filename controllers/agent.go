package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/dcode-github/listing_analytics/analytics"
	"github.com/dcode-github/listing_analytics/repository"
	"github.com/gorilla/mux"
)

func (h *Handler) GetAgentProperties() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID := strings.TrimSpace(mux.Vars(r)["agentId"])
		if agentID == "" {
			writeMessage(w, http.StatusBadRequest, "Agent ID required")
			return
		}
		properties, err := h.Properties.Find(r.Context(), repository.AgentFilter(agentID))
		if err != nil {
			h.fail(w, r, "agent properties", err, "Server error")
			return
		}
		if len(properties) == 0 {
			writeMessage(w, http.StatusNotFound, "No properties found")
			return
		}
		writeJSON(w, http.StatusOK, properties)
	}
}

func (h *Handler) GetLatestPropertyByAgent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent := strings.TrimSpace(r.URL.Query().Get("agent"))
		if agent == "" {
			writeMessage(w, http.StatusBadRequest, "Agent ID is required")
			return
		}
		latest, total, err := h.Properties.Latest(r.Context(), agent)
		if err != nil {
			h.fail(w, r, "latest property", err, "Server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"latestProperty":  latest,
			"totalProperties": total,
		})
	}
}

func (h *Handler) GetAgentStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent := strings.TrimSpace(r.URL.Query().Get("agent"))
		if agent == "" {
			writeMessage(w, http.StatusBadRequest, "Agent is required")
			return
		}
		stats, err := h.Properties.AgentStats(r.Context(), agent)
		if err != nil {
			h.fail(w, r, "agent stats", err, "Something went wrong")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func (h *Handler) GetTopAgents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agents, err := h.Properties.TopAgents(r.Context())
		if err != nil {
			h.fail(w, r, "top agents", err, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, agents)
	}
}

type weeklyDocuments struct {
	AgentID    string                  `json:"agentId"`
	StartDate  string                  `json:"startDate"`
	EndDate    string                  `json:"endDate"`
	TotalCount int64                   `json:"totalCount"`
	Data       []analytics.BucketCount `json:"data"`
}

// GetAgentWeeklyDocuments counts an agent's listings per weekday between
// startDate and endDate inclusive. The range defaults to the current month.
func (h *Handler) GetAgentWeeklyDocuments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		agentID := strings.TrimSpace(q.Get("agentId"))
		if agentID == "" {
			writeMessage(w, http.StatusBadRequest, "Agent ID is required")
			return
		}

		now := time.Now().UTC()
		month := analytics.MonthRange(now.Year(), now.Month())
		start, end := month.Start, month.End
		if raw := strings.TrimSpace(q.Get("startDate")); raw != "" {
			t, err := time.Parse(analytics.DateLayout, raw)
			if err != nil {
				writeMessage(w, http.StatusBadRequest, "Invalid startDate. Use YYYY-MM-DD.")
				return
			}
			start = analytics.DayRange(t).Start
		}
		if raw := strings.TrimSpace(q.Get("endDate")); raw != "" {
			t, err := time.Parse(analytics.DateLayout, raw)
			if err != nil {
				writeMessage(w, http.StatusBadRequest, "Invalid endDate. Use YYYY-MM-DD.")
				return
			}
			end = analytics.DayRange(t).End
		}

		series, total, err := h.Aggregator.WeekdayCounts(r.Context(), analytics.Query{Start: start, End: end, Agent: agentID})
		if err != nil {
			h.fail(w, r, "agent weekly documents", err, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, weeklyDocuments{
			AgentID:    agentID,
			StartDate:  start.Format(analytics.DateLayout),
			EndDate:    end.Format(analytics.DateLayout),
			TotalCount: total,
			Data:       series,
		})
	}
}

func (h *Handler) GetAgentSubtypeStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		report, err := h.Aggregator.AgentSubtypes(r.Context(), q.Get("groupBy"), analytics.Params{
			Date:  q.Get("date"),
			Year:  q.Get("year"),
			Month: q.Get("month"),
			Agent: q.Get("agent"),
		})
		if err != nil {
			h.fail(w, r, "agent subtype stats", err, "Something went wrong")
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}
