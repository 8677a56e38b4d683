package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/pulldeck/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// StateResponse is the engine-state summary served at /api/v1/state.
type StateResponse struct {
	InFlight          bool   `json:"in_flight"`
	LastError         string `json:"last_error"`
	LastSyncedAt      string `json:"last_synced_at,omitempty"`
	NotificationCount int    `json:"notification_count"`
}

// TabResponse is one configured tab with its current item count.
type TabResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Enabled   bool   `json:"enabled"`
	Query     string `json:"query"`
	ItemCount int    `json:"item_count"`
}

// TabItemsResponse is one tab's current item list.
type TabItemsResponse struct {
	TabID string                  `json:"tab_id"`
	Items []model.PullRequestItem `json:"items"`
}

// CostResponse is the dry-run cost assessment for the enabled tabs.
type CostResponse struct {
	TotalCost int               `json:"total_cost"`
	Remaining int               `json:"remaining"`
	Limit     int               `json:"limit"`
	Warning   string            `json:"warning"`
	PerTab    []TabCostResponse `json:"per_tab"`
}

// TabCostResponse is one tab's line of the cost breakdown.
type TabCostResponse struct {
	TabID string `json:"tab_id"`
	Title string `json:"title"`
	Cost  int    `json:"cost"`
	Error string `json:"error,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toCostResponse(a model.CostAssessment) CostResponse {
	perTab := make([]TabCostResponse, 0, len(a.PerTab))
	for _, tc := range a.PerTab {
		perTab = append(perTab, TabCostResponse{
			TabID: tc.TabID,
			Title: tc.Title,
			Cost:  tc.Cost,
			Error: tc.Err,
		})
	}

	return CostResponse{
		TotalCost: a.TotalCost,
		Remaining: a.Remaining,
		Limit:     a.Limit,
		Warning:   string(a.Warning),
		PerTab:    perTab,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
