// Package httphandler is the HTTP driving adapter: a localhost JSON API over
// the sync engine, consumed by whatever shell renders the UI.
package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ericfisherdev/pulldeck/internal/application"
	"github.com/ericfisherdev/pulldeck/internal/domain/model"
	"github.com/ericfisherdev/pulldeck/internal/domain/port/driven"
)

// Handler serves the JSON API backed by the sync engine. The settings
// snapshot is fixed at construction; the daemon restarts to pick up new
// configuration.
type Handler struct {
	sync     *application.SyncService
	settings model.Settings
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(sync *application.SyncService, settings model.Settings, logger *slog.Logger) *Handler {
	return &Handler{
		sync:     sync,
		settings: settings,
		logger:   logger,
	}
}

// NewRouter returns a chi router with all API routes registered.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", h.State)
		r.Get("/tabs", h.ListTabs)
		r.Get("/tabs/{tabID}/pulls", h.ListTabItems)
		r.Post("/refresh", h.Refresh)
		r.Post("/pulls/{tabID}/{itemID}/details/{group}", h.LoadDetails)
		r.Get("/cost", h.Cost)
		r.Get("/health", h.Health)
	})

	return r
}

// State returns the engine-state summary: in-flight flag, last error, last
// sync time, notification count.
func (h *Handler) State(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StateResponse{
		InFlight:          h.sync.InFlight(),
		LastError:         h.sync.LastError(),
		LastSyncedAt:      formatTime(h.sync.LastSyncedAt()),
		NotificationCount: h.sync.NotificationCount(),
	})
}

// ListTabs returns the configured tabs with their current item counts.
func (h *Handler) ListTabs(w http.ResponseWriter, _ *http.Request) {
	snap := h.sync.Snapshot()

	resp := make([]TabResponse, 0, len(h.settings.Tabs))
	for _, tab := range h.settings.Tabs {
		resp = append(resp, TabResponse{
			ID:        tab.ID,
			Title:     tab.Title,
			Enabled:   tab.Enabled,
			Query:     tab.EffectiveQuery(),
			ItemCount: len(snap.ByTabID[tab.ID]),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListTabItems returns one tab's current item list.
func (h *Handler) ListTabItems(w http.ResponseWriter, r *http.Request) {
	tabID := chi.URLParam(r, "tabID")

	items, err := h.sync.Items(tabID)
	if err != nil {
		writeError(w, http.StatusNotFound, "tab not found")
		return
	}

	writeJSON(w, http.StatusOK, TabItemsResponse{TabID: tabID, Items: items})
}

// Refresh runs one refresh round and returns the resulting engine state.
// ?force=true proceeds even when a round is already in flight.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	force := false
	if v := r.URL.Query().Get("force"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid force parameter")
			return
		}
		force = parsed
	}

	if err := h.sync.RefreshAll(r.Context(), force, h.settings); err != nil {
		h.logger.Error("refresh failed", "error", err)
		writeError(w, http.StatusBadGateway, application.UserMessage(err))
		return
	}

	h.State(w, r)
}

// LoadDetails hydrates one detail group (checks, comments or reviews) for one
// item and returns the updated item.
func (h *Handler) LoadDetails(w http.ResponseWriter, r *http.Request) {
	tabID := chi.URLParam(r, "tabID")
	itemID := chi.URLParam(r, "itemID")
	group := chi.URLParam(r, "group")

	var item model.PullRequestItem
	var err error
	switch group {
	case "checks":
		item, err = h.sync.EnsureChecksLoaded(r.Context(), tabID, itemID, h.settings)
	case "comments":
		item, err = h.sync.EnsureCommentsLoaded(r.Context(), tabID, itemID, h.settings)
	case "reviews":
		item, err = h.sync.EnsureReviewDetailsLoaded(r.Context(), tabID, itemID, h.settings)
	default:
		writeError(w, http.StatusBadRequest, "unknown detail group: expected checks, comments or reviews")
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, application.ErrTabNotFound), errors.Is(err, application.ErrItemNotFound):
			writeError(w, http.StatusNotFound, "item not found")
		default:
			h.logger.Error("detail hydration failed", "tab", tabID, "item", itemID, "group", group, "error", err)
			writeError(w, http.StatusBadGateway, application.UserMessage(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// Cost runs the dry-run cost assessment for the enabled tabs.
func (h *Handler) Cost(w http.ResponseWriter, r *http.Request) {
	assessment, err := h.sync.AssessRefreshCost(r.Context(), h.settings)
	if err != nil {
		if errors.Is(err, driven.ErrMissingToken) {
			writeError(w, http.StatusUnauthorized, application.UserMessage(err))
			return
		}
		h.logger.Error("cost assessment failed", "error", err)
		writeError(w, http.StatusBadGateway, application.UserMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, toCostResponse(assessment))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
