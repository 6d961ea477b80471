package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/OxBryte/onchain-linktree/model"
)

var errInvalidKind = errors.New("invalid kind parameter")

// GetAnalytics handles GET /api/analytics - the dashboard snapshot.
// Served from the refresher's latest copy; recomputed on demand only
// before the first refresh completes.
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	SendJSONSuccess(w, http.StatusOK, h.refresher.Snapshot(r.Context()))
}

// GetEvents handles GET /api/analytics/events?kind=&limit= - the raw
// event feed, newest first.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	kind := model.EventKind(r.URL.Query().Get("kind"))
	switch kind {
	case "", model.KindProfileView, model.KindLinkClick, model.KindUserRegistered, model.KindLinkAdded:
	default:
		SendJSONError(w, http.StatusBadRequest, errInvalidKind, "Unknown event kind")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	events := h.events.Query(r.Context(), kind)

	// Newest first, capped at limit.
	recent := make([]model.Event, 0, limit)
	for i := len(events) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, events[i])
	}

	SendJSONSuccess(w, http.StatusOK, map[string]interface{}{
		"total":  len(events),
		"limit":  limit,
		"events": recent,
	})
}
