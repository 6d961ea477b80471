package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/OxBryte/onchain-linktree/model"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// GetProfile handles GET /api/profile/{username}
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	username := mux.Vars(r)["username"]
	if username == "" {
		SendJSONError(w, http.StatusBadRequest, errors.New("missing username"), "Username is required")
		return
	}

	viewer := r.Header.Get(walletHeader)

	loaded, err := h.profiles.Load(ctx, username, viewer)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Profile load failed")
		SendJSONError(w, http.StatusBadGateway, err, "Failed to load profile")
		return
	}

	if !loaded.Found {
		SendJSONError(w, http.StatusNotFound, errors.New("profile not found"), "No registered user owns this username")
		return
	}

	SendJSONSuccess(w, http.StatusOK, loaded)
}

// ListUsers handles GET /api/users - the discover page data. Entries
// whose details cannot be read or that no longer exist are skipped,
// matching how the discover grid drops unreadable cards.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	addresses, err := h.reader.GetAllUsers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("User list read failed")
		SendJSONError(w, http.StatusBadGateway, err, "Failed to list users")
		return
	}

	users := make([]model.User, 0, len(addresses))
	for _, address := range addresses {
		details, err := h.reader.GetUserDetails(ctx, address)
		if err != nil {
			log.Warn().Err(err).Str("address", address).Msg("Skipping unreadable user entry")
			continue
		}
		if !details.Exists || details.Username == "" {
			continue
		}
		if details.Address == "" {
			details.Address = address
		}
		users = append(users, details)
	}

	SendJSONSuccess(w, http.StatusOK, map[string]interface{}{
		"total": len(users),
		"users": users,
	})
}

type registerRequest struct {
	Username string `json:"username"`
}

// Register handles POST /api/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	caller := r.Header.Get(walletHeader)
	if caller == "" {
		SendJSONError(w, http.StatusUnauthorized, errors.New("missing wallet address"), "Connect a wallet first")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		SendJSONError(w, http.StatusBadRequest, errors.New("missing username"), "Username is required")
		return
	}

	if err := h.profiles.Register(ctx, caller, req.Username); err != nil {
		// Provider message passes through verbatim; the user decides
		// whether to resubmit.
		SendJSONError(w, http.StatusUnprocessableEntity, err, "Registration was not accepted")
		return
	}

	if h.cached != nil {
		h.cached.InvalidateUsers()
	}

	SendJSONSuccess(w, http.StatusCreated, map[string]string{
		"username": req.Username,
		"address":  caller,
	})
}

type addLinkRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AddLink handles POST /api/links
func (h *Handler) AddLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	caller := r.Header.Get(walletHeader)
	if caller == "" {
		SendJSONError(w, http.StatusUnauthorized, errors.New("missing wallet address"), "Connect a wallet first")
		return
	}

	var req addLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	req.Key = strings.TrimSpace(req.Key)
	req.Value = strings.TrimSpace(req.Value)
	if req.Key == "" || req.Value == "" {
		SendJSONError(w, http.StatusBadRequest, errors.New("missing key or value"), "Both key and value are required")
		return
	}

	links, err := h.profiles.AddLink(ctx, caller, req.Key, req.Value)
	if err != nil {
		SendJSONError(w, http.StatusUnprocessableEntity, err, "Link was not accepted")
		return
	}

	SendJSONSuccess(w, http.StatusCreated, map[string]interface{}{
		"links": links,
	})
}

type addLinksRequest struct {
	Keys   []string `json:"keys"`
	Values []string `json:"values"`
}

// AddLinks handles POST /api/links/batch
func (h *Handler) AddLinks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	caller := r.Header.Get(walletHeader)
	if caller == "" {
		SendJSONError(w, http.StatusUnauthorized, errors.New("missing wallet address"), "Connect a wallet first")
		return
	}

	var req addLinksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if len(req.Keys) == 0 || len(req.Keys) != len(req.Values) {
		SendJSONError(w, http.StatusBadRequest, errors.New("keys and values must be non-empty and the same length"), "")
		return
	}

	links, err := h.profiles.AddLinks(ctx, caller, req.Keys, req.Values)
	if err != nil {
		SendJSONError(w, http.StatusUnprocessableEntity, err, "Links were not accepted")
		return
	}

	SendJSONSuccess(w, http.StatusCreated, map[string]interface{}{
		"links": links,
	})
}

type trackClickRequest struct {
	Username string `json:"username"`
	LinkKey  string `json:"linkKey"`
	LinkURL  string `json:"linkUrl"`
}

// TrackClick handles POST /api/track/click. Clicks happen on the
// visitor's side, so the client reports them here.
func (h *Handler) TrackClick(w http.ResponseWriter, r *http.Request) {
	var req trackClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if req.Username == "" || req.LinkKey == "" {
		SendJSONError(w, http.StatusBadRequest, errors.New("missing username or linkKey"), "")
		return
	}

	h.profiles.RecordLinkClick(r.Context(), req.Username, req.LinkKey, req.LinkURL)
	SendJSONSuccess(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}
