package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/OxBryte/onchain-linktree/resolver"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

// GenerateQR handles GET /qr/{username} - renders a QR code pointing
// at the public profile page, for sharing.
func (h *Handler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	username := mux.Vars(r)["username"]

	if _, err := h.profiles.ResolveAddress(ctx, username); err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			SendJSONError(w, http.StatusNotFound, errors.New("profile not found"), "No registered user owns this username")
			return
		}
		log.Error().Err(err).Str("username", username).Msg("Username resolution failed for QR")
		SendJSONError(w, http.StatusBadGateway, err, "Failed to verify profile")
		return
	}

	// Size parameter (default: 256, min: 128, max: 1024)
	size := 256
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			SendJSONError(w, http.StatusBadRequest, errors.New("invalid size parameter"), "Size must be a number")
			return
		}
		if parsed < 128 || parsed > 1024 {
			SendJSONError(w, http.StatusBadRequest, errors.New("size out of range"), "Size must be between 128 and 1024")
			return
		}
		size = parsed
	}

	profileURL := fmt.Sprintf("%s/%s", h.baseURL, username)

	png, err := qrcode.Encode(profileURL, qrcode.Medium, size)
	if err != nil {
		log.Error().Err(err).Str("url", profileURL).Msg("Failed to generate QR code")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))

	if _, err := w.Write(png); err != nil {
		log.Error().Err(err).Msg("Failed to write QR code response")
		return
	}

	log.Info().
		Str("username", username).
		Str("url", profileURL).
		Int("size", size).
		Msg("Profile QR code generated")
}
