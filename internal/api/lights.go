package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumen-home/lumen-core/internal/light"
)

// setPowerRequest is the request body for PUT /lights/{id}/power.
type setPowerRequest struct {
	Power light.PowerState `json:"power"`
}

// setBrightnessRequest is the request body for PUT /lights/{id}/brightness.
type setBrightnessRequest struct {
	Brightness uint8 `json:"brightness"`
}

// handleListLights returns every registered light and group in
// registration order.
func (s *Server) handleListLights(w http.ResponseWriter, _ *http.Request) {
	snaps := s.lights.Enumerate()
	writeJSON(w, http.StatusOK, map[string]any{
		"lights": snaps,
		"count":  len(snaps),
	})
}

// handleGetLight returns the cached snapshot for one light.
func (s *Server) handleGetLight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := s.lights.Get(id)
	if err != nil {
		writeNotFound(w, "light not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleSetPower dispatches a power command to one light or group.
func (s *Server) handleSetPower(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setPowerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Power != light.PowerOn && req.Power != light.PowerOff {
		writeBadRequest(w, `power must be "on" or "off"`)
		return
	}

	s.writeDispatchResult(w, id, s.lights.SetPower(r.Context(), id, req.Power))
}

// handleSetBrightness dispatches a brightness command to one light or group.
func (s *Server) handleSetBrightness(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setBrightnessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body (brightness must be 0-255)")
		return
	}

	s.writeDispatchResult(w, id, s.lights.SetBrightness(r.Context(), id, req.Brightness))
}

// handleSetColor dispatches a colour command to one light or group.
// The body is a light.Color: {"mode":"rgb","r":..,"g":..,"b":..} or
// {"mode":"white","kelvin":..}.
func (s *Server) handleSetColor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var color light.Color
	if err := json.NewDecoder(r.Body).Decode(&color); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	s.writeDispatchResult(w, id, s.lights.SetColor(r.Context(), id, color))
}

// writeDispatchResult maps a registry dispatch outcome onto the wire.
//
// On success the fresh cached snapshot is returned. Backend failures are
// reported as 502 — note the cache has already been updated (cache-then-call,
// no rollback), so a subsequent GET reflects the commanded state even when
// the hardware rejected it.
func (s *Server) writeDispatchResult(w http.ResponseWriter, id string, err error) {
	switch {
	case err == nil:
		snap, getErr := s.lights.Get(id)
		if getErr != nil {
			writeInternalError(w, "light vanished after dispatch")
			return
		}
		writeJSON(w, http.StatusOK, snap)
	case errors.Is(err, light.ErrNotFound):
		writeNotFound(w, "light not found: "+id)
	case errors.Is(err, light.ErrInvalidInput):
		writeBadRequest(w, err.Error())
	default:
		// ErrBackendFailed (possibly wrapping ErrUnsupported)
		s.logger.Warn("dispatch failed", "id", id, "error", err)
		writeError(w, http.StatusBadGateway, "backend_failed", err.Error())
	}
}
