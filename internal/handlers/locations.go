package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cinesafe/cinesafe-backend/internal/services"
)

// Locations is the shared IBGE client, set during startup.
var Locations *services.LocationService

// GetUFs lists Brazilian states for the location picker. Public route.
func GetUFs(w http.ResponseWriter, r *http.Request) {
	ufs, err := Locations.GetUFs(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Location service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "ufs": ufs})
}

// GetCities lists the municipalities of a state. Public route.
func GetCities(w http.ResponseWriter, r *http.Request) {
	uf := chi.URLParam(r, "uf")
	if uf == "" {
		writeError(w, http.StatusBadRequest, "Missing state code")
		return
	}

	cities, err := Locations.GetCitiesByUF(r.Context(), uf)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Location service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "cities": cities})
}
