package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// UnknownAddress is the fallback when reverse geocoding fails. Theft
// reporting never blocks on the geocoder.
const UnknownAddress = "Local desconhecido"

var geocodeHTTPClient = &http.Client{Timeout: 8 * time.Second}

// GeocodeService resolves coordinates to a display address via the
// Nominatim reverse endpoint. Best effort only.
type GeocodeService struct {
	BaseURL string
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Road   string `json:"road"`
		Suburb string `json:"suburb"`
		City   string `json:"city"`
		Town   string `json:"town"`
		State  string `json:"state"`
	} `json:"address"`
}

// ReverseGeocode returns a human-readable address for the coordinates,
// or UnknownAddress on any failure.
func (g *GeocodeService) ReverseGeocode(ctx context.Context, lat, lng float64) string {
	url := fmt.Sprintf("%s/reverse?format=json&lat=%f&lon=%f", g.BaseURL, lat, lng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return UnknownAddress
	}
	req.Header.Set("User-Agent", "cinesafe-backend/1.0")

	resp, err := geocodeHTTPClient.Do(req)
	if err != nil {
		log.Printf("reverse geocode failed: %v", err)
		return UnknownAddress
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return UnknownAddress
	}

	var data nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return UnknownAddress
	}

	if data.DisplayName == "" {
		return UnknownAddress
	}
	return data.DisplayName
}
