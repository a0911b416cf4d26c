package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Brazilian states and municipalities from the IBGE open API, cached in
// Redis since the dataset changes on a census timescale.

type UF struct {
	ID    int    `json:"id"`
	Sigla string `json:"sigla"`
	Nome  string `json:"nome"`
}

type City struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
}

var ibgeHTTPClient = &http.Client{Timeout: 10 * time.Second}

type LocationService struct {
	BaseURL string
}

// GetUFs returns all states, cache-first.
func (l *LocationService) GetUFs(ctx context.Context) ([]UF, error) {
	var ufs []UF
	if hit, _ := Cache.Get("ibge:ufs", &ufs); hit {
		return ufs, nil
	}

	url := l.BaseURL + "/estados?orderBy=nome"
	if err := l.fetch(ctx, url, &ufs); err != nil {
		return nil, err
	}

	Cache.Set("ibge:ufs", ufs)
	return ufs, nil
}

// GetCitiesByUF returns the municipalities of a state, cache-first.
func (l *LocationService) GetCitiesByUF(ctx context.Context, uf string) ([]City, error) {
	if uf == "" {
		return nil, nil
	}

	cacheKey := "ibge:cities:" + uf
	var cities []City
	if hit, _ := Cache.Get(cacheKey, &cities); hit {
		return cities, nil
	}

	url := fmt.Sprintf("%s/estados/%s/municipios", l.BaseURL, uf)
	if err := l.fetch(ctx, url, &cities); err != nil {
		return nil, err
	}

	Cache.Set(cacheKey, cities)
	return cities, nil
}

func (l *LocationService) fetch(ctx context.Context, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := ibgeHTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("IBGE API returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}
