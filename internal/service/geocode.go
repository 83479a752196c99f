package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rideshare/internal/redis"
)

// Place is a resolved location.
type Place struct {
	DisplayName string
	Lat         float64
	Lng         float64
}

// GeocodeService resolves free-text place names against a
// Nominatim-compatible endpoint, with a Redis cache in front.
type GeocodeService struct {
	baseURL string
	client  *http.Client
	cache   redis.GeocodeCacheInterface
}

// NewGeocodeService creates a new GeocodeService. cache may be nil.
func NewGeocodeService(baseURL string, timeout time.Duration, cache redis.GeocodeCacheInterface) *GeocodeService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GeocodeService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
	}
}

// nominatimResult mirrors the fields we use from the search response.
type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Forward resolves a place name to coordinates. Cache errors are
// ignored; the upstream call is the source of truth.
func (s *GeocodeService) Forward(ctx context.Context, query string) (*Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidQuery
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, query); err == nil && cached != nil {
			return &Place{DisplayName: cached.DisplayName, Lat: cached.Lat, Lng: cached.Lng}, nil
		}
	}

	reqURL := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", s.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "rideshare-tahoe/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, ErrGeocodeUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrGeocodeUnavailable
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, ErrGeocodeUnavailable
	}
	if len(results) == 0 {
		return nil, ErrNoPlaceFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, ErrGeocodeUnavailable
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, ErrGeocodeUnavailable
	}

	place := &Place{DisplayName: results[0].DisplayName, Lat: lat, Lng: lng}

	if s.cache != nil {
		_ = s.cache.Set(ctx, query, &redis.CachedPlace{
			DisplayName: place.DisplayName,
			Lat:         place.Lat,
			Lng:         place.Lng,
		})
	}

	return place, nil
}
