package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/StiliyanIliev27/Memora/internal/apperr"
)

const (
	mapboxBaseURL   = "https://api.mapbox.com/geocoding/v5/mapbox.places"
	suggestionLimit = 10
)

// LocationSuggestion is a geocoding hit offered to the client while
// composing a memory.
type LocationSuggestion struct {
	PlaceID   string  `json:"place_id"`
	Name      string  `json:"name"`
	FullName  string  `json:"full_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      *string `json:"city,omitempty"`
	State     *string `json:"state,omitempty"`
	Country   *string `json:"country,omitempty"`
}

// LocationService proxies the Mapbox geocoding API so the client
// never sees the access token.
type LocationService struct {
	client *http.Client
	token  string
}

// NewLocationService creates a new location service
func NewLocationService(token string) *LocationService {
	return &LocationService{
		client: &http.Client{Timeout: 10 * time.Second},
		token:  token,
	}
}

type mapboxFeature struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	PlaceName string    `json:"place_name"`
	Center    []float64 `json:"center"`
	Context   []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"context"`
}

type mapboxResponse struct {
	Features []mapboxFeature `json:"features"`
}

// Search forward-geocodes a free-text query. Queries shorter than two
// characters yield an empty list.
func (s *LocationService) Search(ctx context.Context, query string) ([]LocationSuggestion, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []LocationSuggestion{}, nil
	}
	endpoint := fmt.Sprintf("%s/%s.json?access_token=%s&types=place,poi,address&limit=%d&language=en",
		mapboxBaseURL, url.PathEscape(query), url.QueryEscape(s.token), suggestionLimit)
	return s.fetch(ctx, endpoint)
}

// Reverse reverse-geocodes coordinates to place suggestions.
func (s *LocationService) Reverse(ctx context.Context, longitude, latitude float64) ([]LocationSuggestion, error) {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return nil, apperr.Validationf("coordinates out of range")
	}
	endpoint := fmt.Sprintf("%s/%f,%f.json?access_token=%s&limit=1",
		mapboxBaseURL, longitude, latitude, url.QueryEscape(s.token))
	return s.fetch(ctx, endpoint)
}

func (s *LocationService) fetch(ctx context.Context, endpoint string) ([]LocationSuggestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding request failed with status %d", resp.StatusCode)
	}

	var body mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	suggestions := make([]LocationSuggestion, 0, len(body.Features))
	for _, f := range body.Features {
		if len(f.Center) < 2 {
			continue
		}
		sug := LocationSuggestion{
			PlaceID:   f.ID,
			Name:      f.Text,
			FullName:  f.PlaceName,
			Longitude: f.Center[0],
			Latitude:  f.Center[1],
		}
		for _, c := range f.Context {
			text := c.Text
			switch {
			case strings.HasPrefix(c.ID, "place"):
				sug.City = &text
			case strings.HasPrefix(c.ID, "region"):
				sug.State = &text
			case strings.HasPrefix(c.ID, "country"):
				sug.Country = &text
			}
		}
		suggestions = append(suggestions, sug)
	}
	return suggestions, nil
}
