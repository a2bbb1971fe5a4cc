package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cafelog/internal/model"
)

const (
	yelpAPIBase     = "https://api.yelp.com/v3"
	defaultNear     = "Singapore"
	yelpResultLimit = "8"
)

// YelpLocator finds cafes through the Yelp Fusion API.
type YelpLocator struct {
	apiKey     string
	near       string
	baseURL    string
	httpClient *http.Client
}

// NewYelpLocator creates a locator that biases results towards near.
func NewYelpLocator(apiKey, near string) *YelpLocator {
	if strings.TrimSpace(near) == "" {
		near = defaultNear
	}
	return &YelpLocator{
		apiKey:     apiKey,
		near:       near,
		baseURL:    yelpAPIBase,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Suggest searches for cafes and coffee shops matching the query.
func (y *YelpLocator) Suggest(ctx context.Context, query string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Candidate{}, nil
	}

	params := url.Values{}
	params.Set("term", query)
	params.Set("categories", "cafes,coffee")
	params.Set("limit", yelpResultLimit)
	params.Set("sort_by", "best_match")
	params.Set("location", y.near)

	var result businessSearchResponse
	if err := y.get(ctx, "/businesses/search?"+params.Encode(), &result); err != nil {
		return []Candidate{}, err
	}

	candidates := make([]Candidate, 0, len(result.Businesses))
	for _, b := range result.Businesses {
		candidates = append(candidates, b.candidate())
	}
	return candidates, nil
}

// Resolve fetches the business behind a candidate and returns its address
// and exact coordinate.
func (y *YelpLocator) Resolve(ctx context.Context, c Candidate) (model.Place, error) {
	if c.ID == "" {
		return model.Place{}, ErrUnresolved
	}

	var business businessDetail
	if err := y.get(ctx, "/businesses/"+url.PathEscape(c.ID), &business); err != nil {
		return model.Place{}, fmt.Errorf("%w: %v", ErrUnresolved, err)
	}

	coord := model.Coordinate{Lat: business.Coordinates.Latitude, Lon: business.Coordinates.Longitude}
	if !coord.Valid() || (coord.Lat == 0 && coord.Lon == 0) {
		return model.Place{}, ErrUnresolved
	}

	return model.Place{Address: c.Label(), Coordinate: coord}, nil
}

func (y *YelpLocator) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+y.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("JSON decode error: %w", err)
	}
	return nil
}

// API response types

type businessSearchResponse struct {
	Businesses []businessDetail `json:"businesses"`
	Total      int              `json:"total"`
}

type businessDetail struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Price       string      `json:"price"`
	Categories  []category  `json:"categories"`
	Coordinates coordinates `json:"coordinates"`
	Location    *location   `json:"location"`
	IsClosed    bool        `json:"is_closed"`
}

func (b businessDetail) candidate() Candidate {
	c := Candidate{
		ID:    b.ID,
		Title: b.Name,
		Coordinate: model.Coordinate{
			Lat: b.Coordinates.Latitude,
			Lon: b.Coordinates.Longitude,
		},
	}
	if b.Location != nil {
		c.Subtitle = b.Location.subtitle()
	}
	return c
}

type category struct {
	Alias string `json:"alias"`
	Title string `json:"title"`
}

type coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type location struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	ZipCode  string `json:"zip_code"`
	Country  string `json:"country"`
}

func (l location) subtitle() string {
	var parts []string
	for _, p := range []string{l.Address1, l.Address2, l.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
