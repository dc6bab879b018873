// README: Google Places lookups used for activity enrichment and regeneration candidates.
package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"tripplanner/internal/itinerary"
)

// Options localises requests and filters weak results.
type Options struct {
	Language string
	Region   string
	// MinRating drops candidates rated below it. Zero keeps everything.
	MinRating float32
	// ExcludeKeywords disqualify any candidate whose name contains one of them.
	ExcludeKeywords []string
}

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client *maps.Client
	opts   Options
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string, opts Options) (*PlacesService, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("maps: missing api key")
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client, opts: opts}, nil
}

// FindPlace resolves an activity's place name to the best text-search hit
// near the destination. A nil match with nil error means nothing was found.
func (s *PlacesService) FindPlace(ctx context.Context, name, near string) (*itinerary.PlaceMatch, error) {
	results, err := s.textSearch(ctx, withinQuery(name, near))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	m := results[0]
	return &m, nil
}

// SearchNearby returns up to limit places matching query near the location.
func (s *PlacesService) SearchNearby(ctx context.Context, near, query string, limit int) ([]itinerary.PlaceMatch, error) {
	results, err := s.textSearch(ctx, withinQuery(query, near))
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func withinQuery(query, near string) string {
	if near == "" {
		return query
	}
	return fmt.Sprintf("%s near %s", query, near)
}

func (s *PlacesService) textSearch(ctx context.Context, query string) ([]itinerary.PlaceMatch, error) {
	r := &maps.TextSearchRequest{
		Query:    query,
		Language: s.opts.Language,
		Region:   s.opts.Region,
	}

	resp, err := s.client.TextSearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	var results []itinerary.PlaceMatch
	for _, result := range resp.Results {
		if s.opts.MinRating > 0 && result.Rating < s.opts.MinRating {
			continue
		}
		if excluded(result.Name, s.opts.ExcludeKeywords) {
			continue
		}
		results = append(results, itinerary.PlaceMatch{
			Name:    result.Name,
			Address: result.FormattedAddress,
			Rating:  result.Rating,
			PlaceID: result.PlaceID,
		})
	}
	return results, nil
}

func excluded(name string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && containsIgnoreCase(name, kw) {
			return true
		}
	}
	return false
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
