package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client *maps.Client
	opts   Options
	mode   maps.Mode
}

// NewRouteService creates a new RouteService with the given API Key. Travel
// times are estimated for walking or transit trips when mode is "walking" or
// "transit", and for driving otherwise.
func NewRouteService(apiKey, mode string, opts Options) (*RouteService, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("maps: missing api key")
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client, opts: opts, mode: travelMode(mode)}, nil
}

func travelMode(mode string) maps.Mode {
	switch strings.ToLower(mode) {
	case "walking":
		return maps.TravelModeWalking
	case "transit":
		return maps.TravelModeTransit
	case "bicycling":
		return maps.TravelModeBicycling
	default:
		return maps.TravelModeDriving
	}
}

// TravelTime returns the duration of the first route leg from origin to destination.
func (s *RouteService) TravelTime(ctx context.Context, origin, destination string) (time.Duration, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        s.mode,
		Language:    s.opts.Language,
		Region:      s.opts.Region,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, fmt.Errorf("no route found")
	}

	return routes[0].Legs[0].Duration, nil
}
