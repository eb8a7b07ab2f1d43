package maps

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

// TravelEstimate is the driving time and distance between two places.
type TravelEstimate struct {
	Duration time.Duration
	Distance string
}

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// GetTravelEstimate returns the driving estimate for the first leg of the best route.
func (s *RouteService) GetTravelEstimate(ctx context.Context, origin, destination string) (TravelEstimate, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
		Language:    "en",
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return TravelEstimate{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return TravelEstimate{}, ErrNoRoute
	}

	leg := routes[0].Legs[0]
	return TravelEstimate{Duration: leg.Duration, Distance: leg.Distance.HumanReadable}, nil
}
