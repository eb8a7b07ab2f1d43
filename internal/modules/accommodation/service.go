package accommodation

import (
	"context"
	"log"
	"strings"

	"myitinerary/internal/maps"
	"myitinerary/internal/modules/itinerary"
)

const (
	maxResults = 5
	minRating  = 3.5
)

type Service struct {
	places LodgingSearcher
	routes RouteEstimator
}

// NewService accepts nil collaborators; List then serves the static options and
// TravelEstimate reports ErrUnavailable.
func NewService(places LodgingSearcher, routes RouteEstimator) *Service {
	return &Service{places: places, routes: routes}
}

// List returns lodging for the destination, falling back to DefaultOptions when
// search is unavailable, fails or finds nothing. A known travelType narrows the search.
func (s *Service) List(ctx context.Context, destination string, travelType itinerary.TravelType) []Option {
	destination = strings.TrimSpace(destination)
	if s.places == nil || destination == "" {
		return defaults()
	}

	places, err := s.places.SearchLodging(ctx, maps.LodgingQuery{
		Destination: destination,
		MinRating:   minRating,
		Limit:       maxResults,
		Keywords:    searchKeywords[travelType],
	})
	if err != nil {
		log.Printf("[ACCOMMODATION] lodging search destination=%q: %v", destination, err)
		return defaults()
	}
	if len(places) == 0 {
		return defaults()
	}

	out := make([]Option, 0, len(places))
	for _, p := range places {
		out = append(out, Option{
			Name:     p.Name,
			Location: p.Address,
			Price:    priceLabel(p.PriceLevel),
			Rating:   p.Rating,
			Reviews:  p.UserRatingsTotal,
			PlaceID:  p.PlaceID,
			Source:   SourcePlaces,
		})
	}
	return out
}

// TravelEstimate returns the driving estimate between origin and destination.
func (s *Service) TravelEstimate(ctx context.Context, origin, destination string) (maps.TravelEstimate, error) {
	if s.routes == nil {
		return maps.TravelEstimate{}, ErrUnavailable
	}
	return s.routes.GetTravelEstimate(ctx, strings.TrimSpace(origin), strings.TrimSpace(destination))
}

func defaults() []Option {
	out := make([]Option, len(DefaultOptions))
	copy(out, DefaultOptions)
	return out
}

func priceLabel(level int) string {
	if level <= 0 {
		return "Price on request"
	}
	return strings.Repeat("$", level)
}
