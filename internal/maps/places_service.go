package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

// Place represents a simplified lodging result.
type Place struct {
	Name             string
	Address          string
	Rating           float32
	PlaceID          string
	UserRatingsTotal int
	PriceLevel       int
}

// LodgingQuery refines a lodging search.
type LodgingQuery struct {
	Destination string
	// MinRating drops results rated below it.
	MinRating float32
	// Limit caps the number of results; 0 means no cap.
	Limit int
	// Keywords are prepended to the query (e.g. "beach resort").
	Keywords string
}

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client *maps.Client
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// SearchLodging runs a text search for hotels in the destination, keeping only
// results at or above MinRating, in the order Places ranks them.
func (s *PlacesService) SearchLodging(ctx context.Context, q LodgingQuery) ([]Place, error) {
	destination := strings.TrimSpace(q.Destination)
	if destination == "" {
		return nil, fmt.Errorf("places: destination is required")
	}
	query := "hotels in " + destination
	if q.Keywords != "" {
		query = q.Keywords + " " + query
	}

	r := &maps.TextSearchRequest{
		Query:    query,
		Type:     maps.PlaceTypeLodging,
		Language: "en",
	}

	resp, err := s.client.TextSearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	var results []Place
	for _, result := range resp.Results {
		if result.Rating < q.MinRating {
			continue
		}
		results = append(results, Place{
			Name:             result.Name,
			Address:          result.FormattedAddress,
			Rating:           result.Rating,
			PlaceID:          result.PlaceID,
			UserRatingsTotal: result.UserRatingsTotal,
			PriceLevel:       result.PriceLevel,
		})
		if q.Limit > 0 && len(results) >= q.Limit {
			break
		}
	}
	return results, nil
}
