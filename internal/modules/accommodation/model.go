// README: Accommodation options (static list or Google Places lodging) and travel links.
package accommodation

import (
	"context"
	"errors"

	"myitinerary/internal/maps"
	"myitinerary/internal/modules/itinerary"
)

// ErrUnavailable is returned when the maps integration is not configured.
var ErrUnavailable = errors.New("maps integration not configured")

const (
	SourceStatic = "static"
	SourcePlaces = "places"
)

type Option struct {
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Price    string  `json:"price"`
	Rating   float32 `json:"rating,omitempty"`
	Reviews  int     `json:"reviews,omitempty"`
	PlaceID  string  `json:"place_id,omitempty"`
	Source   string  `json:"source"`
}

// searchKeywords narrows the lodging search to the style of trip.
var searchKeywords = map[itinerary.TravelType]string{
	itinerary.TravelLeisure:   "resort",
	itinerary.TravelBusiness:  "business",
	itinerary.TravelAdventure: "adventure lodge",
	itinerary.TravelCultural:  "heritage",
	itinerary.TravelRomantic:  "romantic boutique",
	itinerary.TravelFamily:    "family friendly",
}

// DefaultOptions is the list shown when no live search is possible.
var DefaultOptions = []Option{
	{Name: "Hotel A", Location: "City Center", Price: "$150 per night", Source: SourceStatic},
	{Name: "Hotel B", Location: "Beachside", Price: "$200 per night", Source: SourceStatic},
	{Name: "Hotel C", Location: "Downtown", Price: "$120 per night", Source: SourceStatic},
}

// LodgingSearcher is implemented by *maps.PlacesService.
type LodgingSearcher interface {
	SearchLodging(ctx context.Context, q maps.LodgingQuery) ([]maps.Place, error)
}

// RouteEstimator is implemented by *maps.RouteService.
type RouteEstimator interface {
	GetTravelEstimate(ctx context.Context, origin, destination string) (maps.TravelEstimate, error)
}
