// README: Accommodation, travel link and travel estimate handlers.
package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"myitinerary/internal/maps"
	"myitinerary/internal/modules/accommodation"
	"myitinerary/internal/modules/itinerary"
)

type AccommodationHandler struct {
	accommodation *accommodation.Service
}

func NewAccommodationHandler(svc *accommodation.Service) *AccommodationHandler {
	return &AccommodationHandler{accommodation: svc}
}

// List handles GET /api/accommodations?destination=&travel_type=.
func (h *AccommodationHandler) List(c *gin.Context) {
	travelType := itinerary.TravelType(strings.ToLower(strings.TrimSpace(c.Query("travel_type"))))
	options := h.accommodation.List(c.Request.Context(), c.Query("destination"), travelType)
	writeJSON(c, http.StatusOK, gin.H{"accommodations": options})
}

// Links handles GET /api/links.
func (h *AccommodationHandler) Links(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"links": accommodation.Links()})
}

// TravelEstimate handles GET /api/travel-estimate?origin=&destination=.
func (h *AccommodationHandler) TravelEstimate(c *gin.Context) {
	origin := strings.TrimSpace(c.Query("origin"))
	destination := strings.TrimSpace(c.Query("destination"))
	if origin == "" || destination == "" {
		writeError(c, http.StatusBadRequest, "missing origin or destination")
		return
	}

	est, err := h.accommodation.TravelEstimate(c.Request.Context(), origin, destination)
	switch {
	case errors.Is(err, accommodation.ErrUnavailable):
		writeError(c, http.StatusServiceUnavailable, msgMapsUnavailable)
		return
	case errors.Is(err, maps.ErrNoRoute):
		writeError(c, http.StatusNotFound, msgRouteUnavailable)
		return
	case err != nil:
		log.Printf("[HTTP] travel estimate %q -> %q: %v", origin, destination, err)
		writeError(c, http.StatusBadGateway, msgRouteUnavailable)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"origin":           origin,
		"destination":      destination,
		"duration_minutes": int(est.Duration.Minutes()),
		"distance":         est.Distance,
	})
}
