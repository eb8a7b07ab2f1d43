// README: HTTP route registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"myitinerary/internal/http/handlers"
)

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")

	sessionHandler := handlers.NewSessionHandler(s.planner)
	api.POST("/sessions", sessionHandler.Create)
	api.GET("/sessions/:id", sessionHandler.Get)
	api.DELETE("/sessions/:id", sessionHandler.Delete)

	itineraryHandler := handlers.NewItineraryHandler(s.planner, s.callTimeout)
	api.POST("/sessions/:id/itinerary", itineraryHandler.Generate)
	api.POST("/sessions/:id/itinerary/adjust", itineraryHandler.Adjust)
	api.GET("/sessions/:id/itinerary", itineraryHandler.Get)
	api.DELETE("/sessions/:id/itinerary", itineraryHandler.Reset)
	api.GET("/sessions/:id/itinerary.pdf", itineraryHandler.PDF)

	usageHandler := handlers.NewUsageHandler(s.planner, s.usage)
	api.GET("/sessions/:id/usage", usageHandler.Get)

	accommodationHandler := handlers.NewAccommodationHandler(s.accommodation)
	api.GET("/accommodations", accommodationHandler.List)
	api.GET("/links", accommodationHandler.Links)
	api.GET("/travel-estimate", accommodationHandler.TravelEstimate)

	api.GET("/options", handlers.Options)
}
