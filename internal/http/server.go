// README: API gateway; builds the gin engine and delegates to module services.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"myitinerary/internal/http/handlers"
	httpmiddleware "myitinerary/internal/http/middleware"
	"myitinerary/internal/modules/accommodation"
	"myitinerary/internal/service"
)

type ServerDeps struct {
	Planner       *service.TripPlanner
	Accommodation *accommodation.Service
	CORSOrigins   []string

	// Usage is optional; leave it nil when no quota store is configured.
	Usage handlers.UsageReader

	// CallTimeout bounds one generate or adjust request; 0 leaves it to the client.
	CallTimeout time.Duration
}

type Server struct {
	planner       *service.TripPlanner
	accommodation *accommodation.Service
	usage         handlers.UsageReader
	corsOrigins   []string
	callTimeout   time.Duration
}

func NewServer(deps ServerDeps) *Server {
	acc := deps.Accommodation
	if acc == nil {
		acc = accommodation.NewService(nil, nil)
	}
	return &Server{
		planner:       deps.Planner,
		accommodation: acc,
		usage:         deps.Usage,
		corsOrigins:   deps.CORSOrigins,
		callTimeout:   deps.CallTimeout,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(
		httpmiddleware.RequestID(),
		httpmiddleware.Logging(),
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(s.corsOrigins),
	)
	s.registerRoutes(r)
	return r
}
