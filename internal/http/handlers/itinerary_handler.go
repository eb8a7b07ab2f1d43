// README: Itinerary handlers for generate/adjust/get and PDF export.
package handlers

import (
	"bytes"
	"context"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"myitinerary/internal/modules/aiusage"
	"myitinerary/internal/modules/export"
	"myitinerary/internal/modules/itinerary"
	"myitinerary/internal/service"
	"myitinerary/internal/types"
)

const (
	formDateLayout = "2006-01-02"

	FlightOptionWith    = "withFlight"
	FlightOptionWithout = "withoutFlight"
	budgetCustom        = "custom"
)

type ItineraryHandler struct {
	planner  *service.TripPlanner
	sessions *SessionHandler
	timeout  time.Duration
}

// NewItineraryHandler bounds each generate or adjust request by timeout (0 = none).
func NewItineraryHandler(planner *service.TripPlanner, timeout time.Duration) *ItineraryHandler {
	return &ItineraryHandler{planner: planner, sessions: NewSessionHandler(planner), timeout: timeout}
}

type generateReq struct {
	Travelers    int    `json:"travelers"`
	Budget       string `json:"budget"`
	CustomBudget string `json:"custom_budget"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Destination  string `json:"destination"`
	TravelType   string `json:"travel_type"`
	FlightOption string `json:"flight_option"`
	Origin       string `json:"origin"`
}

type adjustReq struct {
	Instruction string `json:"instruction"`
}

// toTripRequest converts form fields. Missing fields are left zero for TripRequest.Validate.
func (r generateReq) toTripRequest() (itinerary.TripRequest, error) {
	out := itinerary.TripRequest{
		Travelers:   r.Travelers,
		Destination: strings.TrimSpace(r.Destination),
		TravelType:  itinerary.TravelType(strings.ToLower(strings.TrimSpace(r.TravelType))),
		Origin:      strings.TrimSpace(r.Origin),
	}

	budget := strings.TrimSpace(r.Budget)
	switch {
	case budget == budgetCustom || (budget == "" && strings.TrimSpace(r.CustomBudget) != ""):
		b, err := itinerary.ParseCustomBudget(r.CustomBudget)
		if err != nil {
			return out, err
		}
		out.Budget = b
	case budget != "":
		b, err := itinerary.PredefinedBudget(budget)
		if err != nil {
			return out, err
		}
		out.Budget = b
	}

	var err error
	if out.StartDate, err = parseFormDate("start_date", r.StartDate); err != nil {
		return out, err
	}
	if out.EndDate, err = parseFormDate("end_date", r.EndDate); err != nil {
		return out, err
	}

	switch strings.TrimSpace(r.FlightOption) {
	case FlightOptionWith:
		out.IncludeFlights = true
	case FlightOptionWithout:
		out.IncludeFlights = false
	default:
		return out, &itinerary.ValidationError{Field: "flight_option", Message: itinerary.MsgAllFieldsRequired}
	}
	return out, nil
}

func parseFormDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(formDateLayout, v)
	if err != nil {
		return time.Time{}, &itinerary.ValidationError{Field: field, Message: "Please enter dates as YYYY-MM-DD."}
	}
	return t, nil
}

// Generate handles POST /api/sessions/:id/itinerary.
func (h *ItineraryHandler) Generate(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	tripReq, err := req.toTripRequest()
	if err != nil {
		writePlannerError(c, aiusage.OperationGenerate, err)
		return
	}

	ctx, cancel := h.callContext(c)
	defer cancel()

	res, err := h.planner.Generate(ctx, id, tripReq)
	if err != nil {
		writePlannerError(c, aiusage.OperationGenerate, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"itinerary": res.Itinerary,
		"summary":   res.Summary,
		"drift":     driftList(res.Drift),
	})
}

// Adjust handles POST /api/sessions/:id/itinerary/adjust.
func (h *ItineraryHandler) Adjust(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req adjustReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := h.callContext(c)
	defer cancel()

	res, err := h.planner.Adjust(ctx, id, req.Instruction)
	if err != nil {
		writePlannerError(c, aiusage.OperationAdjust, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"itinerary": res.Itinerary,
		"drift":     driftList(res.Drift),
	})
}

// Get handles GET /api/sessions/:id/itinerary.
func (h *ItineraryHandler) Get(c *gin.Context) {
	s, ok := h.sessions.lookup(c)
	if !ok {
		return
	}
	snap := s.Snapshot()
	if snap.Itinerary == nil {
		writeError(c, http.StatusNotFound, msgNoItinerary)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"itinerary": snap.Itinerary,
		"summary":   snap.Summary,
		"drift":     driftList(snap.Drift),
	})
}

// Reset handles DELETE /api/sessions/:id/itinerary.
func (h *ItineraryHandler) Reset(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.planner.StartOver(id); err != nil {
		writePlannerError(c, "reset", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PDF handles GET /api/sessions/:id/itinerary.pdf.
func (h *ItineraryHandler) PDF(c *gin.Context) {
	s, ok := h.sessions.lookup(c)
	if !ok {
		return
	}
	it, summary := s.Itinerary()
	if it == nil {
		writeError(c, http.StatusNotFound, msgNoItinerary)
		return
	}
	var buf bytes.Buffer
	if err := export.WritePDF(&buf, it, summary); err != nil {
		writePlannerError(c, "export", err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename(it)}))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *ItineraryHandler) callContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func sessionID(c *gin.Context) (types.ID, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return "", false
	}
	return types.ID(id), true
}

func driftList(d []itinerary.DriftIssue) []itinerary.DriftIssue {
	if d == nil {
		return []itinerary.DriftIssue{}
	}
	return d
}
