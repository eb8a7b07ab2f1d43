// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"myitinerary/internal/ai"
	httpmiddleware "myitinerary/internal/http/middleware"
	"myitinerary/internal/modules/aiusage"
	"myitinerary/internal/modules/itinerary"
	"myitinerary/internal/modules/session"
)

// User-facing failure messages.
const (
	msgGenerateFailed   = "Failed to generate itinerary. Please try again."
	msgAdjustFailed     = "Failed to adjust itinerary. Please check your internet connection and try again."
	msgUnprocessable    = "Unable to process the generated itinerary. Please try again."
	msgBusy             = "A request is already in progress for this session."
	msgQuotaExceeded    = "You have used all itinerary requests for this month."
	msgSessionGone      = "This session is no longer active."
	msgSessionNotFound  = "session not found"
	msgNoItinerary      = "no itinerary yet"
	msgInternal         = "internal error"
	msgMapsUnavailable  = "travel estimates are not available"
	msgRouteUnavailable = "no route found"
	msgUsageUnavailable = "usage tracking is not configured"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

// isValidID ensures IDs are alphanumeric and at most 32 chars (matches the ID generator).
func isValidID(v string) bool {
	if v == "" || len(v) > 32 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writePlannerError maps planner and itinerary errors to a status and the message
// the client shows. op selects the generate or adjust wording for transport failures.
func writePlannerError(c *gin.Context, op string, err error) {
	var ve *itinerary.ValidationError
	var te *ai.TransportError

	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(c, http.StatusNotFound, msgSessionNotFound)
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrGateHeld):
		writeJSON(c, http.StatusConflict, errorResponse{Error: msgBusy, Kind: "busy"})
	case errors.Is(err, session.ErrStale), errors.Is(err, session.ErrClosed):
		writeJSON(c, http.StatusGone, errorResponse{Error: msgSessionGone, Kind: "stale"})
	case errors.Is(err, aiusage.ErrInsufficientTokens):
		writeJSON(c, http.StatusTooManyRequests, errorResponse{Error: msgQuotaExceeded, Kind: "quota"})
	case errors.As(err, &ve):
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: ve.Message, Kind: string(itinerary.KindValidation), Field: ve.Field})
	case errors.As(err, &te):
		if te.IsAuth() {
			log.Printf("[HTTP] %s: completion provider rejected the credential: %v", op, err)
		}
		msg := msgGenerateFailed
		if op == aiusage.OperationAdjust {
			msg = msgAdjustFailed
		}
		writeJSON(c, http.StatusBadGateway, errorResponse{Error: msg, Kind: string(itinerary.KindTransport)})
	case itinerary.KindOf(err) == itinerary.KindExtraction:
		writeJSON(c, http.StatusBadGateway, errorResponse{Error: msgUnprocessable, Kind: string(itinerary.KindExtraction)})
	case itinerary.KindOf(err) == itinerary.KindSchemaDrift:
		writeJSON(c, http.StatusUnprocessableEntity, errorResponse{Error: msgUnprocessable, Kind: string(itinerary.KindSchemaDrift)})
	default:
		log.Printf("[HTTP] request_id=%s %s: %v", httpmiddleware.GetRequestID(c), op, err)
		writeError(c, http.StatusInternalServerError, msgInternal)
	}
}
