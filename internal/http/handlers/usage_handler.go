// README: Per-session AI usage (remaining allowance and recent calls).
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"myitinerary/internal/modules/aiusage"
	"myitinerary/internal/service"
)

const recentCallsLimit = 10

// UsageReader is implemented by *aiusage.Service.
type UsageReader interface {
	Allowance() int
	Remaining(ctx context.Context, uid string) (int, error)
	RecentCalls(ctx context.Context, uid string, limit int) ([]aiusage.Call, error)
}

type UsageHandler struct {
	sessions *SessionHandler
	usage    UsageReader
}

// NewUsageHandler accepts a nil usage reader; the route then answers 503.
func NewUsageHandler(planner *service.TripPlanner, usage UsageReader) *UsageHandler {
	return &UsageHandler{sessions: NewSessionHandler(planner), usage: usage}
}

type callResp struct {
	Operation string    `json:"operation"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Outcome   string    `json:"outcome"`
	LatencyMS int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// Get handles GET /api/sessions/:id/usage.
func (h *UsageHandler) Get(c *gin.Context) {
	s, ok := h.sessions.lookup(c)
	if !ok {
		return
	}
	if h.usage == nil {
		writeError(c, http.StatusServiceUnavailable, msgUsageUnavailable)
		return
	}

	uid := s.UsageKey()
	remaining, err := h.usage.Remaining(c.Request.Context(), uid)
	if err != nil {
		log.Printf("[HTTP] usage uid=%s: %v", uid, err)
		writeError(c, http.StatusInternalServerError, msgInternal)
		return
	}
	calls, err := h.usage.RecentCalls(c.Request.Context(), uid, recentCallsLimit)
	if err != nil {
		log.Printf("[HTTP] recent calls uid=%s: %v", uid, err)
		writeError(c, http.StatusInternalServerError, msgInternal)
		return
	}

	out := make([]callResp, 0, len(calls))
	for _, call := range calls {
		out = append(out, callResp{
			Operation: call.Operation,
			Provider:  call.Provider,
			Model:     call.Model,
			Outcome:   call.Outcome,
			LatencyMS: call.Latency.Milliseconds(),
			CreatedAt: call.CreatedAt,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{
		"allowance": h.usage.Allowance(),
		"remaining": remaining,
		"calls":     out,
	})
}
