// README: Session handlers for create/get/abandon.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"myitinerary/internal/modules/session"
	"myitinerary/internal/service"
	"myitinerary/internal/types"
)

type SessionHandler struct {
	planner *service.TripPlanner
}

func NewSessionHandler(planner *service.TripPlanner) *SessionHandler {
	return &SessionHandler{planner: planner}
}

type createSessionReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Create handles POST /api/sessions. The body is optional.
func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	s := h.planner.Sessions().Create(session.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
	})
	writeJSON(c, http.StatusCreated, gin.H{"session_id": s.ID, "user": s.User})
}

// Get handles GET /api/sessions/:id.
func (h *SessionHandler) Get(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, s.Snapshot())
}

// Delete handles DELETE /api/sessions/:id.
func (h *SessionHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return
	}
	if err := h.planner.Abandon(types.ID(id)); err != nil {
		writePlannerError(c, "abandon", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) lookup(c *gin.Context) (*session.Session, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return nil, false
	}
	s, err := h.planner.Sessions().Get(types.ID(id))
	if err != nil {
		writePlannerError(c, "lookup", err)
		return nil, false
	}
	return s, true
}
