package handlers

import (
	"net/http"
	"time"

	"suraksha/internal/models"
	"suraksha/pkg/errors"
	"suraksha/pkg/middleware"
	"suraksha/pkg/response"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) HoldPress(c *gin.Context) {
	h.orch.HoldPress(middleware.CurrentUserID(c))
	response.Success(c, "hold armed", nil)
}

func (h *Handlers) HoldRelease(c *gin.Context) {
	h.orch.HoldRelease(middleware.CurrentUserID(c))
	response.Success(c, "hold released", gin.H{"progress": 0})
}

func (h *Handlers) HoldProgress(c *gin.Context) {
	response.Success(c, "ok", gin.H{"progress": h.orch.HoldProgress(middleware.CurrentUserID(c))})
}

// Activate triggers the SOS flow directly, bypassing the hold gesture. Used
// by clients that run the countdown locally.
func (h *Handlers) Activate(c *gin.Context) {
	uid := middleware.CurrentUserID(c)
	session, err := h.orch.Activate(c.Request.Context(), uid)
	if err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, errors.GetMessage(err))
		return
	}
	h.invalidateDashboard(uid)
	response.Created(c, "emergency activated", session)
}

func (h *Handlers) ResolveSession(c *gin.Context) {
	h.closeSession(c, models.SessionResolved)
}

func (h *Handlers) CancelSession(c *gin.Context) {
	h.closeSession(c, models.SessionCancelled)
}

func (h *Handlers) closeSession(c *gin.Context, status string) {
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}
	if session.Status != models.SessionActive {
		response.Fail(c, "session already closed", nil)
		return
	}
	if err := h.orch.Resolve(c.Request.Context(), session.ID, status); err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, errors.GetMessage(err))
		return
	}
	h.invalidateDashboard(session.UserID)
	response.Success(c, "session "+status, nil)
}

// CaptureVideo starts an on-demand video recording on an active session.
func (h *Handlers) CaptureVideo(c *gin.Context) {
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}
	var req struct {
		MaxSeconds int `json:"max_seconds"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.MaxSeconds <= 0 {
		req.MaxSeconds = 60
	}

	if err := h.orch.CaptureVideo(c.Request.Context(), session.ID, time.Duration(req.MaxSeconds)*time.Second); err != nil {
		if errors.HasCode(err, errors.CodeDeviceUnavailable) {
			response.Fail(c, "camera unavailable or another recording is in progress", nil)
			return
		}
		response.FailWithStatus(c, http.StatusInternalServerError, errors.GetMessage(err))
		return
	}
	response.Success(c, "video recorded", nil)
}

// --- safety timer ---

func (h *Handlers) TimerStart(c *gin.Context) {
	var req struct {
		Minutes int `json:"minutes" binding:"required,min=1,max=720"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "minutes must be between 1 and 720", nil)
		return
	}
	h.orch.StartSafetyTimer(middleware.CurrentUserID(c), time.Duration(req.Minutes)*time.Minute)
	response.Success(c, "safety timer started", gin.H{"minutes": req.Minutes})
}

func (h *Handlers) TimerCheckIn(c *gin.Context) {
	if !h.orch.TimerCheckIn(middleware.CurrentUserID(c)) {
		response.Fail(c, "no timer running", nil)
		return
	}
	response.Success(c, "checked in safely", nil)
}

func (h *Handlers) TimerStop(c *gin.Context) {
	if !h.orch.TimerStop(middleware.CurrentUserID(c)) {
		response.Fail(c, "no timer running", nil)
		return
	}
	response.Success(c, "safety timer stopped", nil)
}

func (h *Handlers) TimerStatus(c *gin.Context) {
	remaining := h.orch.TimerRemaining(middleware.CurrentUserID(c))
	response.Success(c, "ok", gin.H{
		"running":           remaining > 0,
		"remaining_seconds": int(remaining / time.Second),
	})
}
