package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"suraksha/internal/emergency"
	"suraksha/internal/geo"
	"suraksha/internal/models"
	"suraksha/internal/store"
	"suraksha/pkg/middleware"
	"suraksha/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handlers) ListSessions(c *gin.Context) {
	sessions, err := h.store.ListSessions(c.Request.Context(), middleware.CurrentUserID(c), c.Query("status"))
	if err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, "could not list sessions")
		return
	}
	response.Success(c, "ok", sessions)
}

func (h *Handlers) GetSession(c *gin.Context) {
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}
	response.Success(c, "ok", session)
}

func (h *Handlers) ListRecordings(c *gin.Context) {
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}
	recordings, err := h.store.ListRecordings(c.Request.Context(), session.ID)
	if err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, "could not list recordings")
		return
	}
	response.Success(c, "ok", recordings)
}

// StreamSession subscribes the caller to the session's live feed: location
// points as they land plus the final status event.
func (h *Handlers) StreamSession(c *gin.Context) {
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}
	h.hub.Serve(c, uuid.NewString(), emergency.SessionGroup(session.ID))
}

// RecentLocations feeds the map view. When the caller supplies its own
// position (?lat=&lng=), each point is annotated with the great-circle
// distance from it.
func (h *Handlers) RecentLocations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	points, err := h.store.ListRecentLocations(c.Request.Context(), middleware.CurrentUserID(c), limit)
	if err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, "could not list locations")
		return
	}

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		response.Success(c, "ok", points)
		return
	}

	type annotated struct {
		store.LocationWithSession
		DistanceKm float64 `json:"distance_km"`
	}
	out := make([]annotated, 0, len(points))
	for _, p := range points {
		out = append(out, annotated{
			LocationWithSession: p,
			DistanceKm:          geo.Distance(lat, lng, p.Latitude, p.Longitude),
		})
	}
	response.Success(c, "ok", out)
}

const dashboardTTL = time.Minute

func dashboardKey(userID uint) string {
	return fmt.Sprintf("dashboard:%d", userID)
}

func (h *Handlers) invalidateDashboard(userID uint) {
	_ = h.cache.Delete(context.Background(), dashboardKey(userID))
}

type dashboardPayload struct {
	ContactCount  int                         `json:"contact_count"`
	ActiveSession *models.EmergencySession    `json:"active_session"`
	LastSession   *models.EmergencySession    `json:"last_session"`
	TimerRunning  bool                        `json:"timer_running"`
	RecentPoints  []store.LocationWithSession `json:"recent_points"`
}

// Dashboard aggregates the home screen in one call. The DB portion is
// cached briefly as a serialized snapshot; each request decodes its own
// copy, so timer state is always read live and no cached value is ever
// mutated across requests.
func (h *Handlers) Dashboard(c *gin.Context) {
	uid := middleware.CurrentUserID(c)

	if cached, ok := h.cache.Get(c.Request.Context(), dashboardKey(uid)); ok {
		if raw, ok := cachedSnapshot(cached); ok {
			var payload dashboardPayload
			if err := json.Unmarshal(raw, &payload); err == nil {
				payload.TimerRunning = h.orch.TimerRemaining(uid) > 0
				response.Success(c, "ok", &payload)
				return
			}
		}
	}

	payload := &dashboardPayload{}
	if profile, err := h.store.GetProfile(c.Request.Context(), uid); err == nil {
		payload.ContactCount = len(profile.EmergencyContacts)
	}
	if sessions, err := h.store.ListSessions(c.Request.Context(), uid, ""); err == nil && len(sessions) > 0 {
		payload.LastSession = &sessions[0]
		for i := range sessions {
			if sessions[i].Status == models.SessionActive {
				payload.ActiveSession = &sessions[i]
				break
			}
		}
	}
	if points, err := h.store.ListRecentLocations(c.Request.Context(), uid, 10); err == nil {
		payload.RecentPoints = points
	}

	if raw, err := json.Marshal(payload); err == nil {
		_ = h.cache.Set(c.Request.Context(), dashboardKey(uid), json.RawMessage(raw), dashboardTTL)
	}
	payload.TimerRunning = h.orch.TimerRemaining(uid) > 0
	response.Success(c, "ok", payload)
}

// cachedSnapshot normalizes what the cache backends hand back: the local
// backend returns the stored json.RawMessage as-is, the redis backend
// returns raw bytes.
func cachedSnapshot(v any) ([]byte, bool) {
	switch b := v.(type) {
	case json.RawMessage:
		return b, true
	case []byte:
		return b, true
	}
	return nil, false
}

// ownedSession loads the :id session and enforces that it belongs to the
// caller. Writes the 404 itself when it does not.
func (h *Handlers) ownedSession(c *gin.Context) (*models.EmergencySession, bool) {
	session, err := h.store.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil || session.UserID != middleware.CurrentUserID(c) {
		response.FailWithStatus(c, http.StatusNotFound, "session not found")
		return nil, false
	}
	return session, true
}
