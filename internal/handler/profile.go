package handlers

import (
	"net/http"

	"suraksha/internal/models"
	"suraksha/pkg/middleware"
	"suraksha/pkg/response"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) GetProfile(c *gin.Context) {
	profile, err := h.store.GetProfile(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.FailWithStatus(c, http.StatusNotFound, "profile not found")
		return
	}
	response.Success(c, "ok", profile)
}

func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req struct {
		Name       string `json:"name"`
		Phone      string `json:"phone"`
		BloodGroup string `json:"blood_group"`
		Language   string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", nil)
		return
	}

	uid := middleware.CurrentUserID(c)
	profile, err := h.store.GetProfile(c.Request.Context(), uid)
	if err != nil {
		profile = &models.Profile{UserID: uid}
	}
	profile.Name = req.Name
	profile.Phone = req.Phone
	profile.BloodGroup = req.BloodGroup
	if req.Language != "" {
		profile.Language = req.Language
	}

	if err := h.store.SaveProfile(c.Request.Context(), profile); err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, "could not save profile")
		return
	}
	h.invalidateDashboard(uid)
	response.Success(c, "profile updated", profile)
}

// ReplaceContacts swaps the embedded contact list wholesale. Every entry is
// validated before anything is written.
func (h *Handlers) ReplaceContacts(c *gin.Context) {
	var req struct {
		Contacts []models.EmergencyContact `json:"contacts"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", nil)
		return
	}
	for _, contact := range req.Contacts {
		if err := contact.Validate(); err != nil {
			response.Fail(c, err.Error(), nil)
			return
		}
	}

	uid := middleware.CurrentUserID(c)
	profile, err := h.store.GetProfile(c.Request.Context(), uid)
	if err != nil {
		profile = &models.Profile{UserID: uid}
	}
	profile.EmergencyContacts = models.ContactList(req.Contacts)

	if err := h.store.SaveProfile(c.Request.Context(), profile); err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, "could not save contacts")
		return
	}
	h.invalidateDashboard(uid)
	response.Success(c, "contacts updated", profile.EmergencyContacts)
}
