package handlers

import (
	"net/http"
	"strings"
	"time"

	"suraksha/internal/models"
	"suraksha/pkg/middleware"
	"suraksha/pkg/response"
	"suraksha/pkg/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 30 * 24 * time.Hour

func (h *Handlers) RegisterUser(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", nil)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := h.store.GetUserByEmail(c.Request.Context(), req.Email); err == nil {
		response.Fail(c, "user already exists", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, "could not hash password")
		return
	}

	user := &models.User{Email: req.Email, PasswordHash: hash, DisplayName: req.Name}
	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		response.Fail(c, "could not create user", nil)
		return
	}

	// Profile is created at signup so the contacts screen always has a row.
	profile := &models.Profile{UserID: user.ID, Name: req.Name, Language: "en"}
	if err := h.store.SaveProfile(c.Request.Context(), profile); err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, "could not create profile")
		return
	}

	util.Sig().Emit(models.SigUserCreate, user)
	response.Created(c, "registered", gin.H{"id": user.ID})
}

func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", nil)
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		response.FailWithStatus(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		response.FailWithStatus(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := middleware.IssueToken(h.cfg.JWTSecret, user.ID, tokenTTL)
	if err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, "could not issue token")
		return
	}
	_ = middleware.SetSessionUser(c, user.ID)

	response.Success(c, "logged in", gin.H{"token": token, "user": gin.H{"id": user.ID, "email": user.Email, "name": user.DisplayName}})
}

func (h *Handlers) Logout(c *gin.Context) {
	_ = middleware.ClearSessionUser(c)
	response.Success(c, "logged out", nil)
}

func (h *Handlers) Me(c *gin.Context) {
	user, err := h.store.GetUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.FailWithStatus(c, http.StatusNotFound, "user not found")
		return
	}
	response.Success(c, "ok", gin.H{"id": user.ID, "email": user.Email, "name": user.DisplayName})
}
