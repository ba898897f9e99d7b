package handlers

import (
	"net/http"

	"suraksha/pkg/response"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) HealthCheck(c *gin.Context) {
	sqlDB, err := h.store.DB().DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		response.FailWithStatus(c, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	response.Success(c, "ok", gin.H{"status": "healthy"})
}
