package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"suraksha/internal/device"
	"suraksha/internal/models"
	"suraksha/pkg/middleware"
	"suraksha/pkg/response"

	"github.com/gin-gonic/gin"
)

const maxClipBytes = 64 << 20

// PushPosition receives a position fix from the mobile client and feeds it
// into the gateway; any active watch on that user's feed sees it.
func (h *Handlers) PushPosition(c *gin.Context) {
	var req struct {
		Lat      float64  `json:"lat" binding:"required"`
		Lng      float64  `json:"lng" binding:"required"`
		Accuracy *float64 `json:"accuracy"`
		Speed    *float64 `json:"speed"`
		Heading  *float64 `json:"heading"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "lat and lng are required", nil)
		return
	}
	h.locations.Push(middleware.CurrentUserID(c), device.Position{
		Lat:       req.Lat,
		Lng:       req.Lng,
		Accuracy:  req.Accuracy,
		Speed:     req.Speed,
		Heading:   req.Heading,
		Timestamp: time.Now(),
	})
	response.Success(c, "position recorded", nil)
}

// UploadMedia delivers a captured clip from the device. The form carries the
// media kind plus the file; the upload is dropped with 409 when no capture
// is waiting for it. A denied=true field reports a refused permission
// instead of a clip, failing the waiting capture at once.
func (h *Handlers) UploadMedia(c *gin.Context) {
	kind := c.PostForm("kind")
	switch kind {
	case models.RecordingAudio, models.RecordingVideo, models.RecordingImage:
	default:
		response.Fail(c, "kind must be audio, video or image", nil)
		return
	}

	if c.PostForm("denied") == "true" {
		if !h.media.Deny(middleware.CurrentUserID(c), kind) {
			response.FailWithStatus(c, http.StatusConflict, "no capture waiting for this device")
			return
		}
		response.Success(c, "permission denial recorded", nil)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, "file is required", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxClipBytes+1))
	if err != nil || len(data) == 0 || len(data) > maxClipBytes {
		response.Fail(c, "file is empty or too large", nil)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	durationSecs, _ := strconv.Atoi(c.PostForm("duration_seconds"))

	clip := device.Clip{
		Data:     data,
		MimeType: mimeType,
		Duration: time.Duration(durationSecs) * time.Second,
	}
	if !h.media.Offer(middleware.CurrentUserID(c), kind, clip) {
		response.FailWithStatus(c, http.StatusConflict, "no capture waiting for this upload")
		return
	}
	response.Success(c, "clip accepted", nil)
}

// DownloadRecording streams the stored artifact back to its owner.
func (h *Handlers) DownloadRecording(c *gin.Context) {
	rec, err := h.store.GetRecording(c.Request.Context(), c.Param("id"))
	if err != nil || rec.UserID != middleware.CurrentUserID(c) {
		response.FailWithStatus(c, http.StatusNotFound, "recording not found")
		return
	}

	body, size, err := h.store.OpenBlob(rec.FilePath)
	if err != nil {
		response.FailWithStatus(c, http.StatusNotFound, "recording file missing")
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", `attachment; filename="`+rec.FileName+`"`)
	c.DataFromReader(http.StatusOK, size, rec.MimeType, body, nil)
}
