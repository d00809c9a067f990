package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"blogmodapk-backend/internal/middleware"
	"blogmodapk-backend/internal/service"
)

type SettingHandler struct {
	settingService *service.SettingService
}

func NewSettingHandler(settingService *service.SettingService) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

// Public honours If-None-Match so clients can poll cheaply.
func (h *SettingHandler) Public(c *gin.Context) {
	payload, err := h.settingService.GetPublic()
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("ETag", payload.ETag)
	c.Header("Cache-Control", "public, max-age=60")
	if match := c.GetHeader("If-None-Match"); match != "" && match == payload.ETag {
		c.Status(http.StatusNotModified)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (h *SettingHandler) GetAll(c *gin.Context) {
	payload, err := h.settingService.GetAll(middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (h *SettingHandler) Update(c *gin.Context) {
	var raw map[string]interface{}
	if !bindJSON(c, &raw) {
		return
	}

	values := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			values[key] = ""
		case string, bool, float64:
			values[key] = fmt.Sprint(v)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Setting %s must be a scalar value", key)})
			return
		}
	}

	payload, err := h.settingService.Update(middleware.ActorFrom(c), values)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}
