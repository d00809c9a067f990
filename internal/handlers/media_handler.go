package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blogmodapk-backend/internal/middleware"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/service"
)

type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

func (h *MediaHandler) List(c *gin.Context) {
	result, err := h.mediaService.List(middleware.ActorFrom(c), service.MediaQuery{
		Page:   c.Query("page"),
		Limit:  c.Query("limit"),
		Type:   c.Query("type"),
		Search: c.Query("search"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *MediaHandler) Create(c *gin.Context) {
	var req models.CreateMediaRequest
	if !bindJSON(c, &req) {
		return
	}
	media, err := h.mediaService.Create(middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"media": media})
}

func (h *MediaHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "media id")
	if !ok {
		return
	}
	if err := h.mediaService.Delete(middleware.ActorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Media deleted"})
}
