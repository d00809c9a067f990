package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blogmodapk-backend/internal/middleware"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/service"
)

type TagHandler struct {
	tagService *service.TagService
}

func NewTagHandler(tagService *service.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

func (h *TagHandler) GetAll(c *gin.Context) {
	tags, err := h.tagService.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

func (h *TagHandler) Create(c *gin.Context) {
	var req models.TagRequest
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.tagService.Create(middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tag": tag})
}

func (h *TagHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "tag id")
	if !ok {
		return
	}
	var req models.TagRequest
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.tagService.Update(middleware.ActorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

func (h *TagHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "tag id")
	if !ok {
		return
	}
	if err := h.tagService.Delete(middleware.ActorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}
