package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blogmodapk-backend/internal/middleware"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/service"
)

// AdminPostHandler serves the back office post table. Ownership rules for
// editors are enforced by the service.
type AdminPostHandler struct {
	postService *service.PostService
}

func NewAdminPostHandler(postService *service.PostService) *AdminPostHandler {
	return &AdminPostHandler{postService: postService}
}

func (h *AdminPostHandler) List(c *gin.Context) {
	result, err := h.postService.ListForAdmin(middleware.ActorFrom(c), postQueryFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminPostHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "post id")
	if !ok {
		return
	}
	post, err := h.postService.GetForAdmin(middleware.ActorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *AdminPostHandler) Create(c *gin.Context) {
	var req models.CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.postService.Create(middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func (h *AdminPostHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "post id")
	if !ok {
		return
	}
	var req models.UpdatePostRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.postService.Update(middleware.ActorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *AdminPostHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "post id")
	if !ok {
		return
	}
	if err := h.postService.Delete(middleware.ActorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}
