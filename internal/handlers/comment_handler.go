package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blogmodapk-backend/internal/middleware"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) Thread(c *gin.Context) {
	comments, err := h.commentService.Thread(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req models.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.commentService.Create(middleware.ActorFrom(c), c.Param("slug"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"comment": comment,
		"message": "Comment submitted for moderation",
	})
}

func (h *CommentHandler) List(c *gin.Context) {
	result, err := h.commentService.List(middleware.ActorFrom(c), service.CommentQuery{
		Page:   c.Query("page"),
		Limit:  c.Query("limit"),
		Status: c.Query("status"),
		PostID: c.Query("postId"),
		Search: c.Query("search"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CommentHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "comment id")
	if !ok {
		return
	}
	var req models.UpdateCommentStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.commentService.UpdateStatus(middleware.ActorFrom(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "comment id")
	if !ok {
		return
	}
	if err := h.commentService.Delete(middleware.ActorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
