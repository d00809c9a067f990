package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blogmodapk-backend/internal/middleware"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/service"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
	postService     *service.PostService
}

func NewCategoryHandler(categoryService *service.CategoryService, postService *service.PostService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, postService: postService}
}

func (h *CategoryHandler) GetAll(c *gin.Context) {
	categories, err := h.categoryService.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *CategoryHandler) GetBySlug(c *gin.Context) {
	category, err := h.categoryService.GetBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *CategoryHandler) Posts(c *gin.Context) {
	category, result, err := h.postService.ListByCategorySlug(c.Param("slug"), postQueryFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category":   category,
		"posts":      result.Posts,
		"pagination": result.Pagination,
	})
}

func (h *CategoryHandler) AdminList(c *gin.Context) {
	categories, err := h.categoryService.GetAllForAdmin(middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req models.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.Create(middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "category id")
	if !ok {
		return
	}
	var req models.UpdateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.Update(middleware.ActorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "category id")
	if !ok {
		return
	}
	if err := h.categoryService.Delete(middleware.ActorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
