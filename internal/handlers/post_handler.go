package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"blogmodapk-backend/internal/middleware"
	"blogmodapk-backend/internal/service"
)

type PostHandler struct {
	postService    *service.PostService
	counterService *service.CounterService
}

func NewPostHandler(postService *service.PostService, counterService *service.CounterService) *PostHandler {
	return &PostHandler{postService: postService, counterService: counterService}
}

func postQueryFrom(c *gin.Context) service.PostQuery {
	search := c.Query("search")
	if search == "" {
		search = c.Query("q")
	}
	return service.PostQuery{
		Page:       c.Query("page"),
		Limit:      c.Query("limit"),
		Status:     c.Query("status"),
		CategoryID: c.Query("categoryId"),
		TagID:      c.Query("tagId"),
		Featured:   c.Query("featured"),
		Search:     search,
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
	}
}

// List serves both /posts and /posts/search.
func (h *PostHandler) List(c *gin.Context) {
	result, err := h.postService.ListPublished(postQueryFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PostHandler) GetBySlug(c *gin.Context) {
	post, err := h.postService.GetPublishedBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *PostHandler) Recent(c *gin.Context) {
	posts, err := h.postService.GetRecent(c.Query("limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *PostHandler) Featured(c *gin.Context) {
	posts, err := h.postService.GetFeatured(c.Query("limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *PostHandler) Related(c *gin.Context) {
	posts, err := h.postService.GetRelated(c.Query("postId"), c.Query("limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *PostHandler) Suggestions(c *gin.Context) {
	suggestions, err := h.postService.Suggest(c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *PostHandler) RecordView(c *gin.Context) {
	count, err := h.counterService.RecordView(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "viewCount": count})
}

// RecordDownload must run behind OptionalAuthMiddleware so signed-in
// downloads are attributed.
func (h *PostHandler) RecordDownload(c *gin.Context) {
	source := service.DownloadSource{
		IPAddress: downloadClientIP(c.Request),
		UserAgent: c.Request.UserAgent(),
	}
	if actor := middleware.ActorFrom(c); actor.ID != 0 {
		id := actor.ID
		source.UserID = &id
	}

	count, err := h.counterService.RecordDownload(c.Param("slug"), source)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "downloadCount": count})
}

// downloadClientIP prefers the first X-Forwarded-For entry, then X-Real-IP.
// The service records "unknown" when both are absent.
func downloadClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}
