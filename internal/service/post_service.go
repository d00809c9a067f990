package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/repository"
	"blogmodapk-backend/pkg/cache"
	"blogmodapk-backend/pkg/logger"
	"blogmodapk-backend/pkg/utils"
	"blogmodapk-backend/pkg/validator"
)

const (
	contentFormatMarkdown = "markdown"

	defaultRecentLimit   = 6
	defaultFeaturedLimit = 6
	defaultRelatedLimit  = 4
	maxSuggestions       = 5
	minSuggestionQuery   = 2
)

// PostQuery carries the raw listing parameters of a request.
type PostQuery struct {
	Page       string
	Limit      string
	Status     string
	CategoryID string
	TagID      string
	Featured   string
	Search     string
	SortBy     string
	SortOrder  string
}

type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	commentRepo  repository.CommentRepository
	cache        *cache.Cache

	defaultLimit int
	maxLimit     int
}

func NewPostService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
	commentRepo repository.CommentRepository,
	cacheService *cache.Cache,
	defaultLimit, maxLimit int,
) *PostService {
	if maxLimit <= 0 {
		maxLimit = 100
	}
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = 12
	}
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		commentRepo:  commentRepo,
		cache:        cacheService,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

func (s *PostService) buildFilter(q PostQuery, admin bool) (repository.PostFilter, error) {
	filter := repository.PostFilter{
		Search: strings.TrimSpace(q.Search),
		Sort:   repository.ResolvePostSort(q.SortBy, q.SortOrder, admin),
		Page:   parsePage(q.Page),
		Limit:  clampLimit(q.Limit, s.defaultLimit, s.maxLimit),
	}

	var err error
	if filter.CategoryID, err = parseOptionalID(q.CategoryID, "categoryId"); err != nil {
		return filter, err
	}
	if filter.TagID, err = parseOptionalID(q.TagID, "tagId"); err != nil {
		return filter, err
	}
	if filter.Featured, err = parseOptionalBool(q.Featured, "featured"); err != nil {
		return filter, err
	}

	if !admin {
		published := models.PostStatusPublished
		filter.Status = &published
		return filter, nil
	}

	raw := strings.TrimSpace(q.Status)
	if raw != "" && !strings.EqualFold(raw, "all") {
		status, ok := models.ParsePostStatus(raw)
		if !ok {
			return filter, newValidationError("Invalid status")
		}
		filter.Status = &status
	}
	return filter, nil
}

func (s *PostService) list(filter repository.PostFilter) (*models.PostListResponse, error) {
	posts, total, err := s.postRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return &models.PostListResponse{
		Posts:      posts,
		Pagination: models.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// ListPublished lists PUBLISHED posts whatever status the caller asks for.
func (s *PostService) ListPublished(q PostQuery) (*models.PostListResponse, error) {
	filter, err := s.buildFilter(q, false)
	if err != nil {
		return nil, err
	}
	return s.list(filter)
}

// ListForAdmin lists posts of any status. Editors only see their own posts.
func (s *PostService) ListForAdmin(actor Actor, q PostQuery) (*models.PostListResponse, error) {
	if err := actor.require(authorization.PermissionManageOwnPosts); err != nil {
		return nil, err
	}
	filter, err := s.buildFilter(q, true)
	if err != nil {
		return nil, err
	}
	if !actor.Can(authorization.PermissionManageAllPosts) {
		authorID := actor.ID
		filter.AuthorID = &authorID
	}
	return s.list(filter)
}

// ListByCategorySlug lists the published posts of one category.
func (s *PostService) ListByCategorySlug(slug string, q PostQuery) (*models.Category, *models.PostListResponse, error) {
	category, err := s.categoryRepo.GetBySlug(slug)
	if err != nil {
		return nil, nil, notFoundOr(err, "Category not found", "load category")
	}

	filter, err := s.buildFilter(q, false)
	if err != nil {
		return nil, nil, err
	}
	filter.CategoryID = &category.ID

	result, err := s.list(filter)
	if err != nil {
		return nil, nil, err
	}
	return category, result, nil
}

// GetPublishedBySlug returns a post only while it is PUBLISHED, with its approved comment count.
func (s *PostService) GetPublishedBySlug(slug string) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(slug)
	if err != nil {
		return nil, notFoundOr(err, "Post not found", "load post")
	}
	if !post.IsPublished() {
		return nil, newNotFoundError("Post not found")
	}

	count, err := s.commentRepo.CountByPost(post.ID, models.CommentStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	post.CommentCount = &count
	return post, nil
}

func (s *PostService) GetForAdmin(actor Actor, id uint) (*models.Post, error) {
	post, err := s.loadManageable(actor, id, "view")
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) loadManageable(actor Actor, id uint, verb string) (*models.Post, error) {
	if err := actor.require(authorization.PermissionManageOwnPosts); err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Post not found", "load post")
	}
	if !authorization.CanManagePost(actor.Role, actor.ID, post.AuthorID) {
		return nil, newForbiddenError("You can only %s your own posts", verb)
	}
	return post, nil
}

func (s *PostService) Create(actor Actor, req models.CreatePostRequest) (*models.Post, error) {
	if err := actor.require(authorization.PermissionManageOwnPosts); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, newValidationError("Title is required")
	}

	slug, err := s.resolveSlug(req.Slug, title, 0)
	if err != nil {
		return nil, err
	}

	status := models.PostStatusDraft
	if strings.TrimSpace(req.Status) != "" {
		parsed, ok := models.ParsePostStatus(req.Status)
		if !ok {
			return nil, newValidationError("Invalid status")
		}
		status = parsed
	}

	content, err := renderContent(req.Content, req.ContentFormat)
	if err != nil {
		return nil, err
	}

	if err := s.ensureCategory(req.CategoryID); err != nil {
		return nil, err
	}
	tags, err := s.loadTags(req.TagIDs)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:           title,
		Slug:            slug,
		Excerpt:         validator.SanitizeText(req.Excerpt),
		Content:         content,
		FeaturedImage:   strings.TrimSpace(req.FeaturedImage),
		Status:          status,
		Featured:        req.Featured,
		CategoryID:      req.CategoryID,
		AuthorID:        actor.ID,
		Tags:            tags,
		Version:         strings.TrimSpace(req.Version),
		FileSize:        strings.TrimSpace(req.FileSize),
		Requirements:    strings.TrimSpace(req.Requirements),
		Developer:       strings.TrimSpace(req.Developer),
		DownloadURL:     strings.TrimSpace(req.DownloadURL),
		MetaTitle:       strings.TrimSpace(req.MetaTitle),
		MetaDescription: strings.TrimSpace(req.MetaDescription),
		MetaKeywords:    strings.TrimSpace(req.MetaKeywords),
	}
	if status == models.PostStatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.postRepo.Create(post); err != nil {
		if isDuplicateKeyError(err) {
			return nil, newConflictError("Post with this slug already exists")
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.invalidateListings()
	return s.reload(post.ID)
}

// Update applies the supplied fields. Nothing is written when the caller may not manage the post.
func (s *PostService) Update(actor Actor, id uint, req models.UpdatePostRequest) (*models.Post, error) {
	post, err := s.loadManageable(actor, id, "edit")
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, newValidationError("Title is required")
		}
		post.Title = title
	}
	if req.Slug != nil {
		slug, err := s.resolveSlug(*req.Slug, post.Title, post.ID)
		if err != nil {
			return nil, err
		}
		post.Slug = slug
	}
	if req.Excerpt != nil {
		post.Excerpt = validator.SanitizeText(*req.Excerpt)
	}
	if req.Content != nil {
		content, err := renderContent(*req.Content, req.ContentFormat)
		if err != nil {
			return nil, err
		}
		post.Content = content
	}
	if req.FeaturedImage != nil {
		post.FeaturedImage = strings.TrimSpace(*req.FeaturedImage)
	}
	if req.Status != nil {
		status, ok := models.ParsePostStatus(*req.Status)
		if !ok {
			return nil, newValidationError("Invalid status")
		}
		post.Status = status
	}
	if req.Featured != nil {
		post.Featured = *req.Featured
	}
	if req.CategoryID.Set {
		if err := s.ensureCategory(req.CategoryID.Value); err != nil {
			return nil, err
		}
		post.CategoryID = req.CategoryID.Value
		post.Category = nil
	}

	assignTrimmed(&post.Version, req.Version)
	assignTrimmed(&post.FileSize, req.FileSize)
	assignTrimmed(&post.Requirements, req.Requirements)
	assignTrimmed(&post.Developer, req.Developer)
	assignTrimmed(&post.DownloadURL, req.DownloadURL)
	assignTrimmed(&post.MetaTitle, req.MetaTitle)
	assignTrimmed(&post.MetaDescription, req.MetaDescription)
	assignTrimmed(&post.MetaKeywords, req.MetaKeywords)

	// publishedAt is stamped on the first publication and never cleared.
	if post.Status == models.PostStatusPublished && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}

	var tags []models.Tag
	if req.TagIDs != nil {
		if tags, err = s.loadTags(*req.TagIDs); err != nil {
			return nil, err
		}
		if tags == nil {
			tags = []models.Tag{}
		}
	}

	if err := s.postRepo.Update(post, tags); err != nil {
		if isDuplicateKeyError(err) {
			return nil, newConflictError("Post with this slug already exists")
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.invalidateListings()
	return s.reload(post.ID)
}

func (s *PostService) Delete(actor Actor, id uint) error {
	if _, err := s.loadManageable(actor, id, "delete"); err != nil {
		return err
	}
	if err := s.postRepo.Delete(id); err != nil {
		return notFoundOr(err, "Post not found", "delete post")
	}
	s.invalidateListings()
	return nil
}

func (s *PostService) GetRecent(rawLimit string) ([]models.Post, error) {
	posts, err := s.postRepo.GetRecent(clampLimit(rawLimit, defaultRecentLimit, s.maxLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to load recent posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) GetFeatured(rawLimit string) ([]models.Post, error) {
	posts, err := s.postRepo.GetFeatured(clampLimit(rawLimit, defaultFeaturedLimit, s.maxLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to load featured posts: %w", err)
	}
	return posts, nil
}

// GetRelated returns published posts sharing the category of the given post.
func (s *PostService) GetRelated(rawPostID, rawLimit string) ([]models.Post, error) {
	if strings.TrimSpace(rawPostID) == "" {
		return nil, newValidationError("postId is required")
	}
	postID, err := ParseID(rawPostID, "postId")
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, notFoundOr(err, "Post not found", "load post")
	}
	if post.CategoryID == nil {
		return []models.Post{}, nil
	}

	posts, err := s.postRepo.GetRelated(post.ID, *post.CategoryID, clampLimit(rawLimit, defaultRelatedLimit, s.maxLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to load related posts: %w", err)
	}
	return posts, nil
}

// Suggest returns title matches for search-as-you-type. Short queries yield nothing.
func (s *PostService) Suggest(query string) ([]models.PostSuggestion, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSuggestionQuery {
		return []models.PostSuggestion{}, nil
	}
	suggestions, err := s.postRepo.Suggest(query, maxSuggestions)
	if err != nil {
		return nil, fmt.Errorf("failed to load suggestions: %w", err)
	}
	return suggestions, nil
}

func (s *PostService) reload(id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Post not found", "reload post")
	}
	return post, nil
}

// resolveSlug normalises an explicit slug or derives one from the title, then
// checks it is free.
func (s *PostService) resolveSlug(raw, title string, excludeID uint) (string, error) {
	slug := strings.TrimSpace(raw)
	if slug == "" {
		slug = utils.GenerateSlug(title)
	} else if !validator.IsSlug(slug) {
		slug = utils.GenerateSlug(slug)
	}
	if slug == "" {
		return "", newValidationError("Slug cannot be empty")
	}

	exists, err := s.postRepo.ExistsBySlug(slug, excludeID)
	if err != nil {
		return "", fmt.Errorf("failed to check slug: %w", err)
	}
	if exists {
		return "", newConflictError("Post with this slug already exists")
	}
	return slug, nil
}

func (s *PostService) ensureCategory(id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.categoryRepo.GetByID(*id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newValidationError("Category does not exist")
		}
		return fmt.Errorf("failed to load category: %w", err)
	}
	return nil
}

func (s *PostService) loadTags(ids []uint) ([]models.Tag, error) {
	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return nil, nil
	}
	tags, err := s.tagRepo.GetByIDs(unique)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	if len(tags) != len(unique) {
		return nil, newValidationError("One or more tags do not exist")
	}
	return tags, nil
}

// invalidateListings drops cached category listings, whose post counts move with post writes.
func (s *PostService) invalidateListings() {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.InvalidateCategories(); err != nil {
		logger.Warn("Failed to invalidate category cache", map[string]interface{}{"error": err.Error()})
	}
}

func renderContent(content, format string) (string, error) {
	if strings.EqualFold(strings.TrimSpace(format), contentFormatMarkdown) {
		rendered, err := utils.RenderMarkdown(content)
		if err != nil {
			return "", newValidationError("Invalid markdown content")
		}
		content = rendered
	}
	return validator.SanitizeHTML(content), nil
}

func assignTrimmed(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
