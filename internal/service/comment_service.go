package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/metrics"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/repository"
	"blogmodapk-backend/pkg/validator"
)

const (
	defaultCommentPageSize = 20
	defaultCommentMaxLen   = 5000
)

// CommentQuery carries the raw moderation listing parameters.
type CommentQuery struct {
	Page   string
	Limit  string
	Status string
	PostID string
	Search string
}

type CommentListResponse struct {
	Comments   []models.Comment  `json:"comments"`
	Pagination models.Pagination `json:"pagination"`
}

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	guard       *CommentGuard
	maxLength   int
	maxLimit    int
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, guard *CommentGuard, maxLength, maxLimit int) *CommentService {
	if maxLength <= 0 {
		maxLength = defaultCommentMaxLen
	}
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		guard:       guard,
		maxLength:   maxLength,
		maxLimit:    maxLimit,
	}
}

// Create stores a PENDING comment on a published post. A reply must target a
// top-level comment of the same post.
func (s *CommentService) Create(actor Actor, postSlug string, req models.CreateCommentRequest) (*models.Comment, error) {
	if actor.ID == 0 {
		return nil, newUnauthorizedError("Unauthorized")
	}

	post, err := s.publishedPost(postSlug)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(validator.SanitizeText(req.Content))
	if content == "" {
		metrics.CommentSubmitted("rejected")
		return nil, newValidationError("Comment content is required")
	}
	if utf8.RuneCountInString(content) > s.maxLength {
		metrics.CommentSubmitted("rejected")
		return nil, newValidationError("Comment must be at most %d characters", s.maxLength)
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(*req.ParentID)
		if err != nil {
			return nil, notFoundOr(err, "Parent comment not found", "load parent comment")
		}
		if parent.PostID != post.ID {
			metrics.CommentSubmitted("rejected")
			return nil, newValidationError("Parent comment belongs to another post")
		}
		if parent.IsReply() {
			metrics.CommentSubmitted("rejected")
			return nil, newValidationError("Replies cannot be nested more than one level")
		}
	}

	if ok, wait := s.guard.Allow(actor.ID); !ok {
		metrics.CommentSubmitted("throttled")
		seconds := int(math.Ceil(wait.Seconds()))
		return nil, newKindError(ErrRateLimited, "too many comments",
			"Too many comments, please wait %d seconds before commenting again", seconds)
	}

	comment := &models.Comment{
		Content:  content,
		Status:   models.CommentStatusPending,
		PostID:   post.ID,
		AuthorID: actor.ID,
		ParentID: req.ParentID,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	metrics.CommentSubmitted("accepted")

	created, err := s.commentRepo.GetByID(comment.ID)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found", "reload comment")
	}
	return created, nil
}

// Thread returns the approved discussion of a published post.
func (s *CommentService) Thread(postSlug string) ([]models.Comment, error) {
	post, err := s.publishedPost(postSlug)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.GetApprovedThread(post.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	return comments, nil
}

func (s *CommentService) List(actor Actor, q CommentQuery) (*CommentListResponse, error) {
	if err := actor.require(authorization.PermissionModerateComments); err != nil {
		return nil, err
	}

	filter := repository.CommentFilter{
		Search: strings.TrimSpace(q.Search),
		Page:   parsePage(q.Page),
		Limit:  clampLimit(q.Limit, defaultCommentPageSize, s.maxLimit),
	}
	if raw := strings.TrimSpace(q.Status); raw != "" && !strings.EqualFold(raw, "all") {
		status, ok := models.ParseCommentStatus(raw)
		if !ok {
			return nil, newValidationError("Invalid status")
		}
		filter.Status = &status
	}
	postID, err := parseOptionalID(q.PostID, "postId")
	if err != nil {
		return nil, err
	}
	filter.PostID = postID

	comments, total, err := s.commentRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return &CommentListResponse{
		Comments:   comments,
		Pagination: models.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (s *CommentService) UpdateStatus(actor Actor, id uint, rawStatus string) (*models.Comment, error) {
	if err := actor.require(authorization.PermissionModerateComments); err != nil {
		return nil, err
	}
	status, ok := models.ParseCommentStatus(rawStatus)
	if !ok {
		return nil, newValidationError("Invalid status")
	}
	if err := s.commentRepo.UpdateStatus(id, status); err != nil {
		return nil, notFoundOr(err, "Comment not found", "update comment")
	}
	comment, err := s.commentRepo.GetByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found", "reload comment")
	}
	return comment, nil
}

func (s *CommentService) Delete(actor Actor, id uint) error {
	if err := actor.require(authorization.PermissionModerateComments); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(id); err != nil {
		return notFoundOr(err, "Comment not found", "delete comment")
	}
	return nil
}

func (s *CommentService) publishedPost(slug string) (*models.Post, error) {
	post, err := s.postRepo.GetPublishedRef(strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError("Post not found")
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	return post, nil
}
