package repository

import (
	"strings"

	"gorm.io/gorm"

	"blogmodapk-backend/internal/models"
)

type CommentFilter struct {
	Status *models.CommentStatus
	PostID *uint
	Search string
	Page   int
	Limit  int
}

type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id uint) (*models.Comment, error)
	// GetApprovedThread returns approved top-level comments, newest first, each
	// with its approved replies oldest first.
	GetApprovedThread(postID uint) ([]models.Comment, error)
	List(filter CommentFilter) ([]models.Comment, int64, error)
	UpdateStatus(id uint, status models.CommentStatus) error
	Delete(id uint) error
	CountByPost(postID uint, status models.CommentStatus) (int64, error)
	Count(status *models.CommentStatus) (int64, error)
	GetRecent(limit int) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func postSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "title", "slug", "status", "author_id", "created_at", "updated_at")
}

func (r *commentRepository) Create(comment *models.Comment) error {
	return r.db.Omit("Post", "Author", "Replies").Create(comment).Error
}

func (r *commentRepository) GetByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Preload("Author").First(&comment, id).Error
	return &comment, err
}

func (r *commentRepository) GetApprovedThread(postID uint) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := r.db.
		Where("post_id = ? AND parent_id IS NULL AND status = ?", postID, models.CommentStatusApproved).
		Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", models.CommentStatusApproved).
				Order("created_at ASC").Order("id ASC")
		}).
		Preload("Replies.Author").
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) List(filter CommentFilter) ([]models.Comment, int64, error) {
	build := func() *gorm.DB {
		query := r.db.Model(&models.Comment{})
		if filter.Status != nil {
			query = query.Where("comments.status = ?", *filter.Status)
		}
		if filter.PostID != nil {
			query = query.Where("comments.post_id = ?", *filter.PostID)
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			query = query.Where("LOWER(comments.content) LIKE ? ESCAPE '\\'", likePattern(search))
		}
		return query
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	comments := make([]models.Comment, 0, filter.Limit)
	offset, ok := pageOffset(filter.Page, filter.Limit, total)
	if !ok {
		return comments, total, nil
	}

	err := build().
		Preload("Author").
		Preload("Post", postSummary).
		Order("comments.created_at DESC").Order("comments.id DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&comments).Error
	return comments, total, err
}

func (r *commentRepository) UpdateStatus(id uint, status models.CommentStatus) error {
	result := r.db.Model(&models.Comment{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a comment together with its replies.
func (r *commentRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Comment{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *commentRepository) CountByPost(postID uint, status models.CommentStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).
		Where("post_id = ? AND status = ?", postID, status).
		Count(&count).Error
	return count, err
}

func (r *commentRepository) Count(status *models.CommentStatus) (int64, error) {
	var count int64
	query := r.db.Model(&models.Comment{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *commentRepository) GetRecent(limit int) ([]models.Comment, error) {
	comments := make([]models.Comment, 0, limit)
	err := r.db.
		Preload("Author").
		Preload("Post", postSummary).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

