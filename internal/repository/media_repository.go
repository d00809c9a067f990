package repository

import (
	"strings"

	"gorm.io/gorm"

	"blogmodapk-backend/internal/models"
)

type MediaFilter struct {
	MimePrefix string
	Search     string
	Page       int
	Limit      int
}

type MediaRepository interface {
	Create(media *models.Media) error
	GetByID(id uint) (*models.Media, error)
	List(filter MediaFilter) ([]models.Media, int64, error)
	Delete(id uint) error
	Count() (int64, error)
}

type mediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(media *models.Media) error {
	return r.db.Create(media).Error
}

func (r *mediaRepository) GetByID(id uint) (*models.Media, error) {
	var media models.Media
	err := r.db.First(&media, id).Error
	return &media, err
}

func (r *mediaRepository) List(filter MediaFilter) ([]models.Media, int64, error) {
	build := func() *gorm.DB {
		query := r.db.Model(&models.Media{})
		if prefix := strings.TrimSpace(filter.MimePrefix); prefix != "" {
			query = query.Where("LOWER(mime_type) LIKE ? ESCAPE '\\'", prefixPattern(prefix))
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			pattern := likePattern(search)
			query = query.Where("(LOWER(file_name) LIKE ? ESCAPE '\\' OR LOWER(alt) LIKE ? ESCAPE '\\')", pattern, pattern)
		}
		return query
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	media := make([]models.Media, 0, filter.Limit)
	offset, ok := pageOffset(filter.Page, filter.Limit, total)
	if !ok {
		return media, total, nil
	}
	err := build().Order("created_at DESC").Order("id DESC").Offset(offset).Limit(filter.Limit).Find(&media).Error
	return media, total, err
}

func (r *mediaRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Media{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *mediaRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Media{}).Count(&count).Error
	return count, err
}
