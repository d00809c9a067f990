package repository

import (
	"time"

	"gorm.io/gorm"

	"blogmodapk-backend/internal/models"
)

type DailyCount struct {
	Day   string `json:"date"`
	Count int64  `json:"count"`
}

type DownloadRepository interface {
	Create(download *models.Download) error
	Count() (int64, error)
	CountSince(since time.Time) (int64, error)
	CountByPost(postID uint) (int64, error)
	DailyCountsSince(since time.Time) ([]DailyCount, error)
}

type downloadRepository struct {
	db *gorm.DB
}

func NewDownloadRepository(db *gorm.DB) DownloadRepository {
	return &downloadRepository{db: db}
}

func (r *downloadRepository) Create(download *models.Download) error {
	return r.db.Create(download).Error
}

func (r *downloadRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Download{}).Count(&count).Error
	return count, err
}

func (r *downloadRepository) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Download{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

func (r *downloadRepository) CountByPost(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Download{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// DailyCountsSince groups audit rows by calendar day, oldest first.
func (r *downloadRepository) DailyCountsSince(since time.Time) ([]DailyCount, error) {
	var rows []DailyCount
	err := r.db.Model(&models.Download{}).
		Select("CAST(DATE(created_at) AS TEXT) AS day, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("CAST(DATE(created_at) AS TEXT)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	if rows == nil {
		rows = []DailyCount{}
	}
	return rows, nil
}
