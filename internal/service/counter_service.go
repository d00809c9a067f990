package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"blogmodapk-backend/internal/metrics"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/repository"
	"blogmodapk-backend/pkg/logger"
)

const unknownClient = "unknown"

// DownloadSource attributes a download to a caller. UserID is nil for anonymous downloads.
type DownloadSource struct {
	UserID    *uint
	IPAddress string
	UserAgent string
}

// CounterService records views and downloads with atomic increments.
type CounterService struct {
	postRepo     repository.PostRepository
	downloadRepo repository.DownloadRepository
}

func NewCounterService(postRepo repository.PostRepository, downloadRepo repository.DownloadRepository) *CounterService {
	return &CounterService{postRepo: postRepo, downloadRepo: downloadRepo}
}

func (s *CounterService) RecordView(slug string) (int64, error) {
	post, err := s.publishedPost(slug)
	if err != nil {
		return 0, err
	}

	count, err := s.postRepo.IncrementViews(post.ID)
	if err != nil {
		return 0, notFoundOr(err, "Post not found", "increment views")
	}
	metrics.PostViewed()
	return count, nil
}

// RecordDownload writes the audit row and bumps the counter. The audit row is
// best effort; only a counter failure fails the call.
func (s *CounterService) RecordDownload(slug string, source DownloadSource) (int64, error) {
	post, err := s.publishedPost(slug)
	if err != nil {
		return 0, err
	}

	download := &models.Download{
		PostID:    post.ID,
		UserID:    source.UserID,
		IPAddress: orUnknown(source.IPAddress),
		UserAgent: orUnknown(source.UserAgent),
	}
	if err := s.downloadRepo.Create(download); err != nil {
		metrics.DownloadAuditFailed()
		logger.Error(err, "Failed to record download audit row", map[string]interface{}{
			"post_id": post.ID,
			"slug":    post.Slug,
		})
	}

	count, err := s.postRepo.IncrementDownloads(post.ID)
	if err != nil {
		return 0, notFoundOr(err, "Post not found", "increment downloads")
	}
	metrics.PostDownloaded()
	return count, nil
}

func (s *CounterService) publishedPost(slug string) (*models.Post, error) {
	post, err := s.postRepo.GetPublishedRef(strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError("Post not found")
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	return post, nil
}

func orUnknown(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return unknownClient
	}
	return value
}
