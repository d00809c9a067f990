package service

import (
	"fmt"
	"strings"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/repository"
)

const defaultMediaPageSize = 24

// MediaQuery carries the raw media library listing parameters.
type MediaQuery struct {
	Page   string
	Limit  string
	Type   string
	Search string
}

type MediaListResponse struct {
	Media      []models.Media    `json:"media"`
	Pagination models.Pagination `json:"pagination"`
}

// MediaService manages the catalog of externally hosted assets.
type MediaService struct {
	mediaRepo repository.MediaRepository
	maxLimit  int
}

func NewMediaService(mediaRepo repository.MediaRepository, maxLimit int) *MediaService {
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &MediaService{mediaRepo: mediaRepo, maxLimit: maxLimit}
}

func (s *MediaService) List(actor Actor, q MediaQuery) (*MediaListResponse, error) {
	if err := actor.require(authorization.PermissionManageMedia); err != nil {
		return nil, err
	}

	filter := repository.MediaFilter{
		MimePrefix: strings.TrimSpace(q.Type),
		Search:     strings.TrimSpace(q.Search),
		Page:       parsePage(q.Page),
		Limit:      clampLimit(q.Limit, defaultMediaPageSize, s.maxLimit),
	}
	media, total, err := s.mediaRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return &MediaListResponse{
		Media:      media,
		Pagination: models.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (s *MediaService) Create(actor Actor, req models.CreateMediaRequest) (*models.Media, error) {
	if err := actor.require(authorization.PermissionManageMedia); err != nil {
		return nil, err
	}

	url := strings.TrimSpace(req.URL)
	fileName := strings.TrimSpace(req.FileName)
	mimeType := strings.ToLower(strings.TrimSpace(req.MimeType))
	if url == "" || fileName == "" || mimeType == "" {
		return nil, newValidationError("url, fileName and mimeType are required")
	}
	if req.FileSize < 0 {
		return nil, newValidationError("fileSize cannot be negative")
	}

	uploader := actor.ID
	media := &models.Media{
		URL:          url,
		FileName:     fileName,
		FileSize:     req.FileSize,
		MimeType:     mimeType,
		Alt:          strings.TrimSpace(req.Alt),
		UploadedByID: &uploader,
	}
	if err := s.mediaRepo.Create(media); err != nil {
		return nil, fmt.Errorf("failed to create media: %w", err)
	}
	return media, nil
}

func (s *MediaService) Delete(actor Actor, id uint) error {
	if err := actor.require(authorization.PermissionDeleteMedia); err != nil {
		return err
	}
	if err := s.mediaRepo.Delete(id); err != nil {
		return notFoundOr(err, "Media not found", "delete media")
	}
	return nil
}
