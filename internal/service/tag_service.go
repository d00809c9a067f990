package service

import (
	"fmt"
	"strings"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/repository"
)

type TagService struct {
	tagRepo repository.TagRepository
}

func NewTagService(tagRepo repository.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

func (s *TagService) GetAll() ([]models.Tag, error) {
	tags, err := s.tagRepo.GetAllWithPostCount()
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) Create(actor Actor, req models.TagRequest) (*models.Tag, error) {
	if err := actor.require(authorization.PermissionManageTaxonomy); err != nil {
		return nil, err
	}

	tag := &models.Tag{}
	if err := s.apply(tag, req); err != nil {
		return nil, err
	}
	if err := s.tagRepo.Create(tag); err != nil {
		if isDuplicateKeyError(err) {
			return nil, newConflictError("Tag with this name or slug already exists")
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

func (s *TagService) Update(actor Actor, id uint, req models.TagRequest) (*models.Tag, error) {
	if err := actor.require(authorization.PermissionManageTaxonomy); err != nil {
		return nil, err
	}

	tag, err := s.tagRepo.GetByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Tag not found", "load tag")
	}
	if err := s.apply(tag, req); err != nil {
		return nil, err
	}
	if err := s.tagRepo.Update(tag); err != nil {
		if isDuplicateKeyError(err) {
			return nil, newConflictError("Tag with this name or slug already exists")
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}
	return tag, nil
}

// Delete unlinks the tag from its posts; the posts themselves stay.
func (s *TagService) Delete(actor Actor, id uint) error {
	if err := actor.require(authorization.PermissionManageTaxonomy); err != nil {
		return err
	}
	if err := s.tagRepo.Delete(id); err != nil {
		return notFoundOr(err, "Tag not found", "delete tag")
	}
	return nil
}

func (s *TagService) apply(tag *models.Tag, req models.TagRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return newValidationError("Tag name is required")
	}
	slug, err := taxonomySlug(req.Slug, name)
	if err != nil {
		return err
	}

	exists, err := s.tagRepo.ExistsByName(name, tag.ID)
	if err != nil {
		return fmt.Errorf("failed to check tag name: %w", err)
	}
	if exists {
		return newConflictError("Tag with this name already exists")
	}
	exists, err = s.tagRepo.ExistsBySlug(slug, tag.ID)
	if err != nil {
		return fmt.Errorf("failed to check tag slug: %w", err)
	}
	if exists {
		return newConflictError("Tag with this slug already exists")
	}

	tag.Name = name
	tag.Slug = slug
	return nil
}
