package service

import (
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/repository"
	"blogmodapk-backend/pkg/cache"
	"blogmodapk-backend/pkg/logger"
	"blogmodapk-backend/pkg/utils"
	"blogmodapk-backend/pkg/validator"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
	cache        *cache.Cache
	loads        singleflight.Group
}

func NewCategoryService(categoryRepo repository.CategoryRepository, cacheService *cache.Cache) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		cache:        cacheService,
	}
}

// GetAll lists categories by display order with their published post counts.
func (s *CategoryService) GetAll() ([]models.Category, error) {
	if s.cache.Enabled() {
		var cached []models.Category
		if err := s.cache.GetCachedCategories(&cached); err == nil {
			return cached, nil
		}
	}

	result, err, _ := s.loads.Do("categories:public", func() (interface{}, error) {
		categories, err := s.categoryRepo.GetWithPostCount(true)
		if err != nil {
			return nil, err
		}
		if err := s.cache.CacheCategories(categories); err != nil {
			logger.Warn("Failed to cache categories", map[string]interface{}{"error": err.Error()})
		}
		return categories, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return result.([]models.Category), nil
}

// GetAllForAdmin counts posts of every status.
func (s *CategoryService) GetAllForAdmin(actor Actor) ([]models.Category, error) {
	if err := actor.require(authorization.PermissionAccessAdmin); err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.GetWithPostCount(false)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) GetBySlug(slug string) (*models.Category, error) {
	slug = strings.TrimSpace(slug)
	if s.cache.Enabled() {
		var cached models.Category
		if err := s.cache.GetCachedCategory(slug, &cached); err == nil {
			return &cached, nil
		}
	}

	category, err := s.categoryRepo.GetBySlug(slug)
	if err != nil {
		return nil, notFoundOr(err, "Category not found", "load category")
	}
	if err := s.cache.CacheCategory(slug, category); err != nil {
		logger.Warn("Failed to cache category", map[string]interface{}{"slug": slug, "error": err.Error()})
	}
	return category, nil
}

func (s *CategoryService) Create(actor Actor, req models.CreateCategoryRequest) (*models.Category, error) {
	if err := actor.require(authorization.PermissionManageTaxonomy); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newValidationError("Category name is required")
	}
	slug, err := taxonomySlug(req.Slug, name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(name, slug, 0); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        name,
		Slug:        slug,
		Description: validator.SanitizeText(req.Description),
		Icon:        strings.TrimSpace(req.Icon),
		Color:       strings.TrimSpace(req.Color),
		Order:       req.Order,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		if isDuplicateKeyError(err) {
			return nil, newConflictError("Category with this name or slug already exists")
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidate()
	return category, nil
}

func (s *CategoryService) Update(actor Actor, id uint, req models.UpdateCategoryRequest) (*models.Category, error) {
	if err := actor.require(authorization.PermissionManageTaxonomy); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Category not found", "load category")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, newValidationError("Category name is required")
		}
		category.Name = name
	}
	if req.Slug != nil {
		slug, err := taxonomySlug(*req.Slug, category.Name)
		if err != nil {
			return nil, err
		}
		category.Slug = slug
	}
	if err := s.ensureUnique(category.Name, category.Slug, category.ID); err != nil {
		return nil, err
	}

	if req.Description != nil {
		category.Description = validator.SanitizeText(*req.Description)
	}
	if req.Icon != nil {
		category.Icon = strings.TrimSpace(*req.Icon)
	}
	if req.Color != nil {
		category.Color = strings.TrimSpace(*req.Color)
	}
	if req.Order != nil {
		category.Order = *req.Order
	}

	if err := s.categoryRepo.Update(category); err != nil {
		if isDuplicateKeyError(err) {
			return nil, newConflictError("Category with this name or slug already exists")
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidate()
	return category, nil
}

// Delete refuses to remove a category that still owns posts.
func (s *CategoryService) Delete(actor Actor, id uint) error {
	if err := actor.require(authorization.PermissionManageTaxonomy); err != nil {
		return err
	}

	if _, err := s.categoryRepo.GetByID(id); err != nil {
		return notFoundOr(err, "Category not found", "load category")
	}

	count, err := s.categoryRepo.CountPosts(id)
	if err != nil {
		return fmt.Errorf("failed to count category posts: %w", err)
	}
	if count > 0 {
		return newConflictError("Cannot delete category with posts")
	}

	if err := s.categoryRepo.Delete(id); err != nil {
		return notFoundOr(err, "Category not found", "delete category")
	}

	s.invalidate()
	return nil
}

func (s *CategoryService) ensureUnique(name, slug string, excludeID uint) error {
	exists, err := s.categoryRepo.ExistsByName(name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if exists {
		return newConflictError("Category with this name already exists")
	}
	exists, err = s.categoryRepo.ExistsBySlug(slug, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check category slug: %w", err)
	}
	if exists {
		return newConflictError("Category with this slug already exists")
	}
	return nil
}

func (s *CategoryService) invalidate() {
	if err := s.cache.InvalidateCategories(); err != nil {
		logger.Warn("Failed to invalidate category cache", map[string]interface{}{"error": err.Error()})
	}
}

// taxonomySlug normalises an explicit slug or derives one from the name.
func taxonomySlug(raw, name string) (string, error) {
	slug := strings.TrimSpace(raw)
	if slug == "" || !validator.IsSlug(slug) {
		if slug == "" {
			slug = name
		}
		slug = utils.GenerateSlug(slug)
	}
	if slug == "" {
		return "", newValidationError("Slug cannot be empty")
	}
	return slug, nil
}
