package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"blogmodapk-backend/internal/models"
)

type CategoryRepository interface {
	Create(category *models.Category) error
	GetByID(id uint) (*models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
	Update(category *models.Category) error
	Delete(id uint) error
	// GetWithPostCount lists categories by display order. With publishedOnly the
	// count only includes PUBLISHED posts.
	GetWithPostCount(publishedOnly bool) ([]models.Category, error)
	CountPosts(id uint) (int64, error)
	ExistsBySlug(slug string, excludeID uint) (bool, error)
	ExistsByName(name string, excludeID uint) (bool, error)
	Count() (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *categoryRepository) GetByID(id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.First(&category, id).Error
	return &category, err
}

func (r *categoryRepository) GetBySlug(slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.Where("slug = ?", slug).First(&category).Error
	return &category, err
}

func (r *categoryRepository) Update(category *models.Category) error {
	return r.db.Save(category).Error
}

func (r *categoryRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Category{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *categoryRepository) GetWithPostCount(publishedOnly bool) ([]models.Category, error) {
	query := r.db.Model(&models.Category{}).
		Select("categories.*, COUNT(posts.id) AS post_count")

	if publishedOnly {
		query = query.Joins("LEFT JOIN posts ON posts.category_id = categories.id AND posts.status = ?", models.PostStatusPublished)
	} else {
		query = query.Joins("LEFT JOIN posts ON posts.category_id = categories.id")
	}

	categories := make([]models.Category, 0)
	err := query.
		Group("categories.id").
		Order(clause.OrderByColumn{Column: clause.Column{Table: "categories", Name: "order"}}).
		Order("categories.name ASC").
		Find(&categories).Error

	return categories, err
}

func (r *categoryRepository) CountPosts(id uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}

func (r *categoryRepository) ExistsBySlug(slug string, excludeID uint) (bool, error) {
	return existsBy(r.db, &models.Category{}, "slug", slug, excludeID)
}

func (r *categoryRepository) ExistsByName(name string, excludeID uint) (bool, error) {
	return existsBy(r.db, &models.Category{}, "name", name, excludeID)
}

func (r *categoryRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Category{}).Count(&count).Error
	return count, err
}

// existsBy checks a unique column, ignoring the row being updated.
func existsBy(db *gorm.DB, model interface{}, column, value string, excludeID uint) (bool, error) {
	var count int64
	query := db.Model(model).Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}
