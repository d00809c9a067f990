package repository

import (
	"gorm.io/gorm"

	"blogmodapk-backend/internal/models"
)

type TagRepository interface {
	Create(tag *models.Tag) error
	GetByID(id uint) (*models.Tag, error)
	GetByIDs(ids []uint) ([]models.Tag, error)
	Update(tag *models.Tag) error
	Delete(id uint) error
	GetAllWithPostCount() ([]models.Tag, error)
	ExistsBySlug(slug string, excludeID uint) (bool, error)
	ExistsByName(name string, excludeID uint) (bool, error)
	Count() (int64, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(tag *models.Tag) error {
	return r.db.Create(tag).Error
}

func (r *tagRepository) GetByID(id uint) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.First(&tag, id).Error
	return &tag, err
}

func (r *tagRepository) GetByIDs(ids []uint) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(ids))
	if len(ids) == 0 {
		return tags, nil
	}
	err := r.db.Where("id IN ?", ids).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *tagRepository) Update(tag *models.Tag) error {
	return r.db.Save(tag).Error
}

// Delete unlinks the tag from every post before removing it.
func (r *tagRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Tag{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *tagRepository) GetAllWithPostCount() ([]models.Tag, error) {
	tags := make([]models.Tag, 0)
	err := r.db.Model(&models.Tag{}).
		Select("tags.*, COUNT(post_tags.post_id) AS post_count").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.id").
		Order("tags.name ASC").
		Find(&tags).Error
	return tags, err
}

func (r *tagRepository) ExistsBySlug(slug string, excludeID uint) (bool, error) {
	return existsBy(r.db, &models.Tag{}, "slug", slug, excludeID)
}

func (r *tagRepository) ExistsByName(name string, excludeID uint) (bool, error) {
	return existsBy(r.db, &models.Tag{}, "name", name, excludeID)
}

func (r *tagRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Tag{}).Count(&count).Error
	return count, err
}
