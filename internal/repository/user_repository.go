package repository

import (
	"strings"

	"gorm.io/gorm"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/models"
)

type UserFilter struct {
	Role   *authorization.UserRole
	Search string
	Page   int
	Limit  int
}

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	List(filter UserFilter) ([]models.User, int64, error)
	Update(user *models.User) error
	Delete(id uint) error
	Count() (int64, error)
	CountPosts(id uint) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	return &user, err
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	return &user, err
}

func (r *userRepository) List(filter UserFilter) ([]models.User, int64, error) {
	build := func() *gorm.DB {
		query := r.db.Model(&models.User{})
		if filter.Role != nil {
			query = query.Where("role = ?", *filter.Role)
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			pattern := likePattern(search)
			query = query.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\')", pattern, pattern)
		}
		return query
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	users := make([]models.User, 0, filter.Limit)
	offset, ok := pageOffset(filter.Page, filter.Limit, total)
	if !ok {
		return users, total, nil
	}
	err := build().Order("created_at DESC").Order("id DESC").Offset(offset).Limit(filter.Limit).Find(&users).Error
	return users, total, err
}

func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete removes the user together with their comments and the replies left
// under them. Nothing is removed unless the user row is.
func (r *userRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteCommentsByAuthor(tx, id); err != nil {
			return err
		}
		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func deleteCommentsByAuthor(tx *gorm.DB, authorID uint) error {
	var ids []uint
	if err := tx.Model(&models.Comment{}).Where("author_id = ?", authorID).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("parent_id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
}

func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *userRepository) CountPosts(id uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Where("author_id = ?", id).Count(&count).Error
	return count, err
}
