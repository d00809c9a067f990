package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"blogmodapk-backend/internal/models"
)

type SettingRepository interface {
	Get(key string) (*models.Setting, error)
	GetAll() ([]models.Setting, error)
	SetMany(values map[string]string) error
	Delete(key string) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(key string) (*models.Setting, error) {
	var setting models.Setting
	err := r.db.First(&setting, "key = ?", key).Error
	return &setting, err
}

func (r *settingRepository) GetAll() ([]models.Setting, error) {
	settings := make([]models.Setting, 0)
	err := r.db.Order("key ASC").Find(&settings).Error
	return settings, err
}

// SetMany upserts every key in one transaction.
func (r *settingRepository) SetMany(values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			setting := &models.Setting{Key: key, Value: value}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(setting).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *settingRepository) Delete(key string) error {
	return r.db.Delete(&models.Setting{}, "key = ?", key).Error
}
