package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"blogmodapk-backend/internal/models"
)

type PostRepository interface {
	Create(post *models.Post) error
	// Update saves scalar fields. A non-nil tags slice replaces the post's tags.
	Update(post *models.Post, tags []models.Tag) error
	Delete(id uint) error
	GetByID(id uint) (*models.Post, error)
	GetBySlug(slug string) (*models.Post, error)
	GetPublishedRef(slug string) (*models.Post, error)
	ExistsBySlug(slug string, excludeID uint) (bool, error)
	List(filter PostFilter) ([]models.Post, int64, error)
	GetRecent(limit int) ([]models.Post, error)
	GetFeatured(limit int) ([]models.Post, error)
	GetRelated(postID, categoryID uint, limit int) ([]models.Post, error)
	Suggest(query string, limit int) ([]models.PostSuggestion, error)
	IncrementViews(id uint) (int64, error)
	IncrementDownloads(id uint) (int64, error)
	CountByStatus(status *models.PostStatus) (int64, error)
	SumCounters() (views int64, downloads int64, err error)
	TopDownloaded(limit int) ([]models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func withPostRelations(query *gorm.DB) *gorm.DB {
	return query.Preload("Author").Preload("Category").Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tags.name ASC")
	})
}

func publishedPosts(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Post{}).Where("posts.status = ?", models.PostStatusPublished)
}

func (r *postRepository) Create(post *models.Post) error {
	return r.db.Omit("Category", "Author").Create(post).Error
}

func (r *postRepository) Update(post *models.Post, tags []models.Tag) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(post).Error; err != nil {
			return err
		}
		if tags == nil {
			return nil
		}
		if len(tags) == 0 {
			if err := tx.Model(post).Association("Tags").Clear(); err != nil {
				return err
			}
			post.Tags = []models.Tag{}
			return nil
		}
		if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
			return err
		}
		post.Tags = tags
		return nil
	})
}

// Delete removes the post with its comments and tag links. Download audit rows are kept.
func (r *postRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ? AND parent_id IS NOT NULL", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *postRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	err := withPostRelations(r.db).First(&post, id).Error
	return &post, err
}

func (r *postRepository) GetBySlug(slug string) (*models.Post, error) {
	var post models.Post
	err := withPostRelations(r.db).Where("slug = ?", slug).First(&post).Error
	return &post, err
}

// GetPublishedRef loads only the columns needed to attach comments, views or downloads.
func (r *postRepository) GetPublishedRef(slug string) (*models.Post, error) {
	var post models.Post
	err := publishedPosts(r.db).
		Select("id", "slug", "status", "category_id", "author_id").
		Where("posts.slug = ?", slug).
		Take(&post).Error
	return &post, err
}

func (r *postRepository) ExistsBySlug(slug string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&models.Post{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *postRepository) List(filter PostFilter) ([]models.Post, int64, error) {
	var total int64
	if err := applyPostFilter(r.db.Model(&models.Post{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	posts := make([]models.Post, 0, filter.Limit)
	offset, ok := pageOffset(filter.Page, filter.Limit, total)
	if !ok {
		return posts, total, nil
	}

	query := applyPostFilter(withPostRelations(r.db.Model(&models.Post{})), filter)
	err := applyPostOrder(query, filter.Sort).
		Offset(offset).
		Limit(filter.Limit).
		Find(&posts).Error

	return posts, total, err
}

func (r *postRepository) GetRecent(limit int) ([]models.Post, error) {
	posts := make([]models.Post, 0, limit)
	err := withPostRelations(publishedPosts(r.db)).
		Order("posts.published_at DESC").Order("posts.id DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) GetFeatured(limit int) ([]models.Post, error) {
	posts := make([]models.Post, 0, limit)
	err := withPostRelations(publishedPosts(r.db)).
		Where("posts.featured = ?", true).
		Order("posts.published_at DESC").Order("posts.id DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) GetRelated(postID, categoryID uint, limit int) ([]models.Post, error) {
	posts := make([]models.Post, 0, limit)
	err := withPostRelations(publishedPosts(r.db)).
		Where("posts.id <> ? AND posts.category_id = ?", postID, categoryID).
		Order("posts.published_at DESC").Order("posts.id DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Suggest(query string, limit int) ([]models.PostSuggestion, error) {
	suggestions := make([]models.PostSuggestion, 0, limit)
	err := publishedPosts(r.db).
		Select("posts.id, posts.title, posts.slug, posts.featured_image").
		Where("LOWER(posts.title) LIKE ? ESCAPE '\\'", likePattern(query)).
		Order("posts.view_count DESC").Order("posts.id DESC").
		Limit(limit).
		Scan(&suggestions).Error
	return suggestions, err
}

func (r *postRepository) IncrementViews(id uint) (int64, error) {
	return r.increment(id, "view_count")
}

func (r *postRepository) IncrementDownloads(id uint) (int64, error) {
	return r.increment(id, "download_count")
}

// increment performs a single atomic UPDATE and then reads the new value back.
// The read may already include concurrent increments, which is fine for display.
func (r *postRepository) increment(id uint, column string) (int64, error) {
	result := r.db.Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var value int64
	err := r.db.Model(&models.Post{}).
		Select(column).
		Where("id = ?", id).
		Scan(&value).Error
	return value, err
}

func (r *postRepository) CountByStatus(status *models.PostStatus) (int64, error) {
	var count int64
	query := r.db.Model(&models.Post{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *postRepository) SumCounters() (int64, int64, error) {
	var totals struct {
		Views     int64
		Downloads int64
	}
	err := r.db.Model(&models.Post{}).
		Select("COALESCE(SUM(view_count), 0) AS views, COALESCE(SUM(download_count), 0) AS downloads").
		Scan(&totals).Error
	return totals.Views, totals.Downloads, err
}

func (r *postRepository) TopDownloaded(limit int) ([]models.Post, error) {
	posts := make([]models.Post, 0, limit)
	err := r.db.Model(&models.Post{}).
		Select("id", "title", "slug", "status", "download_count", "view_count", "featured_image", "created_at", "updated_at").
		Order("download_count DESC").Order("id ASC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}
