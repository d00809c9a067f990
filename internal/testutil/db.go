// Package testutil provides in-memory databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/pkg/utils"
)

// NewDB opens a migrated in-memory SQLite database that lives as long as the test.
// A single connection keeps every query on the same in-memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with a cheap bcrypt hash of "password123".
func CreateUser(t testing.TB, db *gorm.DB, name string, role authorization.UserRole) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: string(hash),
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func CreateCategory(t testing.TB, db *gorm.DB, name string, order int) *models.Category {
	t.Helper()

	category := &models.Category{Name: name, Slug: utils.GenerateSlug(name), Order: order}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return category
}

// PostOption mutates a fixture post before it is inserted.
type PostOption func(*models.Post)

func WithStatus(status models.PostStatus) PostOption {
	return func(p *models.Post) { p.Status = status }
}

func WithCategory(category *models.Category) PostOption {
	return func(p *models.Post) { p.CategoryID = &category.ID }
}

func WithCounts(views, downloads int64) PostOption {
	return func(p *models.Post) {
		p.ViewCount = views
		p.DownloadCount = downloads
	}
}

func WithText(excerpt, content string) PostOption {
	return func(p *models.Post) {
		p.Excerpt = excerpt
		p.Content = content
	}
}

func WithCreatedAt(at time.Time) PostOption {
	return func(p *models.Post) { p.CreatedAt = at }
}

func WithFeatured() PostOption {
	return func(p *models.Post) { p.Featured = true }
}

func WithTags(tags ...models.Tag) PostOption {
	return func(p *models.Post) { p.Tags = tags }
}

// CreatePost inserts a PUBLISHED post unless an option says otherwise.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, title string, opts ...PostOption) *models.Post {
	t.Helper()

	now := time.Now()
	post := &models.Post{
		Title:       title,
		Slug:        utils.GenerateSlug(title),
		Content:     "<p>" + title + "</p>",
		Status:      models.PostStatusPublished,
		AuthorID:    author.ID,
		PublishedAt: &now,
	}
	for _, opt := range opts {
		opt(post)
	}
	if post.Status != models.PostStatusPublished {
		post.PublishedAt = nil
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}
	return post
}

func CreateComment(t testing.TB, db *gorm.DB, post *models.Post, author *models.User, content string, status models.CommentStatus, parent *models.Comment) *models.Comment {
	t.Helper()

	comment := &models.Comment{
		Content:  content,
		Status:   status,
		PostID:   post.ID,
		AuthorID: author.ID,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("failed to create comment: %v", err)
	}
	return comment
}
