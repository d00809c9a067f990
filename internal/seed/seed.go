// Package seed populates a fresh database with accounts and sample content.
package seed

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/pkg/logger"
	"blogmodapk-backend/pkg/utils"
	"blogmodapk-backend/pkg/validator"
)

//go:embed data/catalog.json
var catalogFS embed.FS

// Options carries the super admin credentials, usually from config.
type Options struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

type catalog struct {
	Categories []models.Category `json:"categories"`
	Tags       []string          `json:"tags"`
	Posts      []catalogPost     `json:"posts"`
}

type catalogPost struct {
	Title        string           `json:"title"`
	Category     string           `json:"category"`
	Tags         []string         `json:"tags"`
	Status       string           `json:"status"`
	Featured     bool             `json:"featured"`
	Excerpt      string           `json:"excerpt"`
	Content      string           `json:"content"`
	Version      string           `json:"version"`
	FileSize     string           `json:"fileSize"`
	Requirements string           `json:"requirements"`
	Developer    string           `json:"developer"`
	DownloadURL  string           `json:"downloadUrl"`
	Views        int64            `json:"views"`
	Downloads    int64            `json:"downloads"`
	Comments     []catalogComment `json:"comments"`
}

type catalogComment struct {
	Author  string           `json:"author"`
	Content string           `json:"content"`
	Replies []catalogComment `json:"replies"`
}

// Run creates the super admin, staff and sample accounts and the sample
// catalogue. Existing rows, matched by email or slug, are left untouched so
// the command can be re-run safely.
func Run(db *gorm.DB, opts Options) error {
	raw, err := catalogFS.ReadFile("data/catalog.json")
	if err != nil {
		return fmt.Errorf("failed to read seed catalogue: %w", err)
	}
	var data catalog
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse seed catalogue: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		admin, _, err := EnsureAccount(tx, opts.AdminName, opts.AdminEmail, opts.AdminPassword, authorization.RoleSuperAdmin)
		if err != nil {
			return err
		}
		editor, _, err := EnsureAccount(tx, "Content Editor", "editor@blogmodapk.com", "Editor@123", authorization.RoleEditor)
		if err != nil {
			return err
		}
		user, _, err := EnsureAccount(tx, "Demo User", "user@blogmodapk.com", "User@123", authorization.RoleUser)
		if err != nil {
			return err
		}
		authors := map[string]*models.User{"admin": admin, "editor": editor, "user": user}

		categories := make(map[string]*models.Category, len(data.Categories))
		for i := range data.Categories {
			category := data.Categories[i]
			if err := tx.Where(models.Category{Slug: category.Slug}).FirstOrCreate(&category).Error; err != nil {
				return fmt.Errorf("failed to seed category %s: %w", category.Slug, err)
			}
			categories[category.Slug] = &category
		}

		tags := make(map[string]models.Tag, len(data.Tags))
		for _, name := range data.Tags {
			tag := models.Tag{Name: name, Slug: utils.GenerateSlug(name)}
			if err := tx.Where(models.Tag{Slug: tag.Slug}).FirstOrCreate(&tag).Error; err != nil {
				return fmt.Errorf("failed to seed tag %s: %w", name, err)
			}
			tags[name] = tag
		}

		created := 0
		for _, entry := range data.Posts {
			ok, err := seedPost(tx, entry, editor, categories, tags, authors)
			if err != nil {
				return err
			}
			if ok {
				created++
			}
		}

		logger.Info("Seed completed", map[string]interface{}{
			"categories": len(categories),
			"tags":       len(tags),
			"new_posts":  created,
		})
		return nil
	})
}

func seedPost(tx *gorm.DB, entry catalogPost, author *models.User, categories map[string]*models.Category, tags map[string]models.Tag, authors map[string]*models.User) (bool, error) {
	slug := utils.GenerateSlug(entry.Title)

	var existing int64
	if err := tx.Model(&models.Post{}).Where("slug = ?", slug).Count(&existing).Error; err != nil {
		return false, err
	}
	if existing > 0 {
		return false, nil
	}

	html, err := utils.RenderMarkdown(entry.Content)
	if err != nil {
		return false, fmt.Errorf("failed to render %s: %w", slug, err)
	}

	status := models.PostStatusPublished
	if entry.Status != "" {
		parsed, ok := models.ParsePostStatus(entry.Status)
		if !ok {
			return false, fmt.Errorf("invalid status %q for %s", entry.Status, slug)
		}
		status = parsed
	}

	post := models.Post{
		Title:         entry.Title,
		Slug:          slug,
		Excerpt:       entry.Excerpt,
		Content:       validator.SanitizeHTML(html),
		Status:        status,
		Featured:      entry.Featured,
		Version:       entry.Version,
		FileSize:      entry.FileSize,
		Requirements:  entry.Requirements,
		Developer:     entry.Developer,
		DownloadURL:   entry.DownloadURL,
		ViewCount:     entry.Views,
		DownloadCount: entry.Downloads,
		AuthorID:      author.ID,
	}
	if status == models.PostStatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}
	if category, ok := categories[entry.Category]; ok {
		post.CategoryID = &category.ID
	}
	for _, name := range entry.Tags {
		tag, ok := tags[name]
		if !ok {
			return false, fmt.Errorf("unknown tag %q for %s", name, slug)
		}
		post.Tags = append(post.Tags, tag)
	}

	if err := tx.Create(&post).Error; err != nil {
		return false, fmt.Errorf("failed to seed post %s: %w", slug, err)
	}

	for _, comment := range entry.Comments {
		if err := seedComment(tx, post.ID, nil, comment, authors); err != nil {
			return false, err
		}
	}
	return true, nil
}

// seedComment stores approved comments; replies are only read one level deep.
func seedComment(tx *gorm.DB, postID uint, parentID *uint, entry catalogComment, authors map[string]*models.User) error {
	author, ok := authors[entry.Author]
	if !ok {
		return fmt.Errorf("unknown comment author %q", entry.Author)
	}

	comment := models.Comment{
		Content:  entry.Content,
		Status:   models.CommentStatusApproved,
		PostID:   postID,
		AuthorID: author.ID,
		ParentID: parentID,
	}
	if err := tx.Create(&comment).Error; err != nil {
		return fmt.Errorf("failed to seed comment: %w", err)
	}

	if parentID != nil {
		return nil
	}
	for _, reply := range entry.Replies {
		if err := seedComment(tx, postID, &comment.ID, reply, authors); err != nil {
			return err
		}
	}
	return nil
}

// EnsureAccount returns the account registered under email, creating it when
// missing. An existing account keeps its password and role.
func EnsureAccount(db *gorm.DB, name, email, password string, role authorization.UserRole) (*models.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, false, errors.New("account email is required")
	}

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to look up %s: %w", email, err)
	}

	if len(password) < 6 {
		return nil, false, fmt.Errorf("password for %s must be at least 6 characters", email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	user = models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create %s: %w", email, err)
	}

	logger.Info("Created account", map[string]interface{}{"email": email, "role": role.String()})
	return &user, true, nil
}

// PromoteAccount sets the role of an existing account and optionally resets
// its password. Used to recover access to the back office.
func PromoteAccount(db *gorm.DB, email, password string, role authorization.UserRole) (*models.User, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	var user models.User
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", email, err)
	}

	updates := map[string]interface{}{"role": role}
	if password != "" {
		if len(password) < 6 {
			return nil, errors.New("password must be at least 6 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updates["password"] = string(hash)
	}

	if err := db.Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", email, err)
	}
	user.Role = role
	return &user, nil
}
