package models

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"blogmodapk-backend/internal/authorization"
)

type PostStatus string

const (
	PostStatusDraft     PostStatus = "DRAFT"
	PostStatusPublished PostStatus = "PUBLISHED"
	PostStatusScheduled PostStatus = "SCHEDULED"
	PostStatusArchived  PostStatus = "ARCHIVED"
)

func (s PostStatus) IsValid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusScheduled, PostStatusArchived:
		return true
	}
	return false
}

func ParsePostStatus(value string) (PostStatus, bool) {
	status := PostStatus(strings.ToUpper(strings.TrimSpace(value)))
	return status, status.IsValid()
}

type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "PENDING"
	CommentStatusApproved CommentStatus = "APPROVED"
	CommentStatusSpam     CommentStatus = "SPAM"
	CommentStatusRejected CommentStatus = "REJECTED"
)

func (s CommentStatus) IsValid() bool {
	switch s {
	case CommentStatusPending, CommentStatusApproved, CommentStatusSpam, CommentStatusRejected:
		return true
	}
	return false
}

func ParseCommentStatus(value string) (CommentStatus, bool) {
	status := CommentStatus(strings.ToUpper(strings.TrimSpace(value)))
	return status, status.IsValid()
}

type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name     string                 `gorm:"size:100;not null" json:"name"`
	Email    string                 `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string                 `gorm:"not null" json:"-"`
	Role     authorization.UserRole `gorm:"type:varchar(20);not null;default:'USER';index" json:"role"`
	Image    string                 `gorm:"size:512" json:"image"`
}

// UserSummary is the public projection of a user attached to posts and comments.
type UserSummary struct {
	ID    uint                   `json:"id"`
	Name  string                 `json:"name"`
	Image string                 `json:"image"`
	Role  authorization.UserRole `json:"role"`
}

func (u *User) Summary() *UserSummary {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Image: u.Image, Role: u.Role}
}

type Category struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:100" json:"icon"`
	Color       string `gorm:"size:20" json:"color"`
	Order       int    `gorm:"not null;default:0" json:"order"`

	PostCount int64 `gorm:"->;-:migration" json:"postCount"`
}

type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug string `gorm:"size:120;uniqueIndex;not null" json:"slug"`

	PostCount int64 `gorm:"->;-:migration" json:"postCount"`
}

type Post struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Title         string     `gorm:"size:255;not null" json:"title"`
	Slug          string     `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Excerpt       string     `gorm:"type:text" json:"excerpt"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	FeaturedImage string     `gorm:"size:512" json:"featuredImage"`
	Status        PostStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	Featured      bool       `gorm:"not null;default:false;index" json:"featured"`
	PublishedAt   *time.Time `gorm:"index" json:"publishedAt"`

	// App listing metadata.
	Version      string `gorm:"size:50" json:"version"`
	FileSize     string `gorm:"size:50" json:"fileSize"`
	Requirements string `gorm:"size:255" json:"requirements"`
	Developer    string `gorm:"size:255" json:"developer"`
	DownloadURL  string `gorm:"size:1024" json:"downloadUrl"`

	MetaTitle       string `gorm:"size:255" json:"metaTitle"`
	MetaDescription string `gorm:"size:500" json:"metaDescription"`
	MetaKeywords    string `gorm:"size:500" json:"metaKeywords"`

	ViewCount     int64 `gorm:"not null;default:0;index" json:"viewCount"`
	DownloadCount int64 `gorm:"not null;default:0;index" json:"downloadCount"`

	CategoryID *uint     `gorm:"index" json:"categoryId"`
	Category   *Category `json:"category,omitempty"`

	AuthorID   uint         `gorm:"not null;index" json:"authorId"`
	Author     *User        `json:"-"`
	AuthorInfo *UserSummary `gorm:"-" json:"author,omitempty"`

	Tags []Tag `gorm:"many2many:post_tags;" json:"tags"`

	CommentCount *int64 `gorm:"-" json:"commentCount,omitempty"`
}

func (p *Post) AfterFind(tx *gorm.DB) error {
	p.AuthorInfo = p.Author.Summary()
	return nil
}

// IsPublished reports whether the post is visible on public endpoints.
func (p *Post) IsPublished() bool {
	return p != nil && p.Status == PostStatusPublished
}

type Comment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Content string        `gorm:"type:text;not null" json:"content"`
	Status  CommentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`

	PostID uint  `gorm:"not null;index" json:"postId"`
	Post   *Post `json:"post,omitempty"`

	AuthorID   uint         `gorm:"not null;index" json:"authorId"`
	Author     *User        `json:"-"`
	AuthorInfo *UserSummary `gorm:"-" json:"author,omitempty"`

	ParentID *uint     `gorm:"index" json:"parentId"`
	Replies  []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
}

func (c *Comment) AfterFind(tx *gorm.DB) error {
	c.AuthorInfo = c.Author.Summary()
	return nil
}

func (c *Comment) IsReply() bool {
	return c != nil && c.ParentID != nil
}

// Download is an append-only audit row. PostID carries no foreign key so the
// audit trail outlives deleted posts.
type Download struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	PostID    uint   `gorm:"not null;index" json:"postId"`
	UserID    *uint  `gorm:"index" json:"userId"`
	IPAddress string `gorm:"size:64" json:"ipAddress"`
	UserAgent string `gorm:"size:512" json:"userAgent"`
}

type Media struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	URL          string `gorm:"size:1024;not null" json:"url"`
	FileName     string `gorm:"size:255;not null" json:"fileName"`
	FileSize     int64  `gorm:"not null;default:0" json:"fileSize"`
	MimeType     string `gorm:"size:100;not null" json:"mimeType"`
	Alt          string `gorm:"size:255" json:"alt"`
	UploadedByID *uint  `gorm:"index" json:"uploadedById"`
}

type Setting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AllModels lists every persisted model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Tag{},
		&Post{},
		&Comment{},
		&Download{},
		&Media{},
		&Setting{},
	}
}
