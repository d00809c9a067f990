package models

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CreatePostRequest struct {
	Title         string `json:"title" binding:"required,max=255"`
	Slug          string `json:"slug" binding:"omitempty,slug,max=255"`
	Excerpt       string `json:"excerpt"`
	Content       string `json:"content"`
	ContentFormat string `json:"contentFormat" binding:"omitempty,oneof=html markdown"`
	FeaturedImage string `json:"featuredImage" binding:"max=512"`
	Status        string `json:"status"`
	Featured      bool   `json:"featured"`
	CategoryID    *uint  `json:"categoryId"`
	TagIDs        []uint `json:"tagIds"`

	Version      string `json:"version" binding:"max=50"`
	FileSize     string `json:"fileSize" binding:"max=50"`
	Requirements string `json:"requirements" binding:"max=255"`
	Developer    string `json:"developer" binding:"max=255"`
	DownloadURL  string `json:"downloadUrl" binding:"omitempty,url,max=1024"`

	MetaTitle       string `json:"metaTitle" binding:"max=255"`
	MetaDescription string `json:"metaDescription" binding:"max=500"`
	MetaKeywords    string `json:"metaKeywords" binding:"max=500"`
}

// UpdatePostRequest only touches fields that were supplied.
type UpdatePostRequest struct {
	Title         *string      `json:"title" binding:"omitempty,min=1,max=255"`
	Slug          *string      `json:"slug" binding:"omitempty,slug,max=255"`
	Excerpt       *string      `json:"excerpt"`
	Content       *string      `json:"content"`
	ContentFormat string       `json:"contentFormat" binding:"omitempty,oneof=html markdown"`
	FeaturedImage *string      `json:"featuredImage" binding:"omitempty,max=512"`
	Status        *string      `json:"status"`
	Featured      *bool        `json:"featured"`
	CategoryID    OptionalUint `json:"categoryId"`
	TagIDs        *[]uint      `json:"tagIds"`

	Version      *string `json:"version" binding:"omitempty,max=50"`
	FileSize     *string `json:"fileSize" binding:"omitempty,max=50"`
	Requirements *string `json:"requirements" binding:"omitempty,max=255"`
	Developer    *string `json:"developer" binding:"omitempty,max=255"`
	DownloadURL  *string `json:"downloadUrl" binding:"omitempty,max=1024"`

	MetaTitle       *string `json:"metaTitle" binding:"omitempty,max=255"`
	MetaDescription *string `json:"metaDescription" binding:"omitempty,max=500"`
	MetaKeywords    *string `json:"metaKeywords" binding:"omitempty,max=500"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"omitempty,slug,max=120"`
	Description string `json:"description"`
	Icon        string `json:"icon" binding:"max=100"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
	Order       int    `json:"order"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug" binding:"omitempty,slug,max=120"`
	Description *string `json:"description"`
	Icon        *string `json:"icon" binding:"omitempty,max=100"`
	Color       *string `json:"color" binding:"omitempty,hexcolor"`
	Order       *int    `json:"order"`
}

type TagRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Slug string `json:"slug" binding:"omitempty,slug,max=120"`
}

type CreateMediaRequest struct {
	URL      string `json:"url" binding:"required,url,max=1024"`
	FileName string `json:"fileName" binding:"required,max=255"`
	FileSize int64  `json:"fileSize" binding:"min=0"`
	MimeType string `json:"mimeType" binding:"required,max=100"`
	Alt      string `json:"alt" binding:"max=255"`
}

// CreateCommentRequest leaves content unchecked at binding time so that an empty
// body yields the domain validation message.
type CreateCommentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parentId"`
}

type UpdateCommentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=100"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=50"`
	Role  *string `json:"role"`
	Image *string `json:"image" binding:"omitempty,max=512"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination derives the envelope from a total computed before paging.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

type PostListResponse struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

type PostSuggestion struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	FeaturedImage string `json:"featuredImage"`
}
