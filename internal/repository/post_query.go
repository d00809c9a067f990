package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"blogmodapk-backend/internal/models"
)

// PostSort is a resolved ORDER BY column with its direction.
type PostSort struct {
	Column string
	Desc   bool
}

var publicPostSorts = map[string]PostSort{
	"recent":    {Column: "created_at", Desc: true},
	"popular":   {Column: "view_count", Desc: true},
	"downloads": {Column: "download_count", Desc: true},
	"title":     {Column: "title", Desc: false},
}

// adminPostSorts are the column names accepted by the admin post table.
var adminPostSorts = map[string]PostSort{
	"createdAt":     {Column: "created_at", Desc: true},
	"updatedAt":     {Column: "updated_at", Desc: true},
	"publishedAt":   {Column: "published_at", Desc: true},
	"viewCount":     {Column: "view_count", Desc: true},
	"downloadCount": {Column: "download_count", Desc: true},
	"title":         {Column: "title", Desc: false},
}

// ResolvePostSort maps a sortBy key to a column. Unknown keys fall back to
// "recent". An explicit sortOrder is honoured only when allowOrder is set.
func ResolvePostSort(sortBy, sortOrder string, allowOrder bool) PostSort {
	key := strings.TrimSpace(sortBy)
	sort, ok := publicPostSorts[strings.ToLower(key)]
	if !ok && allowOrder {
		sort, ok = adminPostSorts[key]
	}
	if !ok {
		sort = publicPostSorts["recent"]
	}

	if allowOrder {
		switch strings.ToLower(strings.TrimSpace(sortOrder)) {
		case "asc":
			sort.Desc = false
		case "desc":
			sort.Desc = true
		}
	}
	return sort
}

// PostFilter is the full predicate of a post listing. Count and page queries
// are both built from it through applyPostFilter.
type PostFilter struct {
	Status     *models.PostStatus
	CategoryID *uint
	TagID      *uint
	AuthorID   *uint
	Featured   *bool
	Search     string
	Sort       PostSort
	Page       int
	Limit      int
}

// pageOffset returns the row offset of a 1-based page, or false when the page
// starts at or past total. The comparison is done in page units so a huge
// page number cannot overflow into a negative offset.
func pageOffset(page, limit int, total int64) (int, bool) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || total <= 0 {
		return 0, false
	}
	pages := (total + int64(limit) - 1) / int64(limit)
	if int64(page-1) >= pages {
		return 0, false
	}
	return (page - 1) * limit, true
}

func applyPostFilter(query *gorm.DB, f PostFilter) *gorm.DB {
	if f.Status != nil {
		query = query.Where("posts.status = ?", *f.Status)
	}
	if f.CategoryID != nil {
		query = query.Where("posts.category_id = ?", *f.CategoryID)
	}
	if f.TagID != nil {
		query = query.Where("posts.id IN (SELECT post_tags.post_id FROM post_tags WHERE post_tags.tag_id = ?)", *f.TagID)
	}
	if f.AuthorID != nil {
		query = query.Where("posts.author_id = ?", *f.AuthorID)
	}
	if f.Featured != nil {
		query = query.Where("posts.featured = ?", *f.Featured)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := likePattern(search)
		query = query.Where(
			"(LOWER(posts.title) LIKE ? ESCAPE '\\' OR LOWER(posts.excerpt) LIKE ? ESCAPE '\\' OR LOWER(posts.content) LIKE ? ESCAPE '\\')",
			pattern, pattern, pattern,
		)
	}
	return query
}

// applyPostOrder orders by the resolved column and breaks ties on id in the same direction.
func applyPostOrder(query *gorm.DB, sort PostSort) *gorm.DB {
	if sort.Column == "" {
		sort = publicPostSorts["recent"]
	}
	return query.
		Order(clause.OrderByColumn{Column: clause.Column{Table: "posts", Name: sort.Column}, Desc: sort.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "posts", Name: "id"}, Desc: sort.Desc})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a lower-cased substring pattern with LIKE wildcards escaped.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

func prefixPattern(term string) string {
	return likeEscaper.Replace(strings.ToLower(term)) + "%"
}
