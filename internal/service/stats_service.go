package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/metrics"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/repository"
)

const (
	dashboardRecentItems = 5
	topDownloadedPosts   = 10
	defaultStatsDays     = 30
	maxStatsDays         = 365
)

type DashboardStats struct {
	TotalPosts      int64            `json:"totalPosts"`
	PublishedPosts  int64            `json:"publishedPosts"`
	DraftPosts      int64            `json:"draftPosts"`
	TotalCategories int64            `json:"totalCategories"`
	TotalTags       int64            `json:"totalTags"`
	TotalComments   int64            `json:"totalComments"`
	PendingComments int64            `json:"pendingComments"`
	TotalUsers      int64            `json:"totalUsers"`
	TotalMedia      int64            `json:"totalMedia"`
	TotalViews      int64            `json:"totalViews"`
	TotalDownloads  int64            `json:"totalDownloads"`
	RecentPosts     []models.Post    `json:"recentPosts"`
	RecentComments  []models.Comment `json:"recentComments"`
}

type DownloadStats struct {
	Days              int                     `json:"days"`
	TotalDownloads    int64                   `json:"totalDownloads"`
	DownloadsInPeriod int64                   `json:"downloadsInPeriod"`
	TopPosts          []models.Post           `json:"topPosts"`
	DownloadsByDay    []repository.DailyCount `json:"downloadsByDay"`
}

type StatsService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	commentRepo  repository.CommentRepository
	userRepo     repository.UserRepository
	mediaRepo    repository.MediaRepository
	downloadRepo repository.DownloadRepository
	now          func() time.Time
}

func NewStatsService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	mediaRepo repository.MediaRepository,
	downloadRepo repository.DownloadRepository,
) *StatsService {
	return &StatsService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		commentRepo:  commentRepo,
		userRepo:     userRepo,
		mediaRepo:    mediaRepo,
		downloadRepo: downloadRepo,
		now:          time.Now,
	}
}

func (s *StatsService) Dashboard(actor Actor) (*DashboardStats, error) {
	if err := actor.require(authorization.PermissionViewStatistics); err != nil {
		return nil, err
	}

	published := models.PostStatusPublished
	draft := models.PostStatusDraft
	pending := models.CommentStatusPending

	stats := &DashboardStats{}
	counts := []struct {
		dst   *int64
		count func() (int64, error)
	}{
		{&stats.TotalPosts, func() (int64, error) { return s.postRepo.CountByStatus(nil) }},
		{&stats.PublishedPosts, func() (int64, error) { return s.postRepo.CountByStatus(&published) }},
		{&stats.DraftPosts, func() (int64, error) { return s.postRepo.CountByStatus(&draft) }},
		{&stats.TotalCategories, s.categoryRepo.Count},
		{&stats.TotalTags, s.tagRepo.Count},
		{&stats.TotalComments, func() (int64, error) { return s.commentRepo.Count(nil) }},
		{&stats.PendingComments, func() (int64, error) { return s.commentRepo.Count(&pending) }},
		{&stats.TotalUsers, s.userRepo.Count},
		{&stats.TotalMedia, s.mediaRepo.Count},
	}
	for _, c := range counts {
		value, err := c.count()
		if err != nil {
			return nil, fmt.Errorf("failed to compute statistics: %w", err)
		}
		*c.dst = value
	}

	views, downloads, err := s.postRepo.SumCounters()
	if err != nil {
		return nil, fmt.Errorf("failed to sum counters: %w", err)
	}
	stats.TotalViews = views
	stats.TotalDownloads = downloads

	recent, _, err := s.postRepo.List(repository.PostFilter{
		Sort:  repository.ResolvePostSort("recent", "", false),
		Page:  1,
		Limit: dashboardRecentItems,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent posts: %w", err)
	}
	stats.RecentPosts = recent

	comments, err := s.commentRepo.GetRecent(dashboardRecentItems)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent comments: %w", err)
	}
	stats.RecentComments = comments

	return stats, nil
}

// Downloads summarises the audit trail over the last days (default 30, at most 365).
func (s *StatsService) Downloads(actor Actor, rawDays string) (*DownloadStats, error) {
	if err := actor.require(authorization.PermissionViewStatistics); err != nil {
		return nil, err
	}

	days := defaultStatsDays
	if raw := strings.TrimSpace(rawDays); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxStatsDays {
			return nil, newValidationError("days must be between 1 and %d", maxStatsDays)
		}
		days = parsed
	}
	since := s.now().AddDate(0, 0, -days)

	total, err := s.downloadRepo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count downloads: %w", err)
	}
	inPeriod, err := s.downloadRepo.CountSince(since)
	if err != nil {
		return nil, fmt.Errorf("failed to count downloads: %w", err)
	}
	top, err := s.postRepo.TopDownloaded(topDownloadedPosts)
	if err != nil {
		return nil, fmt.Errorf("failed to load top posts: %w", err)
	}
	byDay, err := s.downloadRepo.DailyCountsSince(since)
	if err != nil {
		return nil, fmt.Errorf("failed to group downloads: %w", err)
	}

	return &DownloadStats{
		Days:              days,
		TotalDownloads:    total,
		DownloadsInPeriod: inPeriod,
		TopPosts:          top,
		DownloadsByDay:    byDay,
	}, nil
}

// RefreshGauges publishes the moderation backlog and catalogue size to
// Prometheus. It runs as a recurring background job.
func (s *StatsService) RefreshGauges(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	published := models.PostStatusPublished
	pending := models.CommentStatusPending

	posts, err := s.postRepo.CountByStatus(&published)
	if err != nil {
		return fmt.Errorf("failed to count published posts: %w", err)
	}
	comments, err := s.commentRepo.Count(&pending)
	if err != nil {
		return fmt.Errorf("failed to count pending comments: %w", err)
	}

	metrics.SetContentGauges(posts, comments)
	return nil
}
