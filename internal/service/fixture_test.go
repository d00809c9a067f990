package service

import (
	"strconv"
	"testing"
	"time"

	"gorm.io/gorm"

	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/repository"
	"blogmodapk-backend/internal/testutil"
)

type fixture struct {
	db *gorm.DB

	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	commentRepo  repository.CommentRepository
	userRepo     repository.UserRepository
	mediaRepo    repository.MediaRepository
	downloadRepo repository.DownloadRepository
	settingRepo  repository.SettingRepository

	auth       *AuthService
	posts      *PostService
	comments   *CommentService
	counters   *CounterService
	categories *CategoryService
	tags       *TagService
	media      *MediaService
	users      *UserService
	settings   *SettingService
	stats      *StatsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	f := &fixture{
		db:           db,
		postRepo:     repository.NewPostRepository(db),
		categoryRepo: repository.NewCategoryRepository(db),
		tagRepo:      repository.NewTagRepository(db),
		commentRepo:  repository.NewCommentRepository(db),
		userRepo:     repository.NewUserRepository(db),
		mediaRepo:    repository.NewMediaRepository(db),
		downloadRepo: repository.NewDownloadRepository(db),
		settingRepo:  repository.NewSettingRepository(db),
	}

	f.auth = NewAuthService(f.userRepo, "test-secret", time.Hour)
	f.posts = NewPostService(f.postRepo, f.categoryRepo, f.tagRepo, f.commentRepo, nil, 12, 100)
	f.comments = NewCommentService(f.commentRepo, f.postRepo, NewCommentGuard(0), 5000, 100)
	f.counters = NewCounterService(f.postRepo, f.downloadRepo)
	f.categories = NewCategoryService(f.categoryRepo, nil)
	f.tags = NewTagService(f.tagRepo)
	f.media = NewMediaService(f.mediaRepo, 100)
	f.users = NewUserService(f.userRepo, 100)
	f.settings = NewSettingService(f.settingRepo, nil)
	f.stats = NewStatsService(f.postRepo, f.categoryRepo, f.tagRepo, f.commentRepo, f.userRepo, f.mediaRepo, f.downloadRepo)
	return f
}

func actorOf(user *models.User) Actor {
	return Actor{ID: user.ID, Role: user.Role}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
