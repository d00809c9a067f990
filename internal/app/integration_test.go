//go:build integration

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"blogmodapk-backend/internal/config"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/seed"
	"blogmodapk-backend/pkg/cache"
	"blogmodapk-backend/pkg/validator"
)

// newPostgresServer starts a throwaway Postgres, migrates and seeds it and
// returns a server backed by it.
func newPostgresServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	gin.SetMode(gin.TestMode)
	validator.Init()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("blogmodapk"),
		postgres.WithUsername("blog"),
		postgres.WithPassword("blog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	cfg := &config.Config{
		DatabaseURL:          dsn,
		DBMaxIdleConns:       5,
		DBMaxOpenConns:       20,
		JWTSecret:            "integration-secret",
		JWTTTL:               time.Hour,
		Environment:          "test",
		RateLimitRequests:    10000,
		RateLimitWindow:      60,
		CommentMaxLength:     5000,
		CommentRatePerMinute: 0,
		DefaultPageSize:      12,
		MaxPageSize:          100,
	}

	db, err := OpenDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db), "migrations are repeatable")
	require.NoError(t, seed.Run(db, seed.Options{AdminName: "Owner", AdminEmail: "owner@example.com", AdminPassword: "owner-secret"}))

	disabled, err := cache.NewCache("", false, 0)
	require.NoError(t, err)

	app := newApplication(cfg, db, disabled)
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Shutdown(shutdownCtx)
	})
	return &testServer{t: t, app: app, db: db}
}

func TestPostgresConcurrentDownloads(t *testing.T) {
	s := newPostgresServer(t)

	var post models.Post
	require.NoError(t, s.db.Where("slug = ?", "subway-surfers-mod-apk").First(&post).Error)
	before := post.DownloadCount

	const workers = 50
	var wg sync.WaitGroup
	codes := make(chan int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/"+post.Slug+"/downloads", nil)
			req.Header.Set("X-Forwarded-For", "198.51.100.7")
			w := httptest.NewRecorder()
			s.app.Router().ServeHTTP(w, req)
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		require.Equal(t, http.StatusOK, code)
	}

	require.NoError(t, s.db.First(&post, post.ID).Error)
	assert.EqualValues(t, before+workers, post.DownloadCount)

	var audits int64
	require.NoError(t, s.db.Model(&models.Download{}).Where("post_id = ?", post.ID).Count(&audits).Error)
	assert.EqualValues(t, workers, audits)
}

func TestPostgresSearchAndThread(t *testing.T) {
	s := newPostgresServer(t)

	w := s.do(http.MethodGet, "/api/v1/posts/search?q=SPOTIFY", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list models.PostListResponse
	decode(t, w, &list)
	require.Len(t, list.Posts, 1, "search is case-insensitive")
	assert.Equal(t, "spotify-premium-unlocked", list.Posts[0].Slug)

	w = s.do(http.MethodGet, "/api/v1/posts/subway-surfers-mod-apk/comments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var thread struct {
		Comments []models.Comment `json:"comments"`
	}
	decode(t, w, &thread)
	require.Len(t, thread.Comments, 2)

	replies := 0
	for _, comment := range thread.Comments {
		replies += len(comment.Replies)
	}
	assert.Equal(t, 1, replies)

	w = s.do(http.MethodGet, "/api/v1/posts/upcoming-releases-roundup", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
