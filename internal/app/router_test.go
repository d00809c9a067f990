package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/config"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/testutil"
	"blogmodapk-backend/pkg/cache"
	"blogmodapk-backend/pkg/validator"
)

type testServer struct {
	t   *testing.T
	app *Application
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Init()

	cfg := &config.Config{
		JWTSecret:            "router-test-secret",
		JWTTTL:               time.Hour,
		Environment:          "test",
		CORSOrigins:          []string{"http://localhost:3000"},
		RateLimitRequests:    10000,
		RateLimitWindow:      60,
		CommentMaxLength:     5000,
		CommentRatePerMinute: 0,
		DefaultPageSize:      12,
		MaxPageSize:          100,
		EnableMetrics:        true,
	}
	disabled, err := cache.NewCache("", false, 0)
	require.NoError(t, err)

	db := testutil.NewDB(t)
	app := newApplication(cfg, db, disabled)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = app.Shutdown(ctx)
	})
	return &testServer{t: t, app: app, db: db}
}

func (s *testServer) token(user *models.User) string {
	s.t.Helper()
	token, _, err := s.app.services.Auth.Login(models.LoginRequest{Email: user.Email, Password: "password123"})
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	var body struct {
		Error string `json:"error"`
	}
	decode(t, w, &body)
	return body.Error
}

func TestUnpublishedPostsAreNeverServedPublicly(t *testing.T) {
	s := newTestServer(t)
	author := testutil.CreateUser(t, s.db, "author", authorization.RoleEditor)
	live := testutil.CreatePost(t, s.db, author, "Live App")

	for _, status := range []models.PostStatus{models.PostStatusDraft, models.PostStatusScheduled, models.PostStatusArchived} {
		hidden := testutil.CreatePost(t, s.db, author, "Hidden "+string(status), testutil.WithStatus(status))
		w := s.do(http.MethodGet, "/api/v1/posts/"+hidden.Slug, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, status)
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/v1/posts/"+hidden.Slug+"/views", "", nil).Code)
	}

	w := s.do(http.MethodGet, "/api/v1/posts/"+live.Slug, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Post models.Post `json:"post"`
	}
	decode(t, w, &body)
	assert.Equal(t, live.ID, body.Post.ID)

	w = s.do(http.MethodGet, "/api/v1/posts?status=DRAFT", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list models.PostListResponse
	decode(t, w, &list)
	assert.EqualValues(t, 1, list.Pagination.Total, "public listings ignore the status filter")
}

func TestPopularListingOverHTTP(t *testing.T) {
	s := newTestServer(t)
	author := testutil.CreateUser(t, s.db, "author", authorization.RoleEditor)
	testutil.CreatePost(t, s.db, author, "Ten", testutil.WithCounts(10, 0))
	testutil.CreatePost(t, s.db, author, "Fifty", testutil.WithCounts(50, 0))
	testutil.CreatePost(t, s.db, author, "Thirty", testutil.WithCounts(30, 0))

	w := s.do(http.MethodGet, "/api/v1/posts?sortBy=popular&limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list models.PostListResponse
	decode(t, w, &list)
	require.Len(t, list.Posts, 2)
	assert.EqualValues(t, 50, list.Posts[0].ViewCount)
	assert.EqualValues(t, 30, list.Posts[1].ViewCount)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 2, Total: 3, TotalPages: 2}, list.Pagination)

	w = s.do(http.MethodGet, "/api/v1/posts?categoryId=games", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategoryDeleteConflictOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "admin", authorization.RoleAdmin)
	category := testutil.CreateCategory(t, s.db, "Games", 1)
	testutil.CreatePost(t, s.db, admin, "First", testutil.WithCategory(category))
	testutil.CreatePost(t, s.db, admin, "Second", testutil.WithCategory(category))
	token := s.token(admin)

	w := s.do(http.MethodDelete, "/api/v1/admin/categories/"+itoa(category.ID), token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Cannot delete category with posts", errorMessage(t, w))

	w = s.do(http.MethodGet, "/api/v1/categories/"+category.Slug, "", nil)
	assert.Equal(t, http.StatusOK, w.Code, "category must survive the failed delete")

	w = s.do(http.MethodDelete, "/api/v1/admin/categories/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnonymousDownloadOverHTTP(t *testing.T) {
	s := newTestServer(t)
	author := testutil.CreateUser(t, s.db, "author", authorization.RoleEditor)
	post := testutil.CreatePost(t, s.db, author, "Free App", testutil.WithCounts(0, 4))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/"+post.Slug+"/downloads", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set("User-Agent", "okhttp/4.12")
	w := httptest.NewRecorder()
	s.app.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"downloadCount":5}`, w.Body.String())

	var download models.Download
	require.NoError(t, s.db.Where("post_id = ?", post.ID).First(&download).Error)
	assert.Nil(t, download.UserID)
	assert.Equal(t, "203.0.113.9", download.IPAddress)
	assert.Equal(t, "okhttp/4.12", download.UserAgent)
}

func TestSignedInDownloadIsAttributed(t *testing.T) {
	s := newTestServer(t)
	author := testutil.CreateUser(t, s.db, "author", authorization.RoleEditor)
	reader := testutil.CreateUser(t, s.db, "reader", authorization.RoleUser)
	post := testutil.CreatePost(t, s.db, author, "Tracked App")

	w := s.do(http.MethodPost, "/api/v1/posts/"+post.Slug+"/downloads", s.token(reader), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var download models.Download
	require.NoError(t, s.db.Where("post_id = ?", post.ID).First(&download).Error)
	require.NotNil(t, download.UserID)
	assert.Equal(t, reader.ID, *download.UserID)
	assert.Equal(t, "unknown", download.IPAddress)
}

func TestEditorCannotPatchOthersPostOverHTTP(t *testing.T) {
	s := newTestServer(t)
	owner := testutil.CreateUser(t, s.db, "owner", authorization.RoleEditor)
	editor := testutil.CreateUser(t, s.db, "editor", authorization.RoleEditor)
	post := testutil.CreatePost(t, s.db, owner, "Owned")
	token := s.token(editor)

	w := s.do(http.MethodPatch, "/api/v1/admin/posts/"+itoa(post.ID), token, map[string]interface{}{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodDelete, "/api/v1/admin/posts/"+itoa(post.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var stored models.Post
	require.NoError(t, s.db.First(&stored, post.ID).Error)
	assert.Equal(t, "Owned", stored.Title)

	w = s.do(http.MethodPatch, "/api/v1/admin/posts/"+itoa(post.ID), s.token(owner), map[string]interface{}{"title": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, s.db.First(&stored, post.ID).Error)
	assert.Equal(t, "Renamed", stored.Title)
}

func TestAdminSurfaceRequiresStaffSession(t *testing.T) {
	s := newTestServer(t)
	reader := testutil.CreateUser(t, s.db, "reader", authorization.RoleUser)
	editor := testutil.CreateUser(t, s.db, "editor", authorization.RoleEditor)

	w := s.do(http.MethodGet, "/api/v1/admin/posts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/admin/posts", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/admin/posts", s.token(reader), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	editorToken := s.token(editor)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/admin/posts", editorToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/v1/admin/users", editorToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, "/api/v1/admin/settings", editorToken, map[string]string{"siteName": "x"}).Code)
}

func TestSelfProtectionOverHTTP(t *testing.T) {
	s := newTestServer(t)
	super := testutil.CreateUser(t, s.db, "super", authorization.RoleSuperAdmin)
	token := s.token(super)

	w := s.do(http.MethodPatch, "/api/v1/admin/users/"+itoa(super.ID), token, map[string]string{"role": "ADMIN"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodPatch, "/api/v1/admin/users/"+itoa(super.ID), token, map[string]string{"role": "SUPER_ADMIN"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodPatch, "/api/v1/admin/users/"+itoa(super.ID), token, map[string]string{"name": "Renamed"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodDelete, "/api/v1/admin/users/"+itoa(super.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCommentFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	author := testutil.CreateUser(t, s.db, "author", authorization.RoleEditor)
	reader := testutil.CreateUser(t, s.db, "reader", authorization.RoleUser)
	post := testutil.CreatePost(t, s.db, author, "Talked About")
	c1 := testutil.CreateComment(t, s.db, post, author, "approved", models.CommentStatusApproved, nil)
	testutil.CreateComment(t, s.db, post, reader, "pending", models.CommentStatusPending, c1)

	path := "/api/v1/posts/" + post.Slug + "/comments"
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, path, "", map[string]string{"content": "hi"}).Code)

	w := s.do(http.MethodPost, path, s.token(reader), map[string]string{"content": "nice app"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Comment models.Comment `json:"comment"`
		Message string         `json:"message"`
	}
	decode(t, w, &created)
	assert.Equal(t, models.CommentStatusPending, created.Comment.Status)
	assert.Equal(t, "Comment submitted for moderation", created.Message)

	w = s.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var thread struct {
		Comments []models.Comment `json:"comments"`
	}
	decode(t, w, &thread)
	require.Len(t, thread.Comments, 1)
	assert.Equal(t, c1.ID, thread.Comments[0].ID)
	assert.Empty(t, thread.Comments[0].Replies)
}

func TestPublicSettingsETag(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/settings/public", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings/public", nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	s.app.Router().ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)
	assert.Empty(t, cached.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cache":"disabled"`)

	s.do(http.MethodGet, "/api/v1/posts", "", nil)
	w = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "blogmodapk_http_requests_total")

	w = s.do(http.MethodGet, "/api/v1/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	s := newTestServer(t)
	user := testutil.CreateUser(t, s.db, "reader", authorization.RoleUser)

	w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": user.Email, "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "auth_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(cookie)
	me := httptest.NewRecorder()
	s.app.Router().ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), user.Email)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": user.Email, "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"name": "N", "email": "bad", "password": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
