package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/testutil"
)

func TestSettingsDefaultsAndPublicSubset(t *testing.T) {
	f := newFixture(t)
	admin := testutil.CreateUser(t, f.db, "admin", authorization.RoleAdmin)

	public, err := f.settings.GetPublic()
	require.NoError(t, err)
	assert.Equal(t, "Blog ModAPK", public.Settings["siteName"])
	assert.Equal(t, "12", public.Settings["postsPerPage"])
	assert.NotContains(t, public.Settings, "googleAnalytics")
	assert.NotEmpty(t, public.ETag)

	all, err := f.settings.GetAll(actorOf(admin))
	require.NoError(t, err)
	assert.Contains(t, all.Settings, "googleAnalytics")

	updated, err := f.settings.Update(actorOf(admin), map[string]string{
		"siteName":       "  APK Hub ",
		"enableComments": "FALSE",
		"postsPerPage":   "24",
	})
	require.NoError(t, err)
	assert.Equal(t, "APK Hub", updated.Settings["siteName"])
	assert.Equal(t, "false", updated.Settings["enableComments"])

	again, err := f.settings.GetPublic()
	require.NoError(t, err)
	assert.Equal(t, "24", again.Settings["postsPerPage"])
	assert.NotEqual(t, public.ETag, again.ETag)

	same, err := f.settings.GetPublic()
	require.NoError(t, err)
	assert.Equal(t, again.ETag, same.ETag)
}

func TestSettingsValidation(t *testing.T) {
	f := newFixture(t)
	admin := testutil.CreateUser(t, f.db, "admin", authorization.RoleAdmin)
	editor := testutil.CreateUser(t, f.db, "editor", authorization.RoleEditor)

	_, err := f.settings.Update(actorOf(editor), map[string]string{"siteName": "x"})
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.settings.GetAll(actorOf(editor))
	require.ErrorIs(t, err, ErrForbidden)

	for _, values := range []map[string]string{
		{},
		{"theme": "dark"},
		{"postsPerPage": "0"},
		{"postsPerPage": "many"},
		{"enableDownloads": "sometimes"},
		{"siteName": "ok", "postsPerPage": "1000"},
	} {
		_, err := f.settings.Update(actorOf(admin), values)
		require.ErrorIs(t, err, ErrValidation, "%v", values)
	}

	stored, err := f.settingRepo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, stored, "a rejected batch writes nothing")
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	editor := testutil.CreateUser(t, f.db, "editor", authorization.RoleEditor)
	reader := testutil.CreateUser(t, f.db, "reader", authorization.RoleUser)
	testutil.CreateCategory(t, f.db, "Games", 1)
	post := testutil.CreatePost(t, f.db, editor, "Counted", testutil.WithCounts(10, 3))
	testutil.CreatePost(t, f.db, editor, "Unfinished", testutil.WithStatus(models.PostStatusDraft), testutil.WithCounts(1, 1))
	testutil.CreateComment(t, f.db, post, reader, "waiting", models.CommentStatusPending, nil)

	_, err := f.stats.Dashboard(actorOf(reader))
	require.ErrorIs(t, err, ErrForbidden)

	stats, err := f.stats.Dashboard(actorOf(editor))
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalPosts)
	assert.EqualValues(t, 1, stats.PublishedPosts)
	assert.EqualValues(t, 1, stats.DraftPosts)
	assert.EqualValues(t, 1, stats.TotalCategories)
	assert.EqualValues(t, 1, stats.PendingComments)
	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 11, stats.TotalViews)
	assert.EqualValues(t, 4, stats.TotalDownloads)
	assert.Len(t, stats.RecentPosts, 2)
	assert.Len(t, stats.RecentComments, 1)
}

func TestDownloadStats(t *testing.T) {
	f := newFixture(t)
	editor := testutil.CreateUser(t, f.db, "editor", authorization.RoleEditor)
	post := testutil.CreatePost(t, f.db, editor, "Fetched")

	for i := 0; i < 3; i++ {
		_, err := f.counters.RecordDownload(post.Slug, DownloadSource{})
		require.NoError(t, err)
	}
	old := &models.Download{PostID: post.ID, CreatedAt: time.Now().AddDate(0, 0, -60)}
	require.NoError(t, f.downloadRepo.Create(old))

	stats, err := f.stats.Downloads(actorOf(editor), "")
	require.NoError(t, err)
	assert.Equal(t, 30, stats.Days)
	assert.EqualValues(t, 4, stats.TotalDownloads)
	assert.EqualValues(t, 3, stats.DownloadsInPeriod)
	require.NotEmpty(t, stats.TopPosts)
	assert.EqualValues(t, 3, stats.TopPosts[0].DownloadCount)
	require.Len(t, stats.DownloadsByDay, 1)
	assert.EqualValues(t, 3, stats.DownloadsByDay[0].Count)

	wide, err := f.stats.Downloads(actorOf(editor), "90")
	require.NoError(t, err)
	assert.EqualValues(t, 4, wide.DownloadsInPeriod)

	for _, raw := range []string{"0", "366", "week"} {
		_, err := f.stats.Downloads(actorOf(editor), raw)
		require.ErrorIs(t, err, ErrValidation, raw)
	}
}
