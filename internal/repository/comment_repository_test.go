package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/internal/testutil"
)

func TestApprovedThreadHidesUnapprovedReplies(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	author := testutil.CreateUser(t, db, "author", authorization.RoleEditor)
	reader := testutil.CreateUser(t, db, "reader", authorization.RoleUser)
	post := testutil.CreatePost(t, db, author, "Threads")

	c1 := testutil.CreateComment(t, db, post, reader, "first", models.CommentStatusApproved, nil)
	testutil.CreateComment(t, db, post, reader, "pending reply", models.CommentStatusPending, c1)

	thread, err := repo.GetApprovedThread(post.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, c1.ID, thread[0].ID)
	assert.Empty(t, thread[0].Replies)
	require.NotNil(t, thread[0].AuthorInfo)
	assert.Equal(t, "reader", thread[0].AuthorInfo.Name)
}

func TestApprovedThreadOrdering(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	author := testutil.CreateUser(t, db, "author", authorization.RoleEditor)
	reader := testutil.CreateUser(t, db, "reader", authorization.RoleUser)
	post := testutil.CreatePost(t, db, author, "Ordering")
	other := testutil.CreatePost(t, db, author, "Other")

	older := testutil.CreateComment(t, db, post, reader, "older", models.CommentStatusApproved, nil)
	newer := testutil.CreateComment(t, db, post, reader, "newer", models.CommentStatusApproved, nil)
	spam := testutil.CreateComment(t, db, post, reader, "spam", models.CommentStatusSpam, nil)
	testutil.CreateComment(t, db, post, reader, "orphan under spam", models.CommentStatusApproved, spam)
	r1 := testutil.CreateComment(t, db, post, author, "reply one", models.CommentStatusApproved, older)
	r2 := testutil.CreateComment(t, db, post, reader, "reply two", models.CommentStatusApproved, older)
	testutil.CreateComment(t, db, post, reader, "rejected reply", models.CommentStatusRejected, older)
	testutil.CreateComment(t, db, other, reader, "elsewhere", models.CommentStatusApproved, nil)

	thread, err := repo.GetApprovedThread(post.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, newer.ID, thread[0].ID)
	assert.Equal(t, older.ID, thread[1].ID)

	require.Len(t, thread[1].Replies, 2)
	assert.Equal(t, r1.ID, thread[1].Replies[0].ID)
	assert.Equal(t, r2.ID, thread[1].Replies[1].ID)
	require.NotNil(t, thread[1].Replies[0].AuthorInfo)
	assert.Equal(t, authorization.RoleEditor, thread[1].Replies[0].AuthorInfo.Role)
}

func TestCommentModerationAndDeletion(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	author := testutil.CreateUser(t, db, "author", authorization.RoleEditor)
	reader := testutil.CreateUser(t, db, "reader", authorization.RoleUser)
	post := testutil.CreatePost(t, db, author, "Moderation")

	parent := testutil.CreateComment(t, db, post, reader, "Parent text", models.CommentStatusPending, nil)
	testutil.CreateComment(t, db, post, author, "child", models.CommentStatusPending, parent)

	require.NoError(t, repo.UpdateStatus(parent.ID, models.CommentStatusSpam))
	assert.ErrorIs(t, repo.UpdateStatus(9999, models.CommentStatusApproved), gorm.ErrRecordNotFound)

	pending := models.CommentStatusPending
	comments, total, err := repo.List(CommentFilter{Status: &pending, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, comments, 1)
	require.NotNil(t, comments[0].Post)
	assert.Equal(t, "moderation", comments[0].Post.Slug)

	_, total, err = repo.List(CommentFilter{Search: "PARENT", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	count, err := repo.Count(nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, repo.Delete(parent.ID))
	count, err = repo.Count(nil)
	require.NoError(t, err)
	assert.Zero(t, count, "replies go with their parent")
}

func TestCategoryPostCounts(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCategoryRepository(db)
	author := testutil.CreateUser(t, db, "author", authorization.RoleEditor)

	second := testutil.CreateCategory(t, db, "Second", 2)
	first := testutil.CreateCategory(t, db, "First", 1)
	testutil.CreateCategory(t, db, "Empty", 3)

	testutil.CreatePost(t, db, author, "One", testutil.WithCategory(first))
	testutil.CreatePost(t, db, author, "Two", testutil.WithCategory(first), testutil.WithStatus(models.PostStatusDraft))
	testutil.CreatePost(t, db, author, "Three", testutil.WithCategory(second))

	public, err := repo.GetWithPostCount(true)
	require.NoError(t, err)
	require.Len(t, public, 3)
	assert.Equal(t, "First", public[0].Name)
	assert.EqualValues(t, 1, public[0].PostCount)
	assert.Equal(t, "Second", public[1].Name)
	assert.EqualValues(t, 0, public[2].PostCount)

	all, err := repo.GetWithPostCount(false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, all[0].PostCount)

	count, err := repo.CountPosts(first.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	exists, err := repo.ExistsBySlug("first", 0)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsBySlug("first", first.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDownloadDailyCounts(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewDownloadRepository(db)

	now := time.Now()
	for _, at := range []time.Time{now, now, now.AddDate(0, 0, -2), now.AddDate(0, 0, -40)} {
		require.NoError(t, repo.Create(&models.Download{PostID: 1, CreatedAt: at}))
	}

	since := now.AddDate(0, 0, -30)
	inPeriod, err := repo.CountSince(since)
	require.NoError(t, err)
	assert.EqualValues(t, 3, inPeriod)

	days, err := repo.DailyCountsSince(since)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Len(t, days[0].Day, len("2006-01-02"))
	assert.EqualValues(t, 1, days[0].Count)
	assert.EqualValues(t, 2, days[1].Count)
}

func TestSettingsUpsert(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSettingRepository(db)

	require.NoError(t, repo.SetMany(map[string]string{"siteName": "One", "postsPerPage": "12"}))
	require.NoError(t, repo.SetMany(map[string]string{"siteName": "Two"}))

	setting, err := repo.Get("siteName")
	require.NoError(t, err)
	assert.Equal(t, "Two", setting.Value)

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
