package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 12, Total: 0, TotalPages: 0}, NewPagination(1, 12, 0))
	assert.Equal(t, 3, NewPagination(1, 10, 21).TotalPages)
	assert.Equal(t, 2, NewPagination(5, 10, 20).TotalPages)
}

func TestOptionalUintDistinguishesNullFromMissing(t *testing.T) {
	var req UpdatePostRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x"}`), &req))
	assert.False(t, req.CategoryID.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"categoryId":null}`), &req))
	assert.True(t, req.CategoryID.Set)
	assert.Nil(t, req.CategoryID.Value)

	req = UpdatePostRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"categoryId":7}`), &req))
	require.NotNil(t, req.CategoryID.Value)
	assert.Equal(t, uint(7), *req.CategoryID.Value)

	assert.Error(t, json.Unmarshal([]byte(`{"categoryId":"seven"}`), &req))
}

func TestStatusParsing(t *testing.T) {
	status, ok := ParsePostStatus(" published ")
	assert.True(t, ok)
	assert.Equal(t, PostStatusPublished, status)

	_, ok = ParsePostStatus("LIVE")
	assert.False(t, ok)

	comment, ok := ParseCommentStatus("spam")
	assert.True(t, ok)
	assert.Equal(t, CommentStatusSpam, comment)
}

func TestUserSummaryHidesPrivateFields(t *testing.T) {
	var nilUser *User
	assert.Nil(t, nilUser.Summary())

	user := &User{ID: 3, Name: "Ann", Email: "ann@example.com", Password: "hash", Role: "EDITOR"}
	payload, err := json.Marshal(user.Summary())
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "ann@example.com")
	assert.Contains(t, string(payload), `"role":"EDITOR"`)
}
