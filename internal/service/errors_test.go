package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNotFoundOrKeepsMessageLiteral(t *testing.T) {
	err := notFoundOr(gorm.ErrRecordNotFound, "Post 100% gone", "load post")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Post 100% gone", err.Error())

	err = notFoundOr(errors.New("connection reset"), "Post not found", "load post")
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.False(t, IsKnown(err))
	assert.Equal(t, "failed to load post: connection reset", err.Error())
}
