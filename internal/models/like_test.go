package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeEntries_JSONShape(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []any{
		PostLike{ID: 3, UserID: 7, PostID: 9, CreatedAt: at},
		CommentLike{ID: 4, UserID: 7, CommentID: 11, CreatedAt: at},
	}
	for _, e := range entries {
		raw, err := json.Marshal(e)
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, map[string]any{"user": float64(7), "created_at": "2026-03-01T12:00:00Z"}, got)
	}
}
