package repository

import (
	"context"
	"testing"
	"time"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPostWithComment(t *testing.T, repo CommentRepository, postRepo PostRepository, authorID uint) (*models.Post, *models.Comment) {
	t.Helper()
	ctx := context.Background()
	post := &models.Post{Title: "t", Content: "c", UserID: authorID}
	require.NoError(t, postRepo.Create(ctx, post))
	comment := &models.Comment{Content: "first", UserID: authorID, PostID: post.ID}
	require.NoError(t, repo.Create(ctx, comment))
	return post, comment
}

func TestCommentRepository_ListByPostOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	u := createUser(t, db, "u")
	post, first := seedPostWithComment(t, repo, NewPostRepository(db), u.ID)
	second := &models.Comment{Content: "second", UserID: u.ID, PostID: post.ID, CreatedAt: first.CreatedAt.Add(time.Second)}
	require.NoError(t, repo.Create(ctx, second))

	comments, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)
	assert.Equal(t, "u", comments[0].User.Username)
}

func TestCommentRepository_DeleteRemovesLikes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	u := createUser(t, db, "u")
	fan := createUser(t, db, "fan")
	_, comment := seedPostWithComment(t, repo, NewPostRepository(db), u.ID)

	require.NoError(t, repo.AddLike(ctx, &models.CommentLike{CommentID: comment.ID, UserID: fan.ID, CreatedAt: time.Now()}))
	got, err := repo.GetByID(ctx, comment.ID)
	require.NoError(t, err)
	require.Len(t, got.Likes, 1)

	require.NoError(t, repo.Delete(ctx, comment.ID))

	var likes int64
	db.Model(&models.CommentLike{}).Count(&likes)
	assert.Zero(t, likes)

	_, err = repo.GetByID(ctx, comment.ID)
	assert.True(t, models.IsKind(err, models.KindNotFound))
	assert.True(t, models.IsKind(repo.Delete(ctx, comment.ID), models.KindNotFound))
}

func TestCommentRepository_DeleteByPostsAndUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "a")
	b := createUser(t, db, "b")
	postA, commentOnA := seedPostWithComment(t, repo, postRepo, a.ID)
	postB, _ := seedPostWithComment(t, repo, postRepo, b.ID)

	byA := &models.Comment{Content: "from a", UserID: a.ID, PostID: postB.ID}
	require.NoError(t, repo.Create(ctx, byA))
	require.NoError(t, repo.AddLike(ctx, &models.CommentLike{CommentID: commentOnA.ID, UserID: b.ID}))

	require.NoError(t, repo.DeleteByPosts(ctx, []uint{postA.ID}))
	onA, err := repo.ListByPost(ctx, postA.ID)
	require.NoError(t, err)
	assert.Empty(t, onA)

	var likes int64
	db.Model(&models.CommentLike{}).Count(&likes)
	assert.Zero(t, likes)

	require.NoError(t, repo.DeleteByUser(ctx, a.ID))
	onB, err := repo.ListByPost(ctx, postB.ID)
	require.NoError(t, err)
	require.Len(t, onB, 1)
	assert.Equal(t, b.ID, onB[0].UserID)
}
