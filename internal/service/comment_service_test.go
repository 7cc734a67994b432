package service

import (
	"context"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_LikeThenUnlike(t *testing.T) {
	store, db := setupStore(t)
	svc := NewCommentService(store)
	ctx := context.Background()

	u := mustCreateUser(t, db, "u")
	post, err := NewPostService(store).CreatePost(ctx, CreatePostInput{UserID: u.ID, Title: "P", Content: "x"})
	require.NoError(t, err)
	c, err := svc.CreateComment(ctx, CreateCommentInput{UserID: u.ID, PostID: post.ID, Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "u", c.User.Username)

	likes, present, err := svc.ToggleLike(ctx, c.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, present)
	assert.Len(t, likes, 1)

	likes, present, err = svc.ToggleLike(ctx, c.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Empty(t, likes)
}

func TestCommentService_NotFound(t *testing.T) {
	store, _ := setupStore(t)
	svc := NewCommentService(store)
	ctx := context.Background()

	_, _, err := svc.ToggleLike(ctx, 77, 1)
	assert.Equal(t, "Comment not found", err.Error())

	_, err = svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 77, Content: "x"})
	assert.Equal(t, "Post not found", err.Error())

	_, err = svc.ListComments(ctx, 77)
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func TestCommentService_DeletePermissions(t *testing.T) {
	store, db := setupStore(t)
	svc := NewCommentService(store)
	ctx := context.Background()

	postAuthor := mustCreateUser(t, db, "postauthor")
	commenter := mustCreateUser(t, db, "commenter")
	stranger := mustCreateUser(t, db, "stranger")
	post, err := NewPostService(store).CreatePost(ctx, CreatePostInput{UserID: postAuthor.ID, Title: "P", Content: "x"})
	require.NoError(t, err)

	first, err := svc.CreateComment(ctx, CreateCommentInput{UserID: commenter.ID, PostID: post.ID, Content: "one"})
	require.NoError(t, err)
	second, err := svc.CreateComment(ctx, CreateCommentInput{UserID: commenter.ID, PostID: post.ID, Content: "two"})
	require.NoError(t, err)

	err = svc.DeleteComment(ctx, DeleteCommentInput{UserID: stranger.ID, CommentID: first.ID})
	assert.True(t, models.IsKind(err, models.KindForbidden))

	require.NoError(t, svc.DeleteComment(ctx, DeleteCommentInput{UserID: commenter.ID, CommentID: first.ID}))
	require.NoError(t, svc.DeleteComment(ctx, DeleteCommentInput{UserID: postAuthor.ID, CommentID: second.ID}))

	left, err := svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestCommentService_UpdateOnlyByAuthor(t *testing.T) {
	store, db := setupStore(t)
	svc := NewCommentService(store)
	ctx := context.Background()

	a := mustCreateUser(t, db, "a")
	b := mustCreateUser(t, db, "b")
	post, err := NewPostService(store).CreatePost(ctx, CreatePostInput{UserID: a.ID, Title: "P", Content: "x"})
	require.NoError(t, err)
	c, err := svc.CreateComment(ctx, CreateCommentInput{UserID: a.ID, PostID: post.ID, Content: "old"})
	require.NoError(t, err)

	_, err = svc.UpdateComment(ctx, UpdateCommentInput{UserID: b.ID, CommentID: c.ID, Content: "hijack"})
	assert.True(t, models.IsKind(err, models.KindForbidden))

	updated, err := svc.UpdateComment(ctx, UpdateCommentInput{UserID: a.ID, CommentID: c.ID, Content: "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Content)
}
