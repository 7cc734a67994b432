package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var in service.CreatePostInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.UserID = callerID(c)

	post, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Post created successfully", "post", post)
}

// ListPosts handles GET /api/posts
func (s *Server) ListPosts(c *fiber.Ctx) error {
	page := parsePagination(c)
	posts, err := s.postService.ListPosts(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Posts retrieved successfully", "posts", posts)
}

// GetFeed handles GET /api/posts/feed: posts by the caller and everyone
// they follow, newest first.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page := parsePagination(c)
	posts, err := s.postService.Feed(c.UserContext(), callerID(c), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Feed retrieved successfully", "posts", posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Post retrieved successfully", "post", post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.UpdatePostInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.UserID, in.PostID = callerID(c), id

	post, err := s.postService.UpdatePost(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Post updated successfully", "post", post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	in := service.DeletePostInput{UserID: callerID(c), PostID: id}
	if err := s.postService.DeletePost(c.UserContext(), in); err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Post deleted successfully", "", nil)
}

// LikePost handles POST /api/posts/:id/like
// @Summary Like or unlike a post
// @Description Adds the caller to the post's likes, or removes them if already present.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string,likes=[]models.PostLike}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	likes, wasLiked, err := s.postService.ToggleLike(c.UserContext(), id, callerID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	message := "Post liked"
	if wasLiked {
		message = "Post unliked"
	}
	return respond(c, fiber.StatusOK, message, "likes", likes)
}
