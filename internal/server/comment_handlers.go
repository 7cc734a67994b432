package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.CreateCommentInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.UserID, in.PostID = callerID(c), postID

	comment, err := s.commentService.CreateComment(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Comment created successfully", "comment", comment)
}

// ListComments handles GET /api/posts/:id/comments
func (s *Server) ListComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.commentService.ListComments(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Comments retrieved successfully", "comments", comments)
}

// UpdateComment handles PUT /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.UpdateCommentInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.UserID, in.CommentID = callerID(c), id

	comment, err := s.commentService.UpdateComment(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Comment updated successfully", "comment", comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	in := service.DeleteCommentInput{UserID: callerID(c), CommentID: id}
	if err := s.commentService.DeleteComment(c.UserContext(), in); err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Comment deleted successfully", "", nil)
}

// LikeComment handles POST /api/comments/:id/like
func (s *Server) LikeComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	likes, wasLiked, err := s.commentService.ToggleLike(c.UserContext(), id, callerID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	message := "Comment liked"
	if wasLiked {
		message = "Comment unliked"
	}
	return respond(c, fiber.StatusOK, message, "likes", likes)
}
