package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListUsers handles GET /api/users?q=&limit=&offset=
func (s *Server) ListUsers(c *fiber.Ctx) error {
	page := parsePagination(c)
	users, err := s.userService.ListUsers(c.UserContext(), c.Query("q"), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Users retrieved successfully", "users", users)
}

// GetUser handles GET /api/users/:id
// @Summary Get user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string,user=models.User}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetProfile(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "User retrieved successfully", "user", user)
}

// UpdateUser handles PUT /api/users/:id
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.UpdateUserInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.ActorID, in.UserID = callerID(c), id

	user, err := s.userService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "User updated successfully", "user", user)
}

// DeleteUser handles DELETE /api/users/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.userService.DeleteUser(c.UserContext(), callerID(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "User deleted successfully", "", nil)
}

// ToggleFollow handles POST /api/users/:id/follow
// @Summary Follow or unfollow a user
// @Description Follows the user, or unfollows when the caller already follows them.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [post]
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	target, wasFollowing, err := s.followService.ToggleFollow(c.UserContext(), callerID(c), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	message := "User followed successfully"
	if wasFollowing {
		message = "User unfollowed successfully"
	}
	return respond(c, fiber.StatusOK, message, "user", target)
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	users, err := s.followService.Followers(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Followers retrieved successfully", "users", users)
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	users, err := s.followService.Following(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Following retrieved successfully", "users", users)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c)
	posts, err := s.postService.ListUserPosts(c.UserContext(), id, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Posts retrieved successfully", "posts", posts)
}
