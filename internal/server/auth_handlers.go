package server

import (
	"time"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup
// @Summary User signup
// @Description Register a new account and start a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SignupInput true "Signup request"
// @Success 201 {object} object{message=string,token=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var in service.SignupInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	user, err := s.authService.Signup(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return s.startSession(c, fiber.StatusCreated, "User registered successfully", user)
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Login credentials"
// @Success 200 {object} object{message=string,token=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var in service.LoginInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	user, err := s.authService.Login(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return s.startSession(c, fiber.StatusOK, "Logged in successfully", user)
}

func (s *Server) startSession(c *fiber.Ctx, status int, message string, user *models.User) error {
	token, err := s.auth.Issue(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.auth.TTL()),
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"token":   token,
		"user":    user,
	})
}

// Logout handles POST /api/auth/logout. The cookie is always cleared; a
// valid token is also revoked until it would have expired.
func (s *Server) Logout(c *fiber.Ctx) error {
	if token := middleware.ExtractToken(c); token != "" {
		if claims, err := s.auth.Parse(c.UserContext(), token); err == nil {
			if err := s.auth.Revoke(c.UserContext(), claims); err != nil {
				return models.RespondWithError(c, models.NewInternalError(err))
			}
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return respond(c, fiber.StatusOK, "Logged out successfully", "", nil)
}

// Me handles GET /api/auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), callerID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "User retrieved successfully", "user", user)
}
