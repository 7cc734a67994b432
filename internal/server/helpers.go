package server

import (
	"errors"
	"strings"
	"unicode"

	"agora/internal/middleware"
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten means a helper already committed the response.
// Handlers return nil when they see it so the ErrorHandler does not
// overwrite the body.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	defaultPageSize    = 20
	maxPaginationLimit = 100
)

// parsePagination reads limit and offset, clamping both into range.
func parsePagination(c *fiber.Ctx) Pagination {
	limit := c.QueryInt("limit", defaultPageSize)
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPaginationLimit)
	return Pagination{Limit: limit, Offset: max(c.QueryInt("offset", 0), 0)}
}

// parseID extracts a route parameter as a positive uint. On failure it
// writes a 400 and returns errResponseWritten.
// "id" -> "Invalid ID", "userId" -> "Invalid user ID".
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if prefix, ok := strings.CutSuffix(param, "Id"); ok {
		return strings.ToLower(strings.Join(splitCamel(prefix), " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// parseBody decodes the JSON body into dst, writing a 400 on failure.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// callerID returns the authenticated user. Routes using it sit behind
// Authenticator.Required, so the zero value only appears on optional routes.
func callerID(c *fiber.Ctx) uint {
	id, _ := middleware.CurrentUserID(c)
	return id
}

// respond writes a success envelope: {message, <key>: value}.
func respond(c *fiber.Ctx, status int, message, key string, value any) error {
	body := fiber.Map{"message": message}
	if key != "" {
		body[key] = value
	}
	return c.Status(status).JSON(body)
}
