package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags handles GET /api/feature-flags. Flags are evaluated for
// the caller when a session is present.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Feature flags retrieved successfully",
		"flags":   s.featureFlags.Snapshot(callerID(c)),
	})
}
