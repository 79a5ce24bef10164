package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags returns configured feature flags and their state for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.blogService.FeatureFlags(requestSubject(c)),
	})
}
