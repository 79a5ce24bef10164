package server

import "github.com/gofiber/fiber/v2"

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	summaries, err := s.blogService.CategorySummaries(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summaries)
}

// GetCategoryPosts handles GET /api/categories/:id/posts
func (s *Server) GetCategoryPosts(c *fiber.Ctx) error {
	posts, err := s.blogService.PostsByCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}
