package server

import "github.com/gofiber/fiber/v2"

type aboutFeature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type aboutContent struct {
	Name         string         `json:"name"`
	Tagline      string         `json:"tagline"`
	Overview     []string       `json:"overview"`
	Features     []aboutFeature `json:"features"`
	Technologies []string       `json:"technologies"`
}

var about = aboutContent{
	Name:    "Folio",
	Tagline: "A small blog platform with a JSON API.",
	Overview: []string{
		"Folio stores blog posts and categories and serves the queries a blog needs: listings, search, single posts and category browsing.",
		"Posts can live in memory, seeded from a fixed dataset, or in PostgreSQL.",
	},
	Features: []aboutFeature{
		{Title: "Search", Description: "Case-insensitive search over titles, content and excerpts."},
		{Title: "Categories", Description: "Browse posts by category with per-category post counts."},
		{Title: "Change events", Description: "Post changes are published on a Redis channel."},
		{Title: "Observability", Description: "Prometheus metrics, OpenTelemetry traces and structured logs."},
	},
	Technologies: []string{"Go", "Fiber", "GORM", "PostgreSQL", "Redis", "Prometheus", "OpenTelemetry"},
}

// GetAbout handles GET /api/about
func (s *Server) GetAbout(c *fiber.Ctx) error {
	return c.JSON(about)
}
