package server

import (
	"folio/internal/models"
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Excerpt       string `json:"excerpt"`
	FeaturedImage string `json:"featured_image"`
	CategoryID    string `json:"category_id"`
	AuthorID      string `json:"author_id"`
	Published     bool   `json:"published"`
}

type updatePostRequest struct {
	Title         *string `json:"title"`
	Content       *string `json:"content"`
	Excerpt       *string `json:"excerpt"`
	FeaturedImage *string `json:"featured_image"`
	CategoryID    *string `json:"category_id"`
	AuthorID      *string `json:"author_id"`
	Published     *bool   `json:"published"`
}

// GetPosts handles GET /api/posts?q=&category=&published=&page=&per_page=
func (s *Server) GetPosts(c *fiber.Ctx) error {
	published, err := parseOptionalBool(c, "published")
	if err != nil {
		return respondError(c, err)
	}

	page, err := s.blogService.ListPosts(c.UserContext(), service.ListPostsInput{
		Query:      c.Query("q"),
		CategoryID: c.Query("category"),
		Published:  published,
		Page:       c.QueryInt("page", 1),
		PerPage:    c.QueryInt("per_page", 0),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(page)
}

// GetRecentPosts handles GET /api/posts/recent?limit=
func (s *Server) GetRecentPosts(c *fiber.Ctx) error {
	posts, err := s.blogService.RecentPosts(c.UserContext(), c.QueryInt("limit", service.DefaultRecentCount))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	detail, err := s.blogService.GetPost(c.UserContext(), c.Params("id"), requestSubject(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.blogService.CreatePost(c.UserContext(), service.CreatePostInput{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		CategoryID:    req.CategoryID,
		AuthorID:      req.AuthorID,
		Published:     req.Published,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var req updatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.blogService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		PostID:        c.Params("id"),
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		CategoryID:    req.CategoryID,
		AuthorID:      req.AuthorID,
		Published:     req.Published,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.blogService.DeletePost(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
