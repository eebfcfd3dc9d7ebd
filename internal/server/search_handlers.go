package server

import (
	"strings"

	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Search handles GET /api/search?q=...&type=posts|users|all
func (s *Server) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}
	if len(query) > 100 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query too long"))
	}

	kind := c.Query("type", "all")
	p := parsePagination(c, 20)

	result := fiber.Map{}
	if kind == "posts" || kind == "all" {
		posts, err := s.postRepo.Search(c.Context(), query, p.Limit, p.Offset)
		if err != nil {
			return respondServiceError(c, err)
		}
		result["posts"] = posts
	}
	if kind == "users" || kind == "all" {
		users, err := s.userRepo.Search(c.Context(), query, p.Limit)
		if err != nil {
			return respondServiceError(c, err)
		}
		result["users"] = users
	}
	if len(result) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown search type"))
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
