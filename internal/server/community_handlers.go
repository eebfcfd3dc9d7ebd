package server

import (
	"strings"

	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCommunity handles POST /api/communities
func (s *Server) CreateCommunity(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 100 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Community name must be 1-100 characters"))
	}

	community := &models.Community{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		OwnerID:     currentUserID(c),
	}
	if err := s.communityRepo.Create(c.Context(), community); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(community)
}

// GetCommunities handles GET /api/communities
func (s *Server) GetCommunities(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	communities, err := s.communityRepo.List(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(communities)
}

// GetCommunity handles GET /api/communities/:id
func (s *Server) GetCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	community, err := s.communityRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	if community == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("community", id))
	}
	return c.Status(fiber.StatusOK).JSON(community)
}

// GetCommunityByName handles GET /api/communities/by-name/:name
func (s *Server) GetCommunityByName(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Params("name"))
	if name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Community name is required"))
	}
	community, err := s.communityRepo.GetByName(c.Context(), name)
	if err != nil {
		return respondServiceError(c, err)
	}
	if community == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("community", name))
	}
	return c.Status(fiber.StatusOK).JSON(community)
}

// JoinCommunity handles POST /api/communities/:id/join. Joining twice is
// a no-op, not an error.
func (s *Server) JoinCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	community, err := s.communityRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	if community == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("community", id))
	}

	created, err := s.communityRepo.Join(c.Context(), id, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"message": "Joined community"})
}

// LeaveCommunity handles DELETE /api/communities/:id/join
func (s *Server) LeaveCommunity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.communityRepo.Leave(c.Context(), id, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCommunityPosts handles GET /api/communities/:id/posts
func (s *Server) GetCommunityPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)
	posts, err := s.postRepo.List(c.Context(), repository.PostFilter{CommunityID: id}, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

// CreateCommunityPost handles POST /api/communities/:id/posts. The
// community comes from the path and the author is always the requester.
func (s *Server) CreateCommunityPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content      string `json:"content"`
		ParentPostID *uint  `json:"parent_post_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Create(c.Context(), service.CreatePostInput{
		UserID:       currentUserID(c),
		Content:      req.Content,
		ParentPostID: req.ParentPostID,
		CommunityID:  &id,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetCommunityMembers handles GET /api/communities/:id/members
func (s *Server) GetCommunityMembers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)
	members, err := s.communityRepo.Members(c.Context(), id, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(members)
}
