package server

import (
	"chirp/internal/cache"
	"chirp/internal/middleware"
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /api/likes/:postId
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("post", postID))
	}

	if err := s.engagementRepo.Like(c.Context(), userID, postID); err != nil {
		return respondServiceError(c, err)
	}
	cache.Invalidate(c.Context(), cache.PostKey(postID))

	actor := userID
	target := postID
	if err := s.notifier.Notify(c.Context(), &models.Notification{
		UserID:     post.UserID,
		ActorID:    &actor,
		Verb:       models.VerbLiked,
		TargetType: "post",
		TargetID:   &target,
	}); err != nil {
		middleware.Logger.ErrorContext(c.Context(), "failed to create like notification",
			"post_id", postID, "error", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Post liked"})
}

// UnlikePost handles DELETE /api/likes/:postId
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	if err := s.engagementRepo.Unlike(c.Context(), currentUserID(c), postID); err != nil {
		return respondServiceError(c, err)
	}
	cache.Invalidate(c.Context(), cache.PostKey(postID))
	return c.SendStatus(fiber.StatusNoContent)
}

// GetLikedPosts handles GET /api/likes
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	posts, err := s.engagementRepo.LikedPosts(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

// BookmarkPost handles POST /api/bookmarks/:postId
func (s *Server) BookmarkPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("post", postID))
	}

	if err := s.engagementRepo.Bookmark(c.Context(), currentUserID(c), postID); err != nil {
		return respondServiceError(c, err)
	}
	cache.Invalidate(c.Context(), cache.PostKey(postID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Post bookmarked"})
}

// UnbookmarkPost handles DELETE /api/bookmarks/:postId
func (s *Server) UnbookmarkPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	if err := s.engagementRepo.Unbookmark(c.Context(), currentUserID(c), postID); err != nil {
		return respondServiceError(c, err)
	}
	cache.Invalidate(c.Context(), cache.PostKey(postID))
	return c.SendStatus(fiber.StatusNoContent)
}

// GetBookmarkedPosts handles GET /api/bookmarks
func (s *Server) GetBookmarkedPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	posts, err := s.engagementRepo.BookmarkedPosts(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}
