package server

import (
	"strings"

	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

const maxMessageLen = 2000

// SendMessage handles POST /api/messages/:userId
func (s *Server) SendMessage(c *fiber.Ctx) error {
	receiverID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	senderID := currentUserID(c)
	if receiverID == senderID {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Cannot message yourself"))
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	content := strings.TrimSpace(req.Content)
	if content == "" || len(content) > maxMessageLen {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Message content must be 1-2000 characters"))
	}

	receiver, err := s.userRepo.GetByID(c.Context(), receiverID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if receiver == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("user", receiverID))
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.messageRepo.Create(c.Context(), message); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetConversation handles GET /api/messages/:userId
func (s *Server) GetConversation(c *fiber.Ctx) error {
	otherID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)
	messages, err := s.messageRepo.Conversation(c.Context(), currentUserID(c), otherID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(messages)
}

// MarkConversationRead handles POST /api/messages/:userId/read
func (s *Server) MarkConversationRead(c *fiber.Ctx) error {
	otherID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	updated, err := s.messageRepo.MarkConversationRead(c.Context(), currentUserID(c), otherID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"marked_read": updated})
}
