package server

import (
	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RequestPasswordReset handles POST /api/auth/password/reset.
// The response is the same whether or not the email exists.
func (s *Server) RequestPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email is required"))
	}

	if err := s.accountService.RequestPasswordReset(c.Context(), req.Email); err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": service.ResetRequestedMessage,
	})
}

// ConfirmPasswordReset handles POST /api/auth/password/reset/confirm
func (s *Server) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email       string `json:"email"`
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Token == "" || req.NewPassword == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email, token, and new password are required"))
	}

	if err := s.accountService.ConfirmPasswordReset(c.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Password has been reset",
	})
}

// VerifyEmail handles POST /api/auth/verify-email
func (s *Server) VerifyEmail(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
		Key   string `json:"key"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Key == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and key are required"))
	}

	if err := s.accountService.VerifyEmail(c.Context(), req.Email, req.Key); err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Email verified",
	})
}

// ResendVerification handles POST /api/auth/verify-email/resend
func (s *Server) ResendVerification(c *fiber.Ctx) error {
	if err := s.accountService.ResendVerification(c.Context(), currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Verification email sent",
	})
}
