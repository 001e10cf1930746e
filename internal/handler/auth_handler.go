package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eventhub-api/internal/dto"
	"github.com/noah-isme/eventhub-api/internal/service"
	"github.com/noah-isme/eventhub-api/internal/utils"
)

// AuthHandler exposes registration and token endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires the authentication routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Post("/refresh", h.refresh)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	tokens, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("registration failed")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account registered", tokens)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	tokens, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("login failed")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "logged in", tokens)
}

func (h *AuthHandler) refresh(c *fiber.Ctx) error {
	var payload dto.RefreshRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	tokens, err := h.service.Refresh(c.UserContext(), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("token refresh failed")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "token refreshed", tokens)
}
