package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eventhub-api/internal/dto"
	"github.com/noah-isme/eventhub-api/internal/middleware"
	"github.com/noah-isme/eventhub-api/internal/models"
	"github.com/noah-isme/eventhub-api/internal/service"
	"github.com/noah-isme/eventhub-api/internal/utils"
)

// ProfileHandler exposes the caller's own account endpoints.
type ProfileHandler struct {
	service service.ProfileService
	logger  zerolog.Logger
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(service service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register wires the profile routes.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Get("/me", h.me)
	router.Put("/me", h.update)
	router.Get("/me/events", middleware.RequireRole(models.RoleStudent), h.myEvents)
}

func (h *ProfileHandler) me(c *fiber.Ctx) error {
	result, err := h.service.Me(c.UserContext(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to load profile")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "profile retrieved", result)
}

func (h *ProfileHandler) update(c *fiber.Ctx) error {
	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Update(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to update profile")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "profile updated", result)
}

func (h *ProfileHandler) myEvents(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	result, err := h.service.MyEvents(c.UserContext(), userIDFromContext(c), page, pageSize)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to list registrations")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "registered events retrieved", result)
}
