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

// EventHandler exposes event lifecycle and registration endpoints.
type EventHandler struct {
	service service.EventService
	logger  zerolog.Logger
}

// NewEventHandler constructs the handler.
func NewEventHandler(service service.EventService, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger.With().Str("component", "event_handler").Logger(),
	}
}

// Register wires the event routes.
func (h *EventHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", middleware.RequireRole(models.RoleManager), h.create)
	router.Put("/:id", middleware.RequireRole(models.RoleManager, models.RoleDean), h.update)
	router.Delete("/:id", middleware.RequireRole(models.RoleManager, models.RoleDean), h.delete)
	router.Post("/:id/register", middleware.RequireRole(models.RoleStudent), h.register)
	router.Delete("/:id/register", middleware.RequireRole(models.RoleStudent), h.unregister)
	router.Get("/:id/students", middleware.RequireRole(models.RoleManager, models.RoleDean), h.students)
}

func (h *EventHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	result, err := h.service.List(c.UserContext(), userIDFromContext(c), page, pageSize)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to list events")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "events retrieved", result)
}

func (h *EventHandler) get(c *fiber.Ctx) error {
	eventID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	result, err := h.service.Get(c.UserContext(), userIDFromContext(c), eventID)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to get event")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "event retrieved", result)
}

func (h *EventHandler) create(c *fiber.Ctx) error {
	var payload dto.EventCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Create(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to create event")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "event created", result)
}

func (h *EventHandler) update(c *fiber.Ctx) error {
	eventID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	var payload dto.EventUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Update(c.UserContext(), userIDFromContext(c), eventID, payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to update event")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "event updated", result)
}

func (h *EventHandler) delete(c *fiber.Ctx) error {
	eventID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	if err := h.service.Delete(c.UserContext(), userIDFromContext(c), eventID); err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to delete event")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "event deleted", nil)
}

func (h *EventHandler) register(c *fiber.Ctx) error {
	eventID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	if err := h.service.Register(c.UserContext(), userIDFromContext(c), eventID); err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("registration failed")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "registered for event", nil)
}

func (h *EventHandler) unregister(c *fiber.Ctx) error {
	eventID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	if err := h.service.Unregister(c.UserContext(), userIDFromContext(c), eventID); err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("unregistration failed")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "unregistered from event", nil)
}

func (h *EventHandler) students(c *fiber.Ctx) error {
	eventID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	result, err := h.service.Students(c.UserContext(), userIDFromContext(c), eventID)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to list registrants")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "registered students retrieved", result)
}
