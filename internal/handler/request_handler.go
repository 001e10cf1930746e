package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eventhub-api/internal/dto"
	"github.com/noah-isme/eventhub-api/internal/service"
	"github.com/noah-isme/eventhub-api/internal/utils"
)

// RequestHandler exposes the membership approval workflow endpoints.
type RequestHandler struct {
	service service.ApprovalService
	logger  zerolog.Logger
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(service service.ApprovalService, logger zerolog.Logger) *RequestHandler {
	return &RequestHandler{
		service: service,
		logger:  logger.With().Str("component", "request_handler").Logger(),
	}
}

// Register wires the approval routes.
func (h *RequestHandler) Register(router fiber.Router) {
	router.Get("/pending", h.listPending)
	router.Post("/:id/approve", h.approve)
	router.Post("/:id/reject", h.reject)
}

func (h *RequestHandler) listPending(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	result, err := h.service.ListPending(c.UserContext(), userIDFromContext(c), page, pageSize)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to list pending requests")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "pending requests retrieved", result)
}

func (h *RequestHandler) approve(c *fiber.Ctx) error {
	requestID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request id")
	}

	if err := h.service.Approve(c.UserContext(), userIDFromContext(c), requestID); err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("approval failed")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "request approved", nil)
}

func (h *RequestHandler) reject(c *fiber.Ctx) error {
	requestID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request id")
	}

	var payload dto.RejectUserRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.Reject(c.UserContext(), userIDFromContext(c), requestID, payload); err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("rejection failed")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "request rejected", nil)
}
