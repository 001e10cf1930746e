package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eventhub-api/internal/dto"
	"github.com/noah-isme/eventhub-api/internal/service"
	"github.com/noah-isme/eventhub-api/internal/utils"
)

// CompanyHandler exposes the organizational directory endpoints.
type CompanyHandler struct {
	service service.CompanyService
	logger  zerolog.Logger
}

// NewCompanyHandler constructs the handler.
func NewCompanyHandler(service service.CompanyService, logger zerolog.Logger) *CompanyHandler {
	return &CompanyHandler{
		service: service,
		logger:  logger.With().Str("component", "company_handler").Logger(),
	}
}

// RegisterPublic wires the unauthenticated directory listing used by the
// sign-up form.
func (h *CompanyHandler) RegisterPublic(router fiber.Router) {
	router.Get("", h.listPublic)
}

// Register wires the authenticated directory routes.
func (h *CompanyHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *CompanyHandler) listPublic(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	result, err := h.service.ListForRegistration(c.UserContext(), page, pageSize)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list companies")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "companies retrieved", result)
}

func (h *CompanyHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	result, err := h.service.List(c.UserContext(), userIDFromContext(c), page, pageSize)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to list companies")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "companies retrieved", result)
}

func (h *CompanyHandler) get(c *fiber.Ctx) error {
	companyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid company id")
	}

	result, err := h.service.Get(c.UserContext(), userIDFromContext(c), companyID)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to get company")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "company retrieved", result)
}

func (h *CompanyHandler) create(c *fiber.Ctx) error {
	var payload dto.CompanyCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Create(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to create company")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "company created", result)
}

func (h *CompanyHandler) update(c *fiber.Ctx) error {
	companyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid company id")
	}

	var payload dto.CompanyUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Update(c.UserContext(), userIDFromContext(c), companyID, payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to update company")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "company updated", result)
}

func (h *CompanyHandler) delete(c *fiber.Ctx) error {
	companyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid company id")
	}

	if err := h.service.Delete(c.UserContext(), userIDFromContext(c), companyID); err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to delete company")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "company deleted", nil)
}
