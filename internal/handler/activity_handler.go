package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eventhub-api/internal/repository"
	"github.com/noah-isme/eventhub-api/internal/service"
	"github.com/noah-isme/eventhub-api/internal/utils"
)

// ActivityHandler exposes the audit trail to the dean's office.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register wires the activity routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	filter := repository.ActivityLogFilter{
		Page:       page,
		PageSize:   pageSize,
		Action:     strings.TrimSpace(c.Query("action")),
		EntityType: strings.TrimSpace(c.Query("entityType")),
	}
	if raw := strings.TrimSpace(c.Query("actorId")); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid actor id")
		}
		filter.ActorID = &actorID
	}

	result, err := h.service.List(c.UserContext(), userIDFromContext(c), filter)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to list activity")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "activity retrieved", result)
}
