package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eventhub-api/internal/middleware"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// parsePagination reads page/pageSize query parameters with sane defaults.
func parsePagination(c *fiber.Ctx) (int, int, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return 0, 0, err
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return 0, 0, err
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return page, pageSize, nil
}

// userIDFromContext returns the authenticated subject bound by JWTProtected.
func userIDFromContext(c *fiber.Ctx) uuid.UUID {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
		if raw, ok := v.(string); ok {
			if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
				return id
			}
		}
	}
	return uuid.Nil
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Params(name)))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}
