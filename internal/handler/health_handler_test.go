package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eventhub-api/internal/config"
	"github.com/noah-isme/eventhub-api/internal/utils"
)

func TestHealthCheck(t *testing.T) {
	app := fiber.New()
	app.Get("/health", HealthCheck(config.Config{AppName: "eventhub-api", AppEnv: "test"}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.True(t, body.Success)

	payload, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "ok", payload["status"])
	require.Equal(t, "eventhub-api", payload["service"])
	require.Equal(t, "test", payload["environment"])
}
