package apidocs

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecIsValid(t *testing.T) {
	doc, err := Load(context.Background())
	require.NoError(t, err)

	for _, path := range []string{
		"/billing/checkout",
		"/billing/sync",
		"/billing/setup-intent",
		"/billing/attach-payment-method",
		"/billing/cancel",
		"/billing/entitlement",
		"/listings",
		"/listings/{uuid}",
		"/devices",
		"/offers/received",
		"/notifications/unread-count",
	} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
}

func TestHandlerServesUI(t *testing.T) {
	app := fiber.New()
	app.Use(Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/docs/api/v1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/docs/api/openapi.yml", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
