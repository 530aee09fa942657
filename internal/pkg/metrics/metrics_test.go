package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	reg := NewRegistry()
	h := NewHTTP(reg)

	app := fiber.New()
	app.Use(h.Middleware())
	app.Get("/listings/:uuid", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", Handler(reg))

	for _, path := range []string{"/listings/a", "/listings/b"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(h.requests.WithLabelValues("GET", "/listings/:uuid", "200")))

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `scrapmarket_http_requests_total{method="GET",route="/listings/:uuid",status="200"} 2`)
	assert.Contains(t, string(body), "go_goroutines")
}
