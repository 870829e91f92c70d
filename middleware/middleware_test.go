package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/labstack/echo/v4"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/middleware"
)

func TestMiddleware(t *testing.T) {
	m := middleware.InitMiddleware(&domain.CORSConfig{
		AllowedOrigin:  "*",
		AllowedHeaders: "Origin, Accept",
		AllowedMethods: "GET",
	})

	var requestPath string
	e := echo.New()
	e.Use(m.CORS)
	e.Use(m.InstrumentMiddleware)
	e.Use(m.TraceWithParamsMiddleware("poolrouter-test"))
	e.GET("/pools", func(c echo.Context) error {
		requestPath, _ = domain.GetURLPathFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pools?IDs=1,2", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin, Accept", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "GET", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "/pools", requestPath)
}

func TestGetURLPathFromContext_Unknown(t *testing.T) {
	requestPath, err := domain.GetURLPathFromContext(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "unknown", requestPath)
}
