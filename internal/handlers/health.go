package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

// Health reports "healthy" when every check passes and 503 with the failing
// services otherwise.
func Health(checks map[string]HealthCheck) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := "healthy"
		code := http.StatusOK
		services := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				c.Logger().Errorf("health check %s: %v", name, err)
				services[name] = "down"
				status, code = "degraded", http.StatusServiceUnavailable
				continue
			}
			services[name] = "up"
		}

		return c.JSON(code, echo.Map{
			"status":   status,
			"service":  "blog-api",
			"services": services,
		})
	}
}
