package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Index greets callers at the API root.
func Index(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "API is running",
		"version": "1.0.0",
	})
}

// Health reports a static healthy payload. Load balancers and
// monitoring systems poll it to verify the service is up.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"message": "API is running normally",
		"version": "1.0.0",
	})
}

// Status returns a more detailed view including a database ping.
func Status(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		dbState := "connected"
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			dbState = "unreachable"
		}
		return c.JSON(http.StatusOK, echo.Map{
			"status":   "healthy",
			"api":      "running",
			"database": dbState,
			"auth":     "enabled",
		})
	}
}
