package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"SectorPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover returns recovery middleware that logs panics through the
// application logger instead of crashing the ops server.
func Recover(l *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					l.Error("http panic", logger.Error(err), logger.String("stack", string(debug.Stack())))
					_ = c.JSON(http.StatusInternalServerError, map[string]interface{}{
						"status":  http.StatusInternalServerError,
						"message": "Internal Server Error",
					})
				}
			}()
			return next(c)
		}
	}
}
