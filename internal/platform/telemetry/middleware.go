package telemetry

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// Middleware records request durations against the matched route, so
// /admissions/:id stays one series regardless of the id.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			httpRequestDuration.
				WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
