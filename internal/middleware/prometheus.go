package middleware

import (
	"errors"
	"strconv"
	"time"

	"template_hub/internal/metrics"

	"github.com/labstack/echo/v4"
)

// PrometheusMetrics считает запросы к серверу представлений по шаблону маршрута,
// чтобы id шаблонов и проектов не раздували метки
func PrometheusMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Path()
		if path == "/metrics" {
			return next(c)
		}
		if path == "" {
			path = "unmatched"
		}

		start := time.Now()
		err := next(c)

		status := c.Response().Status
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
		}

		method := c.Request().Method
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		return err
	}
}
