package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ratiba_http_requests_total",
		Help: "HTTP requests processed, partitioned by method, path and status code.",
	}, []string{"method", "path", "code"})

	conflictChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ratiba_conflict_checks_total",
		Help: "Lecture conflict checks, partitioned by verdict.",
	}, []string{"verdict"})

	registrationValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ratiba_registration_validations_total",
		Help: "Registration rule chain evaluations, partitioned by verdict.",
	}, []string{"verdict"})
)

func requestMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			// resolve errors here so the recorded status code is final
			if err := next(ctx); err != nil {
				ctx.Error(err)
			}
			requestsTotal.WithLabelValues(
				ctx.Request().Method,
				ctx.Path(),
				strconv.Itoa(ctx.Response().Status),
			).Inc()
			return nil
		}
	}
}

func countConflictCheck(hasConflicts bool) {
	verdict := "clear"
	if hasConflicts {
		verdict = "conflict"
	}
	conflictChecksTotal.WithLabelValues(verdict).Inc()
}

func countRegistrationValidation(valid bool) {
	verdict := "valid"
	if !valid {
		verdict = "invalid"
	}
	registrationValidationsTotal.WithLabelValues(verdict).Inc()
}
