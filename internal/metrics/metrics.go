package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pocketlog_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pocketlog_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Logins counts completed login flows; result is "new_user", "returning_user" or "failed".
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pocketlog_logins_total",
		Help: "Login flows by result.",
	}, []string{"result"})

	SpendingCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketlog_spending_created_total",
		Help: "Ledger entries created.",
	})

	BudgetExceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketlog_budget_exceeded_total",
		Help: "spending.created events that left a monthly budget exceeded.",
	})
)

// Middleware records request count and latency per matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
