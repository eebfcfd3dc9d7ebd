package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name.
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chirp_redis_errors_total",
		Help: "Total number of Redis command errors.",
	},
	[]string{"command"},
)

// NotificationsCreated counts notifications fanned out by verb.
var NotificationsCreated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chirp_notifications_created_total",
		Help: "Total number of notifications created, labeled by verb.",
	},
	[]string{"verb"},
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
