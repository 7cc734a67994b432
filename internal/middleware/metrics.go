package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the HTTP metrics collector. Collectors register on the
// default Prometheus registry, so only the first call builds one and later
// calls (one per test server) share it.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records request count and latency per route.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
