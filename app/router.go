package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// TestEnvironmentFlag disables router metrics when set to TestEnvironmentValue.
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// NewMessageRouter builds the shared Watermill router every module
// registers its handlers on.
func NewMessageRouter(logger *slog.Logger, registry *prometheus.Registry) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 10 * time.Second,
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue
	if registry != nil && !inTestEnv {
		logger.Info("Adding Prometheus router metrics middleware")
		builder := metrics.NewPrometheusMetricsBuilder(registry, "", "")
		builder.AddPrometheusRouterMetrics(router)
	} else {
		logger.Info("Skipping Prometheus router metrics middleware",
			slog.Bool("registry_provided", registry != nil),
			slog.Bool("in_test_env", inTestEnv),
		)
	}

	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			Logger:          watermill.NewSlogLogger(logger),
		}.Middleware,
	)

	return router, nil
}
