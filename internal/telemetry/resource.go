package telemetry

import (
	"context"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/devfolio-io/devfolio/internal/config"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// Version overrides the module version read from build info.
// Set it with -ldflags "-X github.com/devfolio-io/devfolio/internal/telemetry.Version=v1.2.3".
var Version string

// ServiceVersion is the service.version attribute on traces and metrics.
func ServiceVersion() string {
	if Version != "" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "devel"
}

// newResource is shared by the tracer and meter providers so both report the same identity.
func newResource(ctx context.Context, cfg *config.Config) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.App.Name),
			semconv.ServiceVersion(ServiceVersion()),
			semconv.DeploymentEnvironment(cfg.App.Env),
			semconv.ProcessRuntimeVersion(runtime.Version()),
		),
	)
}

// otlpTarget turns the configured endpoint into the host:port the gRPC exporters dial.
// An explicit scheme decides transport security; otherwise enableTLS does.
func otlpTarget(endpoint string, enableTLS bool) (string, bool) {
	secure := enableTLS
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint, secure = strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		endpoint, secure = strings.TrimPrefix(endpoint, "http://"), false
	}
	return strings.TrimSuffix(endpoint, "/"), secure
}
