package server

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	stdouttrace "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mcpcore/server/internal/config"
)

// installDebugTracing registers a TracerProvider that writes every span
// dispatcher.Dispatcher records to stderr. Outside debug mode the global
// provider is left at its default no-op implementation, so tracer.Start
// calls throughout the dispatcher stay effectively free. Spans go to
// stderr rather than stdout because the stdio carrier's wire traffic
// already owns stdout.
func installDebugTracing(cfg *config.Config) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("server: building stdout trace exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.ServerName),
		attribute.String("service.version", cfg.ServerVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("server: building trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
