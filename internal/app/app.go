// Package app wires the services of the pairing server into a dependency container.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/do/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/nfrund/pairchat/internal/config"
	"github.com/nfrund/pairchat/internal/pairing"
	"github.com/nfrund/pairchat/internal/pubsub"
	"github.com/nfrund/pairchat/internal/server"
	"github.com/nfrund/pairchat/internal/stats"
)

// tracing owns the pubsub tracer and flushes its exporter on shutdown.
type tracing struct {
	tracer  trace.Tracer
	cleanup func()
}

func (t *tracing) Shutdown() {
	t.cleanup()
}

// bus is the in-memory message bus, closed on shutdown.
type bus struct {
	*pubsub.WatermillBridge
}

func (b *bus) Shutdown() error {
	return b.Close()
}

// App is the assembled server.
type App struct {
	injector *do.RootScope
}

// New registers every service provider. Services are built lazily on first use.
func New(ctx context.Context, cfg *config.Config) *App {
	injector := do.New()

	do.ProvideValue(injector, cfg)

	do.Provide(injector, func(i do.Injector) (*tracing, error) {
		tc := do.MustInvoke[*config.Config](i).Tracing
		tracer, cleanup, err := pubsub.SetupOTel(ctx, tc)
		if err != nil {
			return nil, fmt.Errorf("setup tracing: %w", err)
		}
		if tc.Enabled {
			slog.Info("Pubsub tracing enabled", "service", tc.ServiceName, "zipkin_url", tc.ZipkinURL)
		}
		return &tracing{tracer: tracer, cleanup: cleanup}, nil
	})

	do.Provide(injector, func(i do.Injector) (*bus, error) {
		t := do.MustInvoke[*tracing](i)
		return &bus{pubsub.NewWatermillBridgeWithTracer(t.tracer)}, nil
	})

	do.Provide(injector, func(i do.Injector) (*pairing.Engine, error) {
		b := do.MustInvoke[*bus](i)
		return pairing.NewEngine(pairing.WithPublisher(b)), nil
	})

	do.Provide(injector, func(i do.Injector) (*stats.Service, error) {
		b := do.MustInvoke[*bus](i)
		svc := stats.NewService(b)
		if err := svc.Start(ctx); err != nil {
			return nil, err
		}
		return svc, nil
	})

	do.Provide(injector, func(i do.Injector) (*server.Server, error) {
		b := do.MustInvoke[*bus](i)
		return server.New(server.Dependencies{
			Config:    do.MustInvoke[*config.Config](i),
			Engine:    do.MustInvoke[*pairing.Engine](i),
			Stats:     do.MustInvoke[*stats.Service](i),
			Publisher: b,
		})
	})

	return &App{injector: injector}
}

// Server builds the HTTP server and everything it depends on.
func (a *App) Server() (*server.Server, error) {
	return do.Invoke[*server.Server](a.injector)
}

// Run builds the server and serves until ctx is canceled or a shutdown signal arrives.
func (a *App) Run(ctx context.Context) error {
	srv, err := a.Server()
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}
	return srv.Start(ctx)
}

// Shutdown releases every built service in reverse dependency order.
func (a *App) Shutdown() {
	a.injector.Shutdown()
}
