package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/auroraviz/aurora/internal/auth"
	"github.com/auroraviz/aurora/internal/config"
	"github.com/auroraviz/aurora/internal/display"
	"github.com/auroraviz/aurora/internal/domain"
	"github.com/auroraviz/aurora/internal/engine"
	"github.com/auroraviz/aurora/internal/sdk"
	"github.com/auroraviz/aurora/internal/sdk/mpris"
	"github.com/auroraviz/aurora/internal/session"
	"github.com/auroraviz/aurora/internal/spotify"
	"github.com/auroraviz/aurora/internal/vis"
	"github.com/auroraviz/aurora/internal/web"
)

// AppOptions is the full dependency graph, shared with tests so the graph
// stays verifiable
var AppOptions = fx.Options(
	fx.Provide(
		newLogger,
		config.NewAppConfig,
		auth.DefaultStore,
		mpris.NewLoader,
		session.NewManager,
		spotify.NewClient,
		vis.NewInputs,
		vis.NewSurfaceSize,
		newPublisher,
		newRenderer,
		engine.NewEngine,
		web.NewServer,

		// Interface bindings
		func(c *config.AppConfig) domain.Config { return c },
		func(c *config.AppConfig) engine.Config { return c },
		func(c *config.AppConfig) web.Config { return c },
		func(l *mpris.Loader) sdk.Loader { return l },
		func(m *session.Manager) domain.Session { return m },
		func(c *spotify.Client) domain.FeatureSource { return c },
		func(c *spotify.Client) domain.PlaybackStarter { return c },
		func(e *engine.Engine) web.Orchestrator { return e },
	),
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		AppOptions,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	<-ctx.Done()

	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// newLogger creates a new zap logger instance
func newLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// newPublisher creates the platform frame publisher
func newPublisher(logger *zap.Logger, cfg domain.Config) vis.Publisher {
	return display.NewDisplay(logger, cfg)
}

// newRenderer creates the render loop at the configured frame rate
func newRenderer(logger *zap.Logger, inputs *vis.Inputs, size vis.SurfaceSize, cfg *config.AppConfig, pub vis.Publisher) *vis.Renderer {
	return vis.NewRenderer(logger, inputs, size, cfg.FrameRate(), pub)
}

// registerHooks ties component lifecycles to the application lifecycle.
// Startup order: render loop, orchestrator, control server; shutdown runs
// in reverse.
func registerHooks(
	lc fx.Lifecycle,
	logger *zap.Logger,
	renderer *vis.Renderer,
	eng *engine.Engine,
	srv *web.Server,
) {
	lc.Append(fx.Hook{OnStart: renderer.Start, OnStop: renderer.Stop})
	lc.Append(fx.Hook{OnStart: eng.Start, OnStop: eng.Stop})
	lc.Append(fx.Hook{OnStart: srv.Start, OnStop: srv.Stop})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Aurora daemon started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			return nil
		},
	})
}
