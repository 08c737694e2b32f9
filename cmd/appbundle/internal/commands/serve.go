package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/appbundle/internal/browser"
	"github.com/wolfeidau/appbundle/internal/bundle"
	"github.com/wolfeidau/appbundle/internal/devserver"
	"golang.org/x/sync/errgroup"
)

// ServeCmd builds the application, rebuilds on change and serves it.
type ServeCmd struct {
	Args []string `arg:"" optional:"" help:"Build options: --production, --development, --open, --host=<host>, --port=<port>, --api-endpoint=<url>"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := assemble(globals, c.Args)
	if err != nil {
		return err
	}

	a.openBrowser(browser.NewScheduler())

	b, err := bundle.New(a.config)
	if err != nil {
		return fmt.Errorf("failed to create bundler: %w", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to stop sass transpiler")
		}
	}()

	buildCtx, err := b.Context()
	if err != nil {
		return err
	}
	defer buildCtx.Dispose()

	// build errors are reported by the progress plugin, the server keeps
	// running so the next edit can fix them
	buildCtx.Rebuild()

	if err := buildCtx.Watch(api.WatchOptions{}); err != nil {
		return fmt.Errorf("failed to watch sources: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return devserver.New(a.config).Run(gctx)
	})

	g.Go(func() error {
		err := devserver.WatchTemplate(gctx, a.layout.IndexHTML, func() {
			buildCtx.Rebuild()
		})
		if err != nil {
			log.Warn().Err(err).Str("template", a.layout.IndexHTML).Msg("Template changes will not trigger a rebuild")
		}
		return nil
	})

	log.Info().
		Str("url", a.flags.BrowserURL()).
		Str("mode", string(a.config.Mode)).
		Msg("Dev server starting")

	return g.Wait()
}
