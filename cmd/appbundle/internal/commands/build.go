package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/appbundle/internal/browser"
	"github.com/wolfeidau/appbundle/internal/bundle"
)

// BuildCmd bundles the application once into the dist directory.
type BuildCmd struct {
	Args []string `arg:"" optional:"" help:"Build options: --production, --development, --open, --host=<host>, --port=<port>, --api-endpoint=<url>"`
}

func (c *BuildCmd) Run(globals *Globals) error {
	return c.build(globals, browser.NewScheduler())
}

func (c *BuildCmd) build(globals *Globals, scheduler *browser.Scheduler) error {
	a, err := assemble(globals, c.Args)
	if err != nil {
		return err
	}

	if a.openBrowser(scheduler) {
		// the process exits once the build is done, keep it alive until the
		// open has been attempted
		defer func() { <-scheduler.Done() }()
	}

	b, err := bundle.New(a.config)
	if err != nil {
		return fmt.Errorf("failed to create bundler: %w", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to stop sass transpiler")
		}
	}()

	if err := b.Build(); err != nil {
		return fmt.Errorf("failed to build assets: %w", err)
	}

	log.Info().Str("outdir", a.config.Output.Path).Msg("Build complete")
	return nil
}
