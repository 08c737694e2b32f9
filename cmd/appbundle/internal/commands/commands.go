package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/appbundle/internal/browser"
	"github.com/wolfeidau/appbundle/internal/buildenv"
	"github.com/wolfeidau/appbundle/internal/bundle"
	"github.com/wolfeidau/appbundle/internal/layout"
	"github.com/wolfeidau/appbundle/internal/logger"
	"github.com/wolfeidau/appbundle/internal/project"
)

type Globals struct {
	Debug   bool
	Root    string
	Version string
}

// assembly is everything derived at start up for a single invocation.
type assembly struct {
	layout layout.Layout
	flags  buildenv.Flags
	config bundle.Configuration
}

// assemble resolves the build environment for args and composes the bundler
// configuration. Options from the environment and .env file are overridden by
// args.
func assemble(globals *Globals, args []string) (*assembly, error) {
	log.Logger = logger.Setup(globals.Debug)

	l := layout.New(globals.Root)

	settings, err := project.Load(l.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to load project settings: %w", err)
	}

	params := buildenv.Merge(buildenv.FromEnv(l.Root), buildenv.ParseArgs(args))
	if unknown := params.Unrecognized(); len(unknown) > 0 {
		log.Debug().Strs("options", unknown).Msg("Ignoring unrecognized options")
	}

	meta := buildenv.NewMetadata(l.Root)
	flags := buildenv.Resolve(params, meta)

	cfg := bundle.Assemble(l, flags, meta, settings)

	log.Debug().
		Str("root", l.Root).
		Str("mode", string(cfg.Mode)).
		Str("build_id", meta.BuildID).
		Msg("Configuration assembled")

	return &assembly{layout: l, flags: flags, config: cfg}, nil
}

// openBrowser schedules the browser open when --open was given and reports
// whether it did.
func (a *assembly) openBrowser(s *browser.Scheduler) bool {
	if !a.flags.OpenBrowser {
		return false
	}
	return s.Schedule(a.flags.BrowserURL())
}
