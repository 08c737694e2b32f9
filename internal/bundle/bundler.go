package bundle

import (
	"errors"
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
)

var ErrBuildFailed = errors.New("esbuild failed with errors")

// Bundler runs esbuild with an assembled configuration.
type Bundler struct {
	config   Configuration
	prefixer *prefixer
	sass     *sassPlugin
	html     *htmlPlugin
}

// BundlerOption configures a Bundler.
type BundlerOption func(*bundlerOptions)

type bundlerOptions struct {
	sassCompiler SassCompiler
}

// WithSassCompiler replaces the Dart Sass transpiler.
func WithSassCompiler(c SassCompiler) BundlerOption {
	return func(o *bundlerOptions) {
		o.sassCompiler = c
	}
}

// New creates a bundler for the given configuration.
func New(config Configuration, opts ...BundlerOption) (*Bundler, error) {
	o := &bundlerOptions{}
	for _, opt := range opts {
		opt(o)
	}

	autoprefix, err := newPrefixer(config)
	if err != nil {
		return nil, err
	}

	sass, err := newSassPlugin(config, o.sassCompiler, autoprefix)
	if err != nil {
		return nil, err
	}

	return &Bundler{
		config:   config,
		prefixer: autoprefix,
		sass:     sass,
		html:     newHTMLPlugin(config),
	}, nil
}

func (b *Bundler) options() (api.BuildOptions, error) {
	opts, err := b.config.BuildOptions()
	if err != nil {
		return api.BuildOptions{}, err
	}

	// progress is registered last so its end callback sees errors raised by
	// the others
	opts.Plugins = []api.Plugin{
		entriesPlugin(b.config),
		b.prefixer.plugin(),
		b.sass.plugin(),
		b.html.plugin(),
		progressPlugin(),
	}

	return opts, nil
}

// Build runs a single build.
func (b *Bundler) Build() error {
	opts, err := b.options()
	if err != nil {
		return err
	}

	log.Info().
		Strs("entries", b.config.EntryNames()).
		Str("mode", string(b.config.Mode)).
		Str("outdir", b.config.Output.Path).
		Msg("Building assets")

	result := api.Build(opts)
	if len(result.Errors) > 0 {
		return ErrBuildFailed
	}

	return nil
}

// Context creates an incremental build context for watch mode. The caller
// must Dispose it.
func (b *Bundler) Context() (api.BuildContext, error) {
	opts, err := b.options()
	if err != nil {
		return nil, err
	}

	ctx, ctxErr := api.Context(opts)
	if ctxErr != nil {
		for _, msg := range ctxErr.Errors {
			log.Error().Str("error", formatMessage(msg)).Msg("Build error")
		}
		return nil, fmt.Errorf("failed to create build context: %w", ErrBuildFailed)
	}

	return ctx, nil
}

// Close stops the Dart Sass transpiler if it was started.
func (b *Bundler) Close() error {
	return b.sass.Close()
}
