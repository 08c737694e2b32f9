package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/bep/godartsass/v2"
	"github.com/bmatcuk/doublestar"
	"github.com/evanw/esbuild/pkg/api"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

const sassCacheSize = 256

// SassCompiler compiles a single stylesheet.
type SassCompiler interface {
	Execute(args godartsass.Args) (godartsass.Result, error)
}

// sassPlugin compiles .scss and .sass files with Dart Sass and hands the css
// to the bundler, which extracts it into [name].css.
type sassPlugin struct {
	cfg Configuration

	prefixer *prefixer

	mu          sync.Mutex
	compiler    SassCompiler
	transpiler  *godartsass.Transpiler
	fingerprint string

	cache *lru.Cache[string, string]
}

func newSassPlugin(cfg Configuration, compiler SassCompiler, autoprefix *prefixer) (*sassPlugin, error) {
	cache, err := lru.New[string, string](sassCacheSize)
	if err != nil {
		return nil, err
	}

	return &sassPlugin{
		cfg:      cfg,
		prefixer: autoprefix,
		compiler: compiler,
		cache:    cache,
	}, nil
}

func (p *sassPlugin) plugin() api.Plugin {
	return api.Plugin{
		Name: PluginSass,
		Setup: func(build api.PluginBuild) {
			build.OnStart(func() (api.OnStartResult, error) {
				p.refreshFingerprint()
				return api.OnStartResult{}, nil
			})

			build.OnLoad(api.OnLoadOptions{Filter: `\.(sass|scss)$`},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					css, err := p.compile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}
					return api.OnLoadResult{
						Contents:   &css,
						ResolveDir: filepath.Dir(args.Path),
						Loader:     api.LoaderCSS,
					}, nil
				})
		},
	}
}

func (p *sassPlugin) compile(path string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	fingerprint := p.fingerprint
	p.mu.Unlock()

	sum := sha256.Sum256(source)
	key := fingerprint + ":" + path + ":" + hex.EncodeToString(sum[:])

	if css, ok := p.cache.Get(key); ok {
		return css, nil
	}

	compiler, err := p.compilerFor()
	if err != nil {
		return "", err
	}

	syntax := godartsass.SourceSyntaxSCSS
	if filepath.Ext(path) == ".sass" {
		syntax = godartsass.SourceSyntaxSASS
	}

	style := godartsass.OutputStyleExpanded
	if p.cfg.Minify {
		style = godartsass.OutputStyleCompressed
	}

	// the stylesheet's own directory comes first so relative imports resolve
	includePaths := append([]string{filepath.Dir(path)}, p.cfg.Sass.IncludePaths...)

	result, err := compiler.Execute(godartsass.Args{
		Source:       string(source),
		URL:          "file://" + filepath.ToSlash(path),
		SourceSyntax: syntax,
		OutputStyle:  style,
		IncludePaths: includePaths,
	})
	if err != nil {
		return "", fmt.Errorf("failed to compile %s: %w", path, err)
	}

	css, err := p.prefixer.prefix(result.CSS, path)
	if err != nil {
		return "", err
	}

	p.cache.Add(key, css)

	return css, nil
}

// compilerFor starts the Dart Sass transpiler on first use.
func (p *sassPlugin) compilerFor() (SassCompiler, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.compiler != nil {
		return p.compiler, nil
	}

	transpiler, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: p.cfg.Sass.Binary,
		LogEventHandler: func(event godartsass.LogEvent) {
			log.Warn().Str("message", event.Message).Msg("Sass")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start dart sass %q: %w", p.cfg.Sass.Binary, err)
	}

	p.transpiler = transpiler
	p.compiler = transpiler

	return p.compiler, nil
}

// refreshFingerprint records the size and modification time of every
// stylesheet under the source tree, so an edited partial invalidates the
// cached output of the files importing it.
func (p *sassPlugin) refreshFingerprint() {
	matches, err := doublestar.Glob(p.cfg.Layout.StyleFilesGlob)
	if err != nil {
		log.Debug().Err(err).Msg("Unable to list stylesheets")
		return
	}

	slices.Sort(matches)

	h := sha256.New()
	for _, match := range matches {
		if !p.cfg.Layout.IsStyleFile(match) {
			continue
		}
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		fmt.Fprintf(h, "%s:%d:%d\n", match, info.Size(), info.ModTime().UnixNano())
	}

	p.mu.Lock()
	p.fingerprint = hex.EncodeToString(h.Sum(nil))
	p.mu.Unlock()
}

func (p *sassPlugin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.transpiler == nil {
		return nil
	}

	err := p.transpiler.Close()
	p.transpiler = nil
	p.compiler = nil
	return err
}
