package bundle

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

var engineNames = map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"ie":      api.EngineIE,
	"ios":     api.EngineIOS,
	"opera":   api.EngineOpera,
	"safari":  api.EngineSafari,
}

// engines converts the configured browser versions into esbuild engines,
// sorted by name.
func (c Configuration) engines() ([]api.Engine, error) {
	engines := []api.Engine{}

	for _, name := range slices.Sorted(maps.Keys(c.Browsers)) {
		engine, ok := engineNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unsupported browser %q", name)
		}
		engines = append(engines, api.Engine{Name: engine, Version: c.Browsers[name]})
	}

	return engines, nil
}

// prefixer adds the vendor prefixes the configured browsers need to
// stylesheets. Only css is transformed, scripts keep the language target.
type prefixer struct {
	engines []api.Engine
}

func newPrefixer(cfg Configuration) (*prefixer, error) {
	engines, err := cfg.engines()
	if err != nil {
		return nil, err
	}
	return &prefixer{engines: engines}, nil
}

func (p *prefixer) prefix(css, path string) (string, error) {
	if len(p.engines) == 0 {
		return css, nil
	}

	result := api.Transform(css, api.TransformOptions{
		Loader:     api.LoaderCSS,
		Engines:    p.engines,
		Sourcefile: path,
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("failed to prefix %s: %s", path, formatMessage(result.Errors[0]))
	}

	return string(result.Code), nil
}

// plugin prefixes plain .css files. Compiled sass is prefixed by the sass
// plugin.
func (p *prefixer) plugin() api.Plugin {
	return api.Plugin{
		Name: PluginPrefix,
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: `\.css$`, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					source, err := os.ReadFile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}

					css, err := p.prefix(string(source), args.Path)
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
