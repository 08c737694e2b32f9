package bundle

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

var targets = map[string]api.Target{
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

var loaders = map[string]api.Loader{
	"text": api.LoaderText,
	"json": api.LoaderJSON,
	"css":  api.LoaderCSS,
	"file": api.LoaderFile,
}

// BuildOptions converts the configuration into esbuild options. Plugins are
// attached by the Bundler.
func (c Configuration) BuildOptions() (api.BuildOptions, error) {
	target, ok := targets[strings.ToLower(c.Target)]
	if !ok {
		return api.BuildOptions{}, fmt.Errorf("unsupported target %q", c.Target)
	}

	entryPoints, err := c.entryPoints()
	if err != nil {
		return api.BuildOptions{}, err
	}

	loader := map[string]api.Loader{}
	for _, l := range c.Loaders {
		// sass files are loaded by the sass plugin
		esLoader, ok := loaders[l.Loader]
		if !ok {
			continue
		}
		for _, ext := range l.Extensions {
			loader[ext] = esLoader
		}
	}

	return api.BuildOptions{
		EntryPointsAdvanced: entryPoints,
		AbsWorkingDir:       c.Layout.Root,
		Bundle:              true,
		Splitting:           true,
		Write:               true,
		Outdir:              c.Output.Path,
		PublicPath:          c.Output.PublicPath,
		EntryNames:          "[dir]/" + strings.TrimSuffix(c.Output.Filename, ".js"),
		ChunkNames:          strings.TrimSuffix(c.Output.ChunkFilename, ".js"),
		AssetNames:          c.Output.AssetFilename,
		Format:              api.FormatESModule,
		Platform:            api.PlatformBrowser,
		Target:              target,
		ResolveExtensions:   c.Resolve.Extensions,
		Loader:              loader,
		Define:              c.Define,
		MinifyWhitespace:    c.Minify,
		MinifyIdentifiers:   c.Minify,
		MinifySyntax:        c.Minify,
		TreeShaking:         api.TreeShakingTrue,
		Sourcemap:           cond(c.Devtool == "source-map", api.SourceMapLinked, api.SourceMapNone),
		Metafile:            true,
		LogLevel:            api.LogLevelSilent,
	}, nil
}

func (c Configuration) entryPoints() ([]api.EntryPoint, error) {
	entryPoints := []api.EntryPoint{}

	for _, name := range c.EntryNames() {
		inputs := c.entryInputs(name)
		switch len(inputs) {
		case 0:
			return nil, fmt.Errorf("entry %q has no input files", name)
		case 1:
			entryPoints = append(entryPoints, api.EntryPoint{InputPath: inputs[0], OutputPath: name})
		default:
			entryPoints = append(entryPoints, api.EntryPoint{InputPath: entryNamespace + ":" + name, OutputPath: name})
		}
	}

	return entryPoints, nil
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
