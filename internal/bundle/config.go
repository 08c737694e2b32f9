package bundle

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/wolfeidau/appbundle/internal/buildenv"
	"github.com/wolfeidau/appbundle/internal/layout"
	"github.com/wolfeidau/appbundle/internal/project"
)

// Plugin names reported in the assembled configuration.
const (
	PluginEntries  = "entries"
	PluginProgress = "progress"
	PluginSass     = "sass"
	PluginPrefix   = "autoprefix"
	PluginHTML     = "html"
	PluginExtract  = "extract-css"
	PluginDefine   = "define"
	PluginMinify   = "minify"
)

// Configuration is the options object handed to the bundler. It is assembled
// once per invocation and never modified afterwards.
type Configuration struct {
	Mode      buildenv.Mode       `json:"mode"`
	Entry     map[string][]string `json:"entry"`
	Output    Output              `json:"output"`
	Resolve   Resolve             `json:"resolve"`
	Devtool   string              `json:"devtool"`
	DevServer DevServer           `json:"devServer"`
	Loaders   []Loader            `json:"loaders"`
	Sass      Sass                `json:"sass"`
	Define    map[string]string   `json:"define"`
	Target    string              `json:"target"`
	Browsers  map[string]string   `json:"browsers"`
	Minify    bool                `json:"minify"`
	Plugins   []string            `json:"plugins"`
	Title     string              `json:"title"`

	Layout   layout.Layout     `json:"layout"`
	Metadata buildenv.Metadata `json:"metadata"`
}

type Output struct {
	Path          string `json:"path"`
	PublicPath    string `json:"publicPath"`
	Filename      string `json:"filename"`
	ChunkFilename string `json:"chunkFilename"`
	AssetFilename string `json:"assetFilename"`
}

type Resolve struct {
	Root               string   `json:"root"`
	Extensions         []string `json:"extensions"`
	ModulesDirectories []string `json:"modulesDirectories"`
}

type DevServer struct {
	Host               string            `json:"host"`
	Port               string            `json:"port"`
	HistoryAPIFallback bool              `json:"historyApiFallback"`
	Proxy              map[string]string `json:"proxy,omitempty"`
	OpenBrowser        bool              `json:"open"`
}

// Loader assigns a loader to the files with the listed extensions.
type Loader struct {
	Extensions []string `json:"test"`
	Loader     string   `json:"loader"`
	Exclude    []string `json:"exclude,omitempty"`
}

type Sass struct {
	IncludePaths []string `json:"includePaths"`
	Binary       string   `json:"binary"`
}

// Assemble composes the bundler configuration from the project layout, the
// resolved build environment and the project settings.
func Assemble(l layout.Layout, flags buildenv.Flags, meta buildenv.Metadata, settings project.Settings) Configuration {
	mode := flags.Mode()
	meta = meta.With(flags)

	cfg := Configuration{
		Mode:  mode,
		Entry: maps.Clone(settings.Entries),
		Output: Output{
			Path:          l.DistDir,
			PublicPath:    settings.PublicPath,
			Filename:      "[name].js",
			ChunkFilename: "[hash].chunk.js",
			AssetFilename: "[name]-[hash]",
		},
		Resolve: Resolve{
			Root:               meta.ProjectRoot,
			Extensions:         []string{".js", ".json"},
			ModulesDirectories: []string{"node_modules"},
		},
		Devtool: "source-map",
		DevServer: DevServer{
			Host:               flags.HostOrDefault(),
			Port:               flags.PortOrDefault(),
			HistoryAPIFallback: true,
			OpenBrowser:        flags.OpenBrowser,
		},
		Loaders: []Loader{
			{Extensions: []string{".html"}, Loader: "text", Exclude: []string{l.IndexHTML}},
			{Extensions: []string{".json"}, Loader: "json"},
			{Extensions: []string{".css"}, Loader: "css"},
			{Extensions: []string{".sass", ".scss"}, Loader: "sass"},
			{Extensions: []string{".png", ".jpg", ".gif", ".svg", ".woff", ".woff2", ".ttf", ".eot"}, Loader: "file"},
		},
		Sass: Sass{
			IncludePaths: slices.Clone(l.StyleIncludePaths),
			Binary:       settings.SassBinary,
		},
		Define:   defines(mode, meta),
		Target:   settings.Target,
		Browsers: maps.Clone(settings.Browsers),
		Minify:   mode == buildenv.ModeProduction,
		Title:    settings.Title,
		Layout:   l,
		Metadata: meta,
	}

	if flags.APIEndpoint != "" {
		cfg.DevServer.Proxy = map[string]string{
			settings.APIPrefix: flags.APIEndpoint,
		}
	}

	cfg.Plugins = []string{PluginEntries, PluginPrefix, PluginSass, PluginHTML, PluginProgress, PluginExtract, PluginDefine}
	if cfg.Minify {
		cfg.Plugins = append(cfg.Plugins, PluginMinify)
	}

	return cfg
}

// EntryNames returns the entry bundle names in a stable order.
func (c Configuration) EntryNames() []string {
	return slices.Sorted(maps.Keys(c.Entry))
}

// entryInputs resolves the input files of an entry against the project root.
func (c Configuration) entryInputs(name string) []string {
	inputs := []string{}
	for _, in := range c.Entry[name] {
		if filepath.IsAbs(in) {
			inputs = append(inputs, in)
			continue
		}
		inputs = append(inputs, filepath.Join(c.Layout.Root, in))
	}
	return inputs
}

func defines(mode buildenv.Mode, meta buildenv.Metadata) map[string]string {
	// project root stays out of the bundle
	public := map[string]string{
		"mode":        string(mode),
		"buildId":     meta.BuildID,
		"host":        meta.Host,
		"port":        meta.Port,
		"apiEndpoint": meta.APIEndpoint,
	}

	return map[string]string{
		"process.env.NODE_ENV": quote(string(mode)),
		"APP_METADATA":         strings.TrimSpace(marshal(public)),
	}
}

func quote(s string) string {
	return strings.TrimSpace(marshal(s))
}
