package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the optional settings file looked up in the project root.
const FileName = "project.yaml"

// Settings holds the per-project values which are not derived from the
// layout or the build environment.
type Settings struct {
	// Title is passed to the index template
	Title string `yaml:"title" json:"title"`
	// Entries maps a bundle name to the files it is built from, relative to the project root
	Entries map[string][]string `yaml:"entries" json:"entries"`
	// PublicPath is the URL prefix the bundles are served from
	PublicPath string `yaml:"publicPath" json:"publicPath"`
	// APIPrefix is the request path prefix proxied to the api endpoint by the dev server
	APIPrefix string `yaml:"apiPrefix" json:"apiPrefix"`
	// Target is the esbuild language target, e.g. es2017
	Target string `yaml:"target" json:"target"`
	// Browsers maps a browser (chrome, edge, firefox, ie, ios, opera, safari)
	// to the oldest version stylesheets are prefixed for
	Browsers map[string]string `yaml:"browsers" json:"browsers"`
	// SassBinary is the Dart Sass executable used to compile stylesheets
	SassBinary string `yaml:"sassBinary" json:"sassBinary"`
}

// Default returns the settings used when no project.yaml is present.
func Default() Settings {
	return Settings{
		Title: "App",
		Entries: map[string][]string{
			"app": {"./src/main.js"},
		},
		PublicPath: "/",
		APIPrefix:  "/api",
		Target:     "es2017",
		Browsers: map[string]string{
			"chrome":  "55",
			"edge":    "14",
			"firefox": "52",
			"ie":      "11",
			"ios":     "7",
			"opera":   "12.1",
			"safari":  "9",
		},
		SassBinary: "sass",
	}
}

// Load reads project.yaml from root, filling any missing value from the
// defaults. A missing file is not an error.
func Load(root string) (Settings, error) {
	settings := Default()

	data, err := os.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return settings, nil
		}
		return Settings{}, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var file Settings
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Settings{}, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return settings.merge(file), nil
}

func (s Settings) merge(o Settings) Settings {
	if o.Title != "" {
		s.Title = o.Title
	}
	if len(o.Entries) > 0 {
		s.Entries = o.Entries
	}
	if o.PublicPath != "" {
		s.PublicPath = o.PublicPath
	}
	if o.APIPrefix != "" {
		s.APIPrefix = o.APIPrefix
	}
	if o.Target != "" {
		s.Target = o.Target
	}
	if len(o.Browsers) > 0 {
		s.Browsers = o.Browsers
	}
	if o.SassBinary != "" {
		s.SassBinary = o.SassBinary
	}
	return s
}
