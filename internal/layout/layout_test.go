package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	anchor := t.TempDir()

	l := New(anchor)

	require.Equal(t, anchor, l.Root)
	require.Equal(t, filepath.Join(anchor, "dist"), l.DistDir)
	require.Equal(t, filepath.Join(anchor, "src"), l.SourceDir)
	require.Equal(t, filepath.Join(anchor, "src", "index.html"), l.IndexHTML)
	require.Equal(t, []string{filepath.Join(anchor, "node_modules")}, l.ExcludedDirs)
	require.Equal(t, []string{
		filepath.Join(anchor, "node_modules", "normalize.css"),
		filepath.Join(anchor, "node_modules", "include-media", "dist"),
	}, l.StyleIncludePaths)
	require.Equal(t, filepath.Join(anchor, "src", "**", "*"), l.StyleFilesGlob)
}

func TestNew_deterministic(t *testing.T) {
	anchors := []string{"/srv/app", "/", "/tmp/a/../b"}

	for _, anchor := range anchors {
		t.Run(anchor, func(t *testing.T) {
			require.Equal(t, New(anchor), New(anchor))
		})
	}
}

func TestNew_relativeAnchor(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	l := New("web")
	require.True(t, filepath.IsAbs(l.Root))
	require.Equal(t, filepath.Join(wd, "web", "dist"), l.DistDir)
}

func TestIsStyleFile(t *testing.T) {
	l := New("/srv/app")

	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{name: "scss in src", path: "/srv/app/src/styles/main.scss", expected: true},
		{name: "css at src root", path: "/srv/app/src/main.css", expected: true},
		{name: "sass nested", path: "/srv/app/src/app/home/home.sass", expected: true},
		{name: "javascript", path: "/srv/app/src/main.js", expected: false},
		{name: "outside src", path: "/srv/app/styles/main.scss", expected: false},
		{name: "node_modules", path: "/srv/app/node_modules/normalize.css/normalize.css", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, l.IsStyleFile(tt.path))
		})
	}
}

func TestStyleFiles(t *testing.T) {
	anchor := t.TempDir()
	files := []string{
		"src/main.scss",
		"src/_variables.scss",
		"src/app/home/home.css",
		"src/main.js",
	}
	for _, f := range files {
		path := filepath.Join(anchor, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(""), 0o600))
	}

	styles, err := New(anchor).StyleFiles()
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(anchor, "src", "app", "home", "home.css"),
		filepath.Join(anchor, "src", "main.scss"),
	}, styles)
}
