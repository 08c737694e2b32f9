package layout

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// Layout is the set of filesystem locations for a front-end project, all
// derived from a single anchor directory.
type Layout struct {
	// Root of the project, also forwarded in the build metadata
	Root string `json:"root"`
	// SourceDir where the application code resides
	SourceDir string `json:"sourceDir"`
	// DistDir where all compiled output is written
	DistDir string `json:"distDir"`
	// ExcludedDirs are never treated as application sources
	ExcludedDirs []string `json:"excludedDirs"`
	// StyleIncludePaths are searched when resolving sass imports
	StyleIncludePaths []string `json:"styleIncludePaths"`
	// StyleFilesGlob matches the application-wide stylesheets
	StyleFilesGlob string `json:"styleFilesGlob"`
	// IndexHTML is the template used to generate the entry html document
	IndexHTML string `json:"indexHTML"`
}

var styleExtensions = []string{".css", ".scss", ".sass"}

// New computes the project layout for the given anchor directory.
func New(anchor string) Layout {
	root, err := filepath.Abs(anchor)
	if err != nil {
		root = filepath.Clean(anchor)
	}

	src := filepath.Join(root, "src")

	return Layout{
		Root:      root,
		SourceDir: src,
		DistDir:   filepath.Join(root, "dist"),
		ExcludedDirs: []string{
			filepath.Join(root, "node_modules"),
		},
		StyleIncludePaths: []string{
			filepath.Join(root, "node_modules", "normalize.css"),
			filepath.Join(root, "node_modules", "include-media", "dist"),
		},
		StyleFilesGlob: filepath.Join(root, "src", "**", "*"),
		IndexHTML:      filepath.Join(src, "index.html"),
	}
}

// IsStyleFile reports whether path is a stylesheet covered by the style glob.
func (l Layout) IsStyleFile(path string) bool {
	if !slices.Contains(styleExtensions, filepath.Ext(path)) {
		return false
	}

	if l.isExcluded(path) {
		return false
	}

	ok, err := doublestar.PathMatch(l.StyleFilesGlob, path)
	if err != nil {
		return false
	}

	return ok
}

// StyleFiles lists the application-wide stylesheets, skipping sass partials.
func (l Layout) StyleFiles() ([]string, error) {
	matches, err := doublestar.Glob(l.StyleFilesGlob)
	if err != nil {
		return nil, err
	}

	files := []string{}
	for _, match := range matches {
		if strings.HasPrefix(filepath.Base(match), "_") {
			continue
		}
		if l.IsStyleFile(match) {
			files = append(files, match)
		}
	}

	slices.Sort(files)

	return files, nil
}

func (l Layout) isExcluded(path string) bool {
	for _, dir := range l.ExcludedDirs {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
