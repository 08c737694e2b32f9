package bundle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
)

// MetafileName is written to the output directory after every build.
const MetafileName = "meta.json"

var errIndexImported = errors.New("the index template is rendered by the html plugin and cannot be imported")

type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	EntryPoint string       `json:"entryPoint"`
	CSSBundle  string       `json:"cssBundle"`
	Imports    []ImportInfo `json:"imports"`
}

type ImportInfo struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external"`
}

// Page is the data the index template is rendered with.
type Page struct {
	Title    string
	Scripts  []string
	Preloads []string
	Styles   []string
	Metadata any
}

// htmlPlugin renders the index template into the output directory once a
// build succeeds, injecting the built scripts and stylesheets.
type htmlPlugin struct {
	cfg Configuration

	mu       sync.RWMutex
	metadata *BuildMetadata
}

func newHTMLPlugin(cfg Configuration) *htmlPlugin {
	return &htmlPlugin{cfg: cfg}
}

func (p *htmlPlugin) plugin() api.Plugin {
	return api.Plugin{
		Name: PluginHTML,
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: "^" + regexp.QuoteMeta(p.cfg.Layout.IndexHTML) + "$"},
				func(api.OnLoadArgs) (api.OnLoadResult, error) {
					return api.OnLoadResult{}, errIndexImported
				})

			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 {
					return api.OnEndResult{}, nil
				}
				return api.OnEndResult{}, p.emit(result.Metafile)
			})
		},
	}
}

func (p *htmlPlugin) emit(metafile string) error {
	if err := os.MkdirAll(p.cfg.Output.Path, 0o755); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(p.cfg.Output.Path, MetafileName), []byte(metafile), 0o600); err != nil {
		return err
	}

	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(metafile), &metadata); err != nil {
		return err
	}

	p.mu.Lock()
	p.metadata = &metadata
	p.mu.Unlock()

	page, err := p.page()
	if err != nil {
		return err
	}

	return p.render(page)
}

func (p *htmlPlugin) page() (Page, error) {
	page := Page{
		Title:    p.cfg.Title,
		Scripts:  []string{},
		Preloads: []string{},
		Styles:   []string{},
		Metadata: p.cfg.Metadata,
	}

	for _, name := range p.cfg.EntryNames() {
		scripts, styles, err := p.loadScripts(name)
		if err != nil {
			return Page{}, err
		}
		page.Scripts = append(page.Scripts, scripts[0])
		page.Preloads = append(page.Preloads, scripts[1:]...)
		page.Styles = append(page.Styles, styles...)
	}

	return page, nil
}

// loadScripts returns the ordered script URLs for the named entry, the entry
// script first followed by the chunks it statically imports, and its
// stylesheet URLs.
func (p *htmlPlugin) loadScripts(entry string) ([]string, []string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.metadata == nil {
		return nil, nil, errors.New("assets not built yet")
	}

	for outputPath, info := range p.metadata.Outputs {
		if info.EntryPoint == "" || p.entryName(outputPath) != entry {
			continue
		}

		scripts := []string{p.url(outputPath)}
		visited := map[string]bool{outputPath: true}
		p.addDependencies(info, &scripts, visited)

		styles := []string{}
		if info.CSSBundle != "" {
			styles = append(styles, p.url(info.CSSBundle))
		}

		return scripts, styles, nil
	}

	return nil, nil, fmt.Errorf("entry %q not found in metadata", entry)
}

func (p *htmlPlugin) addDependencies(output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if imp.External || imp.Kind != "import-statement" {
			continue
		}
		if !visited[imp.Path] {
			visited[imp.Path] = true
			*scripts = append(*scripts, p.url(imp.Path))

			if chunkInfo, exists := p.metadata.Outputs[imp.Path]; exists {
				p.addDependencies(chunkInfo, scripts, visited)
			}
		}
	}
}

// entryName maps a metafile output path such as dist/admin/app.js to its
// entry name, admin/app.
func (p *htmlPlugin) entryName(outputPath string) string {
	if filepath.Ext(outputPath) != ".js" {
		return ""
	}

	abs := filepath.Join(p.cfg.Layout.Root, filepath.FromSlash(outputPath))

	rel, err := filepath.Rel(p.cfg.Output.Path, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.ToSlash(strings.TrimSuffix(rel, ".js"))
}

// url converts a metafile output path, relative to the project root, into the
// URL it is served from.
func (p *htmlPlugin) url(outputPath string) string {
	abs := filepath.Join(p.cfg.Layout.Root, filepath.FromSlash(outputPath))

	rel, err := filepath.Rel(p.cfg.Output.Path, abs)
	if err != nil {
		rel = filepath.Base(abs)
	}

	publicPath := p.cfg.Output.PublicPath
	if publicPath == "" {
		publicPath = "/"
	}

	if strings.Contains(publicPath, "://") {
		return strings.TrimSuffix(publicPath, "/") + "/" + filepath.ToSlash(rel)
	}
	return path.Join(publicPath, filepath.ToSlash(rel))
}

func (p *htmlPlugin) render(page Page) error {
	tmpl, err := template.New(filepath.Base(p.cfg.Layout.IndexHTML)).
		Funcs(templateFuncs()).
		ParseFiles(p.cfg.Layout.IndexHTML)
	if err != nil {
		return fmt.Errorf("failed to load index template: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, page); err != nil {
		return fmt.Errorf("failed to render index template: %w", err)
	}

	target := filepath.Join(p.cfg.Output.Path, "index.html")
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil { //nolint:gosec
		return err
	}

	log.Debug().Str("file", target).Msg("Rendered index")
	return nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"marshal": marshal,
		"safe": func(s string) template.HTML {
			return template.HTML(s) //nolint:gosec
		},
	}
}

func marshal(value any) string {
	buf := new(bytes.Buffer)

	if err := json.NewEncoder(buf).Encode(value); err != nil {
		panic(errors.New("context can only be json serializable"))
	}

	return buf.String()
}
