package bundle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTMLPlugin_loadScripts(t *testing.T) {
	p := newHTMLPlugin(assemble(t, "/srv/app"))

	_, _, err := p.loadScripts("app")
	require.ErrorContains(t, err, "not built yet")

	p.metadata = &BuildMetadata{
		Outputs: map[string]OutputInfo{
			"dist/app.js": {
				EntryPoint: "src/main.js",
				CSSBundle:  "dist/app.css",
				Imports: []ImportInfo{
					{Path: "dist/ABC.chunk.js", Kind: "import-statement"},
					{Path: "dist/LAZY.chunk.js", Kind: "dynamic-import"},
					{Path: "https://cdn.example.com/lib.js", Kind: "import-statement", External: true},
				},
			},
			"dist/ABC.chunk.js": {
				Imports: []ImportInfo{
					{Path: "dist/DEF.chunk.js", Kind: "import-statement"},
					{Path: "dist/app.js", Kind: "import-statement"},
				},
			},
			"dist/DEF.chunk.js":  {},
			"dist/LAZY.chunk.js": {},
			"dist/app.css":       {EntryPoint: "src/main.js"},
		},
	}

	scripts, styles, err := p.loadScripts("app")
	require.NoError(t, err)
	require.Equal(t, []string{"/app.js", "/ABC.chunk.js", "/DEF.chunk.js"}, scripts)
	require.Equal(t, []string{"/app.css"}, styles)

	_, _, err = p.loadScripts("admin")
	require.ErrorContains(t, err, `entry "admin" not found`)
}

func TestHTMLPlugin_entryName(t *testing.T) {
	p := newHTMLPlugin(assemble(t, "/srv/app"))

	require.Equal(t, "app", p.entryName("dist/app.js"))
	require.Equal(t, "admin/app", p.entryName("dist/admin/app.js"))
	require.Empty(t, p.entryName("dist/app.css"))
	require.Empty(t, p.entryName("other/app.js"))
}

func TestHTMLPlugin_url(t *testing.T) {
	tests := []struct {
		name       string
		publicPath string
		expected   string
	}{
		{name: "root", publicPath: "/", expected: "/js/app.js"},
		{name: "empty", publicPath: "", expected: "/js/app.js"},
		{name: "prefix", publicPath: "/static/", expected: "/static/js/app.js"},
		{name: "absolute url", publicPath: "https://cdn.example.com/assets/", expected: "https://cdn.example.com/assets/js/app.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := assemble(t, "/srv/app")
			cfg.Output.PublicPath = tt.publicPath

			require.Equal(t, tt.expected, newHTMLPlugin(cfg).url("dist/js/app.js"))
		})
	}
}

func TestMarshal(t *testing.T) {
	require.Equal(t, "{\"a\":\"b\"}\n", marshal(map[string]string{"a": "b"}))
	require.Panics(t, func() { marshal(make(chan int)) })
}
