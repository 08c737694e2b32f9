package bundle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

const entryNamespace = "appbundle-entry"

// entriesPlugin combines the files of a multi-file entry into one virtual
// module which imports each of them in order.
func entriesPlugin(cfg Configuration) api.Plugin {
	return api.Plugin{
		Name: PluginEntries,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: "^" + entryNamespace + ":"},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					name := strings.TrimPrefix(args.Path, entryNamespace+":")
					if _, ok := cfg.Entry[name]; !ok {
						return api.OnResolveResult{}, fmt.Errorf("unknown entry %q", name)
					}
					return api.OnResolveResult{Path: name, Namespace: entryNamespace}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: entryNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					contents := entrySource(cfg.entryInputs(args.Path))
					return api.OnLoadResult{
						Contents:   &contents,
						ResolveDir: cfg.Layout.Root,
						Loader:     api.LoaderJS,
					}, nil
				})
		},
	}
}

func entrySource(inputs []string) string {
	var sb strings.Builder
	for _, in := range inputs {
		sb.WriteString("import ")
		sb.WriteString(strconv.Quote(in))
		sb.WriteString(";\n")
	}
	return sb.String()
}
