package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/wolfeidau/appbundle/internal/bundle"
)

// ConfigCmd prints the assembled bundler configuration.
type ConfigCmd struct {
	Args []string `arg:"" optional:"" help:"Build options: --production, --development, --open, --host=<host>, --port=<port>, --api-endpoint=<url>"`
}

type configOutput struct {
	Configuration bundle.Configuration `json:"configuration"`
	StyleFiles    []string             `json:"styleFiles"`
}

func (c *ConfigCmd) Run(globals *Globals) error {
	return c.write(os.Stdout, globals)
}

func (c *ConfigCmd) write(out io.Writer, globals *Globals) error {
	a, err := assemble(globals, c.Args)
	if err != nil {
		return err
	}

	styles, err := a.layout.StyleFiles()
	if err != nil {
		return fmt.Errorf("failed to list style files: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(configOutput{Configuration: a.config, StyleFiles: styles})
}
