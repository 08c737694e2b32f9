package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/appbundle/cmd/appbundle/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool   `help:"Enable debug mode."`
		Root    string `help:"Project root directory." default:"." type:"existingdir" env:"APPBUNDLE_ROOT"`
		Version kong.VersionFlag
		Build   commands.BuildCmd  `cmd:"" passthrough:"" help:"Bundle the application into the dist directory"`
		Serve   commands.ServeCmd  `cmd:"" passthrough:"" help:"Start the development server"`
		Config  commands.ConfigCmd `cmd:"" passthrough:"" help:"Print the assembled bundler configuration"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Root: cli.Root, Version: version})
	cmd.FatalIfErrorf(err)
}
