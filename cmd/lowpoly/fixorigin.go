package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/vibe3d/lowpoly/logging"
	"github.com/vibe3d/lowpoly/modelio"
	"github.com/vibe3d/lowpoly/pipeline"
)

func fixOriginCmd() *cli.Command {
	return &cli.Command{
		Name:      "fix-origin",
		Usage:     "Re-home object origins to the main mesh bounding-box bottom center",
		ArgsUsage: "<input> <output>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) < 2 {
				return fmt.Errorf("usage: lowpoly fix-origin <input> <output>")
			}
			return runFixOrigin(args[0], args[1])
		},
	}
}

func runFixOrigin(in, out string) error {
	s, err := modelio.Load(in)
	if err != nil {
		return fmt.Errorf("load %s: %w", in, err)
	}
	if err := pipeline.FixOrigin(s); err != nil {
		return err
	}
	if err := modelio.Save(s, out, modelio.DefaultExportOptions()); err != nil {
		return fmt.Errorf("export %s: %w", out, err)
	}
	logging.Infof("wrote %s", out)
	return nil
}
