package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/vibe3d/lowpoly/logging"
	"github.com/vibe3d/lowpoly/modelio"
	"github.com/vibe3d/lowpoly/pipeline"
)

func convertCmd() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert a model into a low-poly optimized version",
		ArgsUsage: "<input> <output> [-- pipeline flags]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) < 2 {
				return fmt.Errorf("usage: lowpoly convert <input> <output> [-- flags]")
			}
			return runConvert(args[0], args[1], args[2:])
		},
	}
}

func runConvert(in, out string, tokens []string) error {
	cfg, err := pipeline.ParseArgs(tokens)
	if err != nil {
		return err
	}
	outPath, err := pipeline.ResolveOutputPath(out, cfg.GLB)
	if err != nil {
		return err
	}
	s, err := modelio.Load(in)
	if err != nil {
		return fmt.Errorf("load %s: %w", in, err)
	}
	logging.Infof("loaded %s: %d meshes, %d materials, %d images",
		in, len(s.Meshes), len(s.Materials), len(s.Images))

	result, runErr := pipeline.Run(s, cfg)
	if result.Aborted {
		return runErr
	}
	if err := modelio.Save(s, outPath, exportOptions(cfg)); err != nil {
		return fmt.Errorf("export %s: %w", outPath, err)
	}
	logging.Infof("wrote %s", outPath)
	pipeline.Postprocess(outPath, cfg)
	if runErr != nil {
		return fmt.Errorf("completed with pass failures: %w", runErr)
	}
	return nil
}

func exportOptions(cfg *pipeline.Config) *modelio.ExportOptions {
	opt := modelio.DefaultExportOptions()
	if cfg.TextureFormat == pipeline.FormatJPEG {
		opt.ImageFormat = "JPEG"
		opt.JPEGQuality = cfg.TextureQuality
	}
	return opt
}
