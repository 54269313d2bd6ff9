package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/vibe3d/lowpoly/geom"
	"github.com/vibe3d/lowpoly/logging"
	"github.com/vibe3d/lowpoly/modelio"
	"github.com/vibe3d/lowpoly/pipeline"
)

// defaultShadeColor is light gray.
var defaultShadeColor = geom.Vector4{X: 0.8, Y: 0.8, Z: 0.8, W: 1}

func shadeCmd() *cli.Command {
	return &cli.Command{
		Name:      "shade",
		Usage:     "Replace all materials with a flat color or image texture",
		ArgsUsage: "<input> <output> [-- --color r g b a | --image path]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) < 2 {
				return fmt.Errorf("usage: lowpoly shade <input> <output> [-- --color r g b a | --image path]")
			}
			return runShade(args[0], args[1], args[2:])
		},
	}
}

func runShade(in, out string, tokens []string) error {
	color := defaultShadeColor
	imagePath := ""
	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case "--color":
			if c, ok := parseColor(tokens[i+1:]); ok {
				color = c
				i += 4
			} else {
				logging.Warnf("invalid color values, using default")
			}
		case "--image":
			if i+1 < len(tokens) {
				i++
				imagePath = tokens[i]
			}
		}
	}

	s, err := modelio.Load(in)
	if err != nil {
		return fmt.Errorf("load %s: %w", in, err)
	}
	if imagePath != "" {
		if err := pipeline.ApplyImageMaterial(s, imagePath); err != nil {
			return err
		}
	} else {
		pipeline.ApplyFlatMaterial(s, color)
	}
	if err := modelio.Save(s, out, modelio.DefaultExportOptions()); err != nil {
		return fmt.Errorf("export %s: %w", out, err)
	}
	logging.Infof("wrote %s", out)
	return nil
}

func parseColor(tokens []string) (geom.Vector4, bool) {
	if len(tokens) < 4 {
		return geom.Vector4{}, false
	}
	var c [4]float64
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(tokens[i], 64)
		if err != nil {
			return geom.Vector4{}, false
		}
		c[i] = v
	}
	return geom.Vector4{X: float32(c[0]), Y: float32(c[1]), Z: float32(c[2]), W: float32(c[3])}, true
}
