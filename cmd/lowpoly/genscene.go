package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/vibe3d/lowpoly/scenegen"
)

func genSceneCmd() *cli.Command {
	return &cli.Command{
		Name:      "gen-scene",
		Usage:     "Generate the LOD performance test-scene fixture",
		ArgsUsage: "[output.json]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			out := scenegen.DefaultOutput
			if cmd.Args().Len() > 0 {
				out = cmd.Args().Get(0)
			}
			return scenegen.WriteFile(scenegen.Generate(), out)
		},
	}
}
