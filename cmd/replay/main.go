package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	root := &cli.Command{
		Name:  "replay",
		Usage: "Turn coding-agent session logs into unified, watchable timelines",
		Description: `
                 _
  _ _ ___ _ __ | |__ _ _  _
 | '_/ -_) '_ \| / _' | || |
 |_| \___| .__/|_\__,_|\_, |
         |_|           |__/

 One timeline for every agent — Claude Code, Codex, and Gemini sessions,
 normalized, merged, and replayed.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log level: debug, info, warn, error",
				Value: "error",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level, err := log.ParseLevel(cmd.String("log"))
			if err != nil {
				return ctx, err
			}
			log.SetLevel(level)
			return ctx, nil
		},
		Commands: []*cli.Command{
			showCmd(),
			sessionsCmd(),
			serveCmd(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
