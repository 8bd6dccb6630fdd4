package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/sonnes/replay/cache"
	"github.com/sonnes/replay/scanner"
	"github.com/sonnes/replay/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve sessions for browsing and live replay in a local web UI",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
				Value: 8080,
			},
			&cli.BoolFlag{
				Name:  "public",
				Usage: "Redact secrets and paths, and hide file paths behind aliases",
			},
			&cli.DurationFlag{
				Name:  "poll",
				Usage: "How often live streams check session files for changes",
				Value: 2 * time.Second,
			},
			&cli.StringFlag{
				Name:  "claude-dir",
				Usage: "Override the Claude Code projects directory",
			},
			&cli.StringFlag{
				Name:  "codex-dir",
				Usage: "Override the Codex sessions directory",
			},
			&cli.StringFlag{
				Name:  "gemini-dir",
				Usage: "Override the Gemini temp directory",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s := server.New(server.Config{
				Scanner: &scanner.Scanner{
					ClaudeDir: cmd.String("claude-dir"),
					CodexDir:  cmd.String("codex-dir"),
					GeminiDir: cmd.String("gemini-dir"),
				},
				Cache:        cache.New(cache.DefaultCapacity),
				Public:       cmd.Bool("public"),
				PollInterval: cmd.Duration("poll"),
			})

			addr := fmt.Sprintf(":%d", cmd.Int("port"))
			slog.Info("serving", "addr", "http://localhost"+addr, "public", cmd.Bool("public"))
			return http.ListenAndServe(addr, s.Handler())
		},
	}
}
