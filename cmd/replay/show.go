package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/sonnes/replay/cache"
	"github.com/sonnes/replay/compact"
	"github.com/sonnes/replay/core"
	"github.com/sonnes/replay/scanner"
)

func showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Render one session as a timeline",
		ArgsUsage: "<file or session id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "o",
				Usage: "Output format: terminal, json, html (default: terminal on a TTY, json otherwise)",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "Summarize tool output and error payloads",
			},
			&cli.BoolFlag{
				Name:  "no-thinking",
				Usage: "Drop thinking events (implies --compact)",
			},
			&cli.BoolFlag{
				Name:  "no-redact",
				Usage: "Disable redaction of secrets and paths",
			},
			&cli.StringSliceFlag{
				Name:  "redact",
				Usage: "Rules to redact. Example: --redact=secrets,paths",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ref := cmd.Args().First()
			if ref == "" {
				return fmt.Errorf("a session file or id is required")
			}

			path, err := resolveSession(ref)
			if err != nil {
				return err
			}

			session, err := cache.Parse(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			transformers, err := newTransformers(cmd)
			if err != nil {
				return err
			}
			if len(transformers) > 0 {
				session = session.Clone()
				if err := core.Chain(session, transformers...); err != nil {
					return err
				}
			}

			rnd, err := newRenderer(cmd.String("o"))
			if err != nil {
				return err
			}
			return rnd.Render(os.Stdout, session)
		},
	}
}

// resolveSession accepts either a path on disk or an id from `replay sessions`.
func resolveSession(ref string) (string, error) {
	if _, err := os.Stat(ref); err == nil {
		return ref, nil
	}
	s := &scanner.Scanner{}
	if sum, ok := s.Lookup(ref); ok {
		return sum.Path, nil
	}
	return "", fmt.Errorf("no session file or id %q", ref)
}

func newTransformers(cmd *cli.Command) ([]core.Transformer, error) {
	var transformers []core.Transformer

	redactor, err := newRedactor(cmd)
	if err != nil {
		return nil, err
	}
	if redactor != nil {
		transformers = append(transformers, redactor)
	}

	if cmd.Bool("compact") || cmd.Bool("no-thinking") {
		transformers = append(transformers, compact.New(compact.Config{
			StripThinking: cmd.Bool("no-thinking"),
		}))
	}

	return transformers, nil
}
