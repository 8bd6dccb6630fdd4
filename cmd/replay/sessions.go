package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/sonnes/replay/core"
	"github.com/sonnes/replay/scanner"
)

func sessionsCmd() *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "List discovered sessions, newest first",
		Flags: []cli.Flag{
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
			s := &scanner.Scanner{
				ClaudeDir: cmd.String("claude-dir"),
				CodexDir:  cmd.String("codex-dir"),
				GeminiDir: cmd.String("gemini-dir"),
			}

			summaries := s.Scan()
			if len(summaries) == 0 {
				fmt.Println("no sessions found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFORMAT\tPROJECT\tMODIFIED")
			for _, sum := range summaries {
				marker := ""
				if sum.Active {
					marker = " *"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s%s\n",
					sum.ID, sum.Format, sum.Project, core.RelativeTime(sum.ModTime), marker)
			}
			return w.Flush()
		},
	}
}
