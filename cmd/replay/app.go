package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/sonnes/replay/redact"
	"github.com/sonnes/replay/render"
	htmlrender "github.com/sonnes/replay/render/html"
	jsonrender "github.com/sonnes/replay/render/json"
	"github.com/sonnes/replay/render/terminal"
)

// newRenderer builds a Renderer by name. The empty name picks terminal when
// stdout is a TTY and JSON when it is piped.
func newRenderer(name string) (render.Renderer, error) {
	if name == "" {
		if isatty.IsTerminal(os.Stdout.Fd()) {
			name = "terminal"
		} else {
			name = "json"
		}
	}

	switch name {
	case "terminal":
		return terminal.New(), nil
	case "json":
		return jsonrender.New(), nil
	case "html":
		return htmlrender.New(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", name)
	}
}

// newRedactor builds a Redactor from CLI flags. Returns nil when --no-redact
// is set.
func newRedactor(cmd *cli.Command) (*redact.Redactor, error) {
	if cmd.Bool("no-redact") {
		return nil, nil
	}

	cfg := redact.Config{}
	rules := cmd.StringSlice("redact")

	if len(rules) == 0 {
		cfg.Secrets = true
		cfg.Paths = true
	} else {
		for _, r := range rules {
			switch r {
			case "secrets":
				cfg.Secrets = true
			case "paths":
				cfg.Paths = true
			default:
				return nil, fmt.Errorf("unknown redaction rule %q", r)
			}
		}
	}

	return redact.New(cfg), nil
}
