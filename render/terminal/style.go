package terminal

import "github.com/charmbracelet/lipgloss"

var (
	colorBright = lipgloss.AdaptiveColor{Light: "#0f172a", Dark: "#f1f5f9"}
	colorDim    = lipgloss.AdaptiveColor{Light: "#94a3b8", Dark: "#64748b"}
)

var (
	styleTitle = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleMeta  = lipgloss.NewStyle().Foreground(colorDim)

	styleStat      = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleStatLabel = lipgloss.NewStyle().Foreground(colorDim)

	styleTimestamp = lipgloss.NewStyle().Foreground(colorDim)
	styleThinking  = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	styleSeparator = lipgloss.NewStyle().Foreground(colorDim)
)

// ansiColors maps the model's agent color names to ANSI palette indexes.
var ansiColors = map[string]lipgloss.Color{
	"red":     lipgloss.Color("1"),
	"green":   lipgloss.Color("2"),
	"yellow":  lipgloss.Color("3"),
	"blue":    lipgloss.Color("4"),
	"magenta": lipgloss.Color("5"),
	"cyan":    lipgloss.Color("6"),
	"white":   lipgloss.Color("7"),
}

// agentStyle returns a bold badge style in the agent's assigned color.
func agentStyle(color string) lipgloss.Style {
	c, ok := ansiColors[color]
	if !ok {
		c = lipgloss.Color("7")
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}
