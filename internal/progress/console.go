package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorInfo    = lipgloss.Color("#8A8F98")
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorError   = lipgloss.Color("#FF5F5F")
)

// Console renders events as one styled line each, the terminal counterpart of
// the toast notifications shown by the web builder. Colors are dropped
// automatically when w is not a terminal.
type Console struct {
	mu         sync.Mutex
	w          io.Writer
	timeFormat string

	timeStyle lipgloss.Style
	styles    map[Severity]lipgloss.Style
	icons     map[Severity]string
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:          w,
		timeFormat: "15:04:05",
		timeStyle:  r.NewStyle().Faint(true),
		styles: map[Severity]lipgloss.Style{
			SeverityInfo:    r.NewStyle().Foreground(colorInfo),
			SeveritySuccess: r.NewStyle().Foreground(colorSuccess).Bold(true),
			SeverityError:   r.NewStyle().Foreground(colorError).Bold(true),
		},
		icons: map[Severity]string{
			SeverityInfo:    "•",
			SeveritySuccess: "✓",
			SeverityError:   "✗",
		},
	}
}

func (c *Console) Report(e Event) {
	style := c.styles[e.Severity]
	line := fmt.Sprintf("%s %s %s",
		c.timeStyle.Render(e.Time.Format(c.timeFormat)),
		style.Render(c.icons[e.Severity]),
		style.Render(e.Message),
	)
	if e.Detail != "" {
		line += c.timeStyle.Render(": " + e.Detail)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, line)
}
