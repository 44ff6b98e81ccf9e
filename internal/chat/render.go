package chat

import (
	"fmt"
	"io"
	"strings"

	"github.com/baalimago/searchchat/internal/agent"
	"github.com/baalimago/searchchat/internal/utils"
	"github.com/charmbracelet/lipgloss"
)

func infoStyle(raw bool) lipgloss.Style {
	if raw {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(utils.CurrentTheme().Warning))
}

func errorStyle(raw bool) lipgloss.Style {
	if raw {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(utils.CurrentTheme().Failure))
}

// renderer draws agent progress. Collapsed, every step is one line. Expanded,
// model output is streamed as it arrives and observations are boxed.
type renderer struct {
	out    io.Writer
	expand bool
	raw    bool
	// midLine is set while streamed tokens haven't been ended by a newline
	midLine bool

	label lipgloss.Style
	text  lipgloss.Style
	warn  lipgloss.Style
	box   lipgloss.Style
}

func newRenderer(out io.Writer, expand, raw bool) *renderer {
	theme := utils.CurrentTheme()
	r := &renderer{
		out:    out,
		expand: expand,
		raw:    raw,
		label:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Step)),
		text:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Thought)),
		warn:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Warning)),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(theme.Thought)).
			Padding(0, 1),
	}
	if raw {
		r.label = lipgloss.NewStyle()
		r.text = lipgloss.NewStyle()
		r.warn = lipgloss.NewStyle()
	}
	return r
}

func (r *renderer) drain(progress <-chan agent.Event) {
	for ev := range progress {
		r.render(ev)
	}
	r.endLine()
}

func (r *renderer) endLine() {
	if r.midLine {
		fmt.Fprintln(r.out)
		r.midLine = false
	}
}

func (r *renderer) render(ev agent.Event) {
	switch ev.Kind {
	case agent.EventToken:
		if !r.expand {
			return
		}
		fmt.Fprint(r.out, renderLines(r.text, ev.Text))
		r.midLine = !strings.HasSuffix(ev.Text, "\n")
	case agent.EventAction:
		r.endLine()
		fmt.Fprintf(r.out, "%v %v\n", r.label.Render(fmt.Sprintf("[%v] %v:", ev.Step+1, ev.Tool)), ev.Input)
	case agent.EventObservation:
		r.endLine()
		if r.expand && !r.raw {
			fmt.Fprintln(r.out, r.box.Width(r.boxWidth()).Render(ev.Text))
			return
		}
		fmt.Fprintln(r.out, r.oneLine("observation: ", ev.Text))
	case agent.EventParseError:
		r.endLine()
		fmt.Fprintln(r.out, r.warn.Render(fmt.Sprintf("[%v] %v", ev.Step+1, ev.Text)))
	case agent.EventFinal:
		r.endLine()
	}
}

// renderLines styles each line on its own. Rendering a multi-line string in one
// go pads every line to the widest, which breaks up streamed output.
func renderLines(st lipgloss.Style, s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = st.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}

// oneLine fits prefix+text on a single terminal row.
func (r *renderer) oneLine(prefix, text string) string {
	prefix = "  " + prefix
	if r.expand {
		return prefix + text
	}
	line, err := utils.FitToTermWidth(prefix, text, "", "", 1)
	if err != nil {
		return prefix + text
	}
	return r.text.Render(line)
}

func (r *renderer) boxWidth() int {
	w, _ := utils.TermWidth()
	// Border and padding take up four columns
	return max(20, w-4)
}
