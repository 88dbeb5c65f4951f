// Package output provides adapters for writing application output.
package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
)

// ANSI palette indexes.
const (
	colorRed           = "1"
	colorGreen         = "2"
	colorBlue          = "4"
	colorPurple        = "5"
	colorBrightBlack   = "8"
	colorBrightMagenta = "13"
)

// Writer renders the prompt line to the configured output destination.
// By default, it writes to stdout.
type Writer struct {
	out      io.Writer
	renderer *lipgloss.Renderer
}

var _ domain.OutputWriter = (*Writer)(nil)

// NewWriter creates a new Writer that writes to stdout.
func NewWriter() *Writer {
	return NewWriterWithOutput(os.Stdout)
}

// NewWriterWithOutput creates a new Writer with a custom output destination.
// The ANSI profile is forced: the shell captures the output, so stdout is never a TTY.
func NewWriterWithOutput(out io.Writer) *Writer {
	r := lipgloss.NewRenderer(out)
	r.SetColorProfile(termenv.ANSI)
	return &Writer{out: out, renderer: r}
}

// WritePrompt writes `on {symbol}{id} ({bookmarks}) [{status}]` without a trailing
// newline, so the shell prompt continues on the same line.
// Each part is toggled by the display flags of the result's backend; an empty
// repository has no id, and empty bookmark or status parts are left out.
func (w *Writer) WritePrompt(result *domain.ResolverResult, display domain.DisplayOptions) error {
	_, err := fmt.Fprint(w.out, w.Format(result, display))
	return err
}

// Format renders the prompt line without writing it.
func (w *Writer) Format(result *domain.ResolverResult, display domain.DisplayOptions) string {
	flags := display.Flags(result.Kind)
	var b strings.Builder

	if flags.ShowPrefix {
		b.WriteString("on ")
		b.WriteString(w.paint(display.Symbol(result.Kind), colorBlue, flags.ShowColor))
	}

	if flags.ShowID && !result.Identity.Empty && result.Identity.ShortID != "" {
		b.WriteString(w.formatID(result, flags))
	}

	if flags.ShowName && len(result.Bookmarks) > 0 {
		space(&b)
		text := "(" + strings.Join(result.Bookmarks, ", ") + ")"
		b.WriteString(w.paint(text, colorGreen, flags.ShowColor))
	}

	if flags.ShowStatus && result.Status != nil {
		if status := StatusText(result.Status); status != "" {
			space(&b)
			b.WriteString(w.paint("["+status+"]", colorRed, flags.ShowColor))
		}
	}

	return b.String()
}

// formatID highlights the shortest unique jj change-id prefix the way `jj log` does.
func (w *Writer) formatID(result *domain.ResolverResult, flags domain.DisplayFlags) string {
	id := result.Identity.ShortID
	if result.Kind != domain.BackendJJ || !flags.ShowColor || !flags.ShowPrefixColor {
		return w.paint(id, colorPurple, flags.ShowColor)
	}

	n := min(max(result.Identity.UniquePrefixLen, 0), len(id))
	prefix, rest := id[:n], id[n:]
	out := w.paint(prefix, colorBrightMagenta, true)
	if rest != "" {
		out += w.paint(rest, colorBrightBlack, true)
	}
	return out
}

func (w *Writer) paint(text, color string, enabled bool) string {
	if !enabled || text == "" {
		return text
	}
	return w.renderer.NewStyle().Foreground(lipgloss.Color(color)).Render(text)
}

func space(b *strings.Builder) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
}

// StatusText maps status flags to their prompt symbols.
//
// jj, in order: ! conflict, ⇔ divergent, ? empty description, ⇡ bookmark not synced.
// git, in order: = conflicted, + staged, ! modified, ? untracked, ✘ deleted,
// ⇡N ahead and ⇣N behind of upstream.
func StatusText(status domain.StatusFlags) string {
	var b strings.Builder
	switch s := status.(type) {
	case domain.JJStatus:
		flag(&b, s.Conflicted, "!")
		flag(&b, s.Divergent, "⇔")
		flag(&b, s.EmptyDescription, "?")
		flag(&b, s.Unsynced, "⇡")
	case domain.GitStatus:
		flag(&b, s.Conflicted, "=")
		flag(&b, s.Staged, "+")
		flag(&b, s.Modified, "!")
		flag(&b, s.Untracked, "?")
		flag(&b, s.Deleted, "✘")
		flag(&b, s.Ahead > 0, "⇡"+strconv.Itoa(s.Ahead))
		flag(&b, s.Behind > 0, "⇣"+strconv.Itoa(s.Behind))
	}
	return b.String()
}

func flag(b *strings.Builder, set bool, symbol string) {
	if set {
		b.WriteString(symbol)
	}
}
