package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Grove ASCII banner to w.
// The gradient is dropped when w is not a colour terminal.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"   ____                     ", "#34d399"},
		{"  / ___|_ __ _____   _____  ", "#10b981"},
		{" | |  _| '__/ _ \\ \\ / / _ \\ ", "#059669"},
		{" | |_| | | | (_) \\ V /  __/ ", "#047857"},
		{"  \\____|_|  \\___/ \\_/ \\___| ", "#065f46"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
