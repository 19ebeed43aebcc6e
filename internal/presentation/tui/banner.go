package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the chatlist banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`       _           _   _ _     _   `, "#38bdf8"},
		{`   ___| |__   __ _| |_| (_)___| |_ `, "#60a5fa"},
		{`  / __| '_ \ / _' | __| | / __| __|`, "#818cf8"},
		{` | (__| | | | (_| | |_| | \__ \ |_ `, "#a78bfa"},
		{`  \___|_| |_|\__,_|\__|_|_|___/\__|`, "#c084fc"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
