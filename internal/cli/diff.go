package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/chatlist"
	"github.com/aretw0/chatlist/internal/presentation/graph"
	"github.com/aretw0/chatlist/internal/presentation/tui"
	"github.com/aretw0/chatlist/internal/snapshotfile"
	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/muesli/termenv"
)

// Output formats understood by the diff and demo commands.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatMermaid  = "mermaid"
)

// DiffOptions configures RunDiff.
type DiffOptions struct {
	OldPath    string
	NewPath    string
	AllUpdated bool
	ScrollTo   *int
	Format     string
	// Terminal enables colors and glamour rendering.
	Terminal bool
}

// RunDiff reconciles two snapshot files and writes the transition to w.
func RunDiff(opts DiffOptions, w io.Writer) error {
	previous, err := snapshotfile.Load(opts.OldPath)
	if err != nil {
		return err
	}
	current, err := snapshotfile.Load(opts.NewPath)
	if err != nil {
		return err
	}

	tr, err := chatlist.Reconcile(previous, current, opts.AllUpdated)
	if err != nil {
		return err
	}
	if opts.ScrollTo != nil {
		idx := *opts.ScrollTo
		if idx < 0 || idx >= len(current) {
			return fmt.Errorf("%w: scroll target %d for %d items", domain.ErrInvalidRange, idx, len(current))
		}
		tr.ScrollTo = domain.NewScrollToItem(idx)
	}

	return writeTransition(w, opts.Format, opts.Terminal, fmt.Sprintf("%s -> %s", opts.OldPath, opts.NewPath), previous, current, tr)
}

func writeTransition(w io.Writer, format string, terminal bool, title string, previous, current []domain.Cell, tr *domain.Transition[domain.Cell]) error {
	switch format {
	case "", FormatText:
		profile := termenv.Ascii
		if terminal {
			profile = termenv.ColorProfile()
		}
		tui.WriteText(w, tr, tui.NewPalette(profile))
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tr)
	case FormatMarkdown:
		md := tui.Markdown(title, tr)
		if terminal {
			render, err := tui.NewRenderer()
			if err != nil {
				return err
			}
			if md, err = render(md); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, md)
		return err
	case FormatMermaid:
		_, err := io.WriteString(w, graph.GenerateMermaid(previous, current, tr))
		return err
	}
	return fmt.Errorf("unknown format %q (want text, json, markdown or mermaid)", format)
}
