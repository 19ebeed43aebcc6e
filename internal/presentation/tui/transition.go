package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/muesli/termenv"
)

// Palette colors the text rendering of a transition.
type Palette struct {
	profile termenv.Profile
}

// NewPalette picks colors for the given profile. termenv.Ascii disables them.
func NewPalette(profile termenv.Profile) Palette {
	return Palette{profile: profile}
}

func (p Palette) paint(s, hex string) string {
	if p.profile == termenv.Ascii {
		return s
	}
	return termenv.String(s).Foreground(p.profile.Color(hex)).String()
}

// WriteText writes one line per operation:
//
//   - 1 delete
//   - 1 insert 3 "title 2"
//     ~ 0 update 0 "title update 0"
//     > 3 move from 1 "title 1"
func WriteText(w io.Writer, tr *domain.Transition[domain.Cell], p Palette) {
	if tr.IsEmpty() {
		fmt.Fprintln(w, p.paint("(no changes)", "#9ca3af"))
		return
	}
	for _, d := range tr.Deletions {
		fmt.Fprintln(w, p.paint(fmt.Sprintf("- %d delete", d.Index), "#f87171"))
	}
	for _, ins := range tr.Insertions {
		if ins.IsMove() {
			fmt.Fprintln(w, p.paint(fmt.Sprintf("> %d move from %d %s %q", ins.Index, *ins.PreviousIndex, ins.Item.RoomID, ins.Item.Title), "#facc15"))
			continue
		}
		fmt.Fprintln(w, p.paint(fmt.Sprintf("+ %d insert %s %q", ins.Index, ins.Item.RoomID, ins.Item.Title), "#4ade80"))
	}
	for _, u := range tr.Updates {
		fmt.Fprintln(w, p.paint(fmt.Sprintf("~ %d update %s %q (was %d)", u.Index, u.Item.RoomID, u.Item.Title, u.PreviousIndex), "#60a5fa"))
	}
	if s := tr.ScrollTo; s != nil {
		fmt.Fprintf(w, "@ scroll to %d (%s)\n", s.Index, s.Position.Kind)
	}
	if r := tr.Stationary; r != nil {
		fmt.Fprintf(w, "= hold %d..%d\n", r.Start, r.End)
	}
}

// Markdown summarizes a transition as a markdown document.
func Markdown(title string, tr *domain.Transition[domain.Cell]) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)

	c := tr.Counts()
	fmt.Fprintf(&sb, "**%d** deleted, **%d** inserted, **%d** moved, **%d** updated\n\n", c.Deleted, c.Inserted, c.Moved, c.Updated)

	if !tr.HasChanges() {
		sb.WriteString("_No list operations._\n\n")
	} else {
		sb.WriteString("| Op | Index | Previous | Room | Title |\n|---|---|---|---|---|\n")
		for _, d := range tr.Deletions {
			fmt.Fprintf(&sb, "| delete | | %d | | |\n", d.Index)
		}
		for _, ins := range tr.Insertions {
			op, prev := "insert", ""
			if ins.IsMove() {
				op, prev = "move", fmt.Sprint(*ins.PreviousIndex)
			}
			fmt.Fprintf(&sb, "| %s | %d | %s | %s | %s |\n", op, ins.Index, prev, ins.Item.RoomID, escapeCell(ins.Item.Title))
		}
		for _, u := range tr.Updates {
			fmt.Fprintf(&sb, "| update | %d | %d | %s | %s |\n", u.Index, u.PreviousIndex, u.Item.RoomID, escapeCell(u.Item.Title))
		}
		sb.WriteString("\n")
	}

	if s := tr.ScrollTo; s != nil {
		fmt.Fprintf(&sb, "Scroll to row %d, aligned %s.\n", s.Index, s.Position.Kind)
	}
	if r := tr.Stationary; r != nil {
		fmt.Fprintf(&sb, "Rows %d to %d stay in place.\n", r.Start, r.End)
	}
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
