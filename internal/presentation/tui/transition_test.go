package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func sampleTransition() *domain.Transition[domain.Cell] {
	prev := 1
	tr := domain.NewTransition[domain.Cell]()
	tr.Deletions = []domain.DeleteItem{{Index: 2}}
	tr.Insertions = []domain.InsertItem[domain.Cell]{
		{Index: 0, Item: domain.Cell{RoomID: "9", Title: "new | room"}},
		{Index: 2, Item: domain.Cell{RoomID: "4", Title: "moved"}, PreviousIndex: &prev},
	}
	tr.Updates = []domain.UpdateItem[domain.Cell]{{Index: 1, PreviousIndex: 0, Item: domain.Cell{RoomID: "3", Title: "renamed"}}}
	tr.ScrollTo = &domain.ScrollToItem{Index: 2, Position: domain.ScrollPosition{Kind: domain.ScrollBottom}}
	return tr
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	WriteText(&buf, sampleTransition(), NewPalette(termenv.Ascii))

	want := strings.Join([]string{
		"- 2 delete",
		`+ 0 insert 9 "new | room"`,
		`> 2 move from 1 4 "moved"`,
		`~ 1 update 3 "renamed" (was 0)`,
		"@ scroll to 2 (bottom)",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestWriteText_Empty(t *testing.T) {
	var buf bytes.Buffer
	WriteText(&buf, domain.NewTransition[domain.Cell](), NewPalette(termenv.Ascii))
	assert.Equal(t, "(no changes)\n", buf.String())
}

func TestMarkdown(t *testing.T) {
	md := Markdown("Update", sampleTransition())

	assert.Contains(t, md, "# Update")
	assert.Contains(t, md, "**1** deleted, **1** inserted, **1** moved, **1** updated")
	assert.Contains(t, md, `| insert | 0 |  | 9 | new \| room |`)
	assert.Contains(t, md, "| move | 2 | 1 | 4 | moved |")
	assert.Contains(t, md, "Scroll to row 2, aligned bottom.")
}
