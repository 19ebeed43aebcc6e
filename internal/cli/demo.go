package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/aretw0/chatlist/internal/presentation/tui"
	"github.com/aretw0/chatlist/pkg/adapters/listview"
	"github.com/aretw0/chatlist/pkg/adapters/memory"
	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/aretw0/chatlist/pkg/listsync"
	"github.com/aretw0/chatlist/pkg/ports"
	"github.com/aretw0/chatlist/pkg/registry"
	"github.com/aretw0/chatlist/pkg/viewmodel"
	"github.com/muesli/termenv"
)

// DemoListID is the list the demo drives.
const DemoListID = "demo"

// DemoOps are the steps the demo understands, in the order of the demo buttons.
var DemoOps = []string{"insert", "delete", "update", "batch", "last"}

// DemoOptions configures RunDemo.
type DemoOptions struct {
	Count    int
	Ops      []string
	Terminal bool
	Banner   bool
}

// RunDemo drives the mock view model through the list manager, printing every
// transition the attached view applies. It ends with a few interaction events;
// delete_peer removes the row through a regular update.
func RunDemo(ctx context.Context, opts DemoOptions, w io.Writer, logger *slog.Logger) error {
	for _, op := range opts.Ops {
		if !slices.Contains(DemoOps, op) {
			return fmt.Errorf("unknown demo op %q (want one of %v)", op, DemoOps)
		}
	}

	profile := termenv.Ascii
	if opts.Terminal {
		profile = termenv.ColorProfile()
	}
	palette := tui.NewPalette(profile)
	if opts.Banner {
		tui.PrintBanner(w)
	}

	var mgr *listsync.Manager
	events := registry.NewRegistry()
	events.SetFallback(ports.EventHandlerFunc(func(ctx context.Context, e domain.InteractionEvent) error {
		printSystemMessage(w, "%s on room %s (value=%t)", e.Type, e.RoomID, e.Value)
		return nil
	}))
	events.RegisterFunc(domain.EventDeletePeer, func(ctx context.Context, e domain.InteractionEvent) error {
		printSystemMessage(w, "%s on room %s (value=%t)", e.Type, e.RoomID, e.Value)
		snapshot, err := mgr.Load(ctx, e.ListID)
		if err != nil {
			return err
		}
		cells := slices.DeleteFunc(snapshot.Cells, func(c domain.Cell) bool { return c.RoomID == e.RoomID })
		tr, err := mgr.Update(ctx, e.ListID, cells)
		if err != nil {
			return err
		}
		tui.WriteText(w, tr, palette)
		return nil
	})
	mgr = listsync.NewManager(memory.NewStore(),
		listsync.WithLogger(logger),
		listsync.WithEventHandler(events),
	)

	view := listview.New()
	detach, err := mgr.Attach(ctx, DemoListID, view)
	if err != nil {
		return err
	}
	defer detach()

	vm := viewmodel.New()
	vm.MockData(opts.Count)

	step := func(name string, tr *domain.Transition[domain.Cell]) {
		c := tr.Counts()
		printSystemMessage(w, "%s: %d rows (-%d +%d >%d ~%d)", name, len(view.Rows()), c.Deleted, c.Inserted, c.Moved, c.Updated)
		tui.WriteText(w, tr, palette)
	}

	tr, err := mgr.Update(ctx, DemoListID, vm.Cells())
	if err != nil {
		return err
	}
	step("initial", tr)

	for _, op := range opts.Ops {
		switch op {
		case "insert":
			vm.InsertOne()
		case "delete":
			vm.DeleteLast()
		case "update":
			vm.UpdateLast()
		case "batch":
			vm.BatchUpdate()
		case "last":
			if tr, err = mgr.ScrollToLast(ctx, DemoListID); err != nil {
				return err
			}
			step(op, tr)
			continue
		}
		if tr, err = mgr.Update(ctx, DemoListID, vm.Cells(), listsync.WithScrollTo(vm.Len()-1)); err != nil {
			return err
		}
		step(op, tr)
	}

	rows := view.Rows()
	if len(rows) == 0 {
		return nil
	}
	first := rows[0].RoomID
	for _, e := range []domain.InteractionEvent{
		{Type: domain.EventPeerSelected, RoomID: first},
		{Type: domain.EventSetPinned, RoomID: first, Value: true},
		{Type: domain.EventDeletePeer, RoomID: first},
	} {
		e.ListID = DemoListID
		if err := mgr.Dispatch(ctx, e); err != nil {
			return err
		}
	}
	printSystemMessage(w, "view settled with %d rows after %d transitions", len(view.Rows()), view.Applied())
	return nil
}
