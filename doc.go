/*
Package chatlist computes the minimal set of row operations that moves a chat
list view from one snapshot to the next.

Given the previously applied list and the new one, the reconciler produces a
transition: deletions in the old index space, insertions (including moves of
rows whose relative order changed) and in-place updates in the new index
space, plus an optional scroll anchor and a stationary range for the renderer.
Rows are identified by room ID and compared by title.

# Concept

The reconciler is pure. State lives in a Manager which keeps the last applied
snapshot per list in a store (memory or Redis) and serializes updates per list,
so the "previous" side of every diff is always what the view currently shows.
Renderers, transports (HTTP, MCP) and observability are adapters around that
core.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/chatlist"
		"github.com/aretw0/chatlist/pkg/domain"
	)

	func main() {
		ctx := context.Background()
		lists := chatlist.New()

		// First update: every row is an insertion
		if _, err := lists.Update(ctx, "inbox", []domain.Cell{
			{RoomID: "1", Title: "alice"},
			{RoomID: "2", Title: "bob"},
		}); err != nil {
			log.Fatal(err)
		}

		// Second update: bob is renamed, carol arrives
		tr, err := lists.Update(ctx, "inbox", []domain.Cell{
			{RoomID: "1", Title: "alice"},
			{RoomID: "2", Title: "bobby"},
			{RoomID: "3", Title: "carol"},
		})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(tr.Counts())
	}
*/
package chatlist
