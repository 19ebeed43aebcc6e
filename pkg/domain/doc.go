/*
Package domain contains the core models shared by the chat list reconciler and
the layers around it.

It is kept pure and free of I/O. Adapters (stores, HTTP, MCP) and the list
manager depend on it, never the other way around.

# Key Entities

  - Cell: one chat row. RoomID is its identity, Title its content and sort key.
  - Snapshot: the ordered cells of one logical list at one point in time.
  - Transition: the deletions, insertions and updates (plus scroll and
    stationary hints) that move a view from one snapshot to the next.
  - InteractionEvent: a user command on a row (select, pin, mute, delete, read).
*/
package domain
