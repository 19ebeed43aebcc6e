/*
Package ports defines the driven ports (interfaces) around the list reconciler.

These interfaces decouple the list manager from external implementations,
allowing it to work with various storage backends, renderers and event sinks.

# Key Interfaces

  - SnapshotStore: Persists the last applied snapshot of each list.
  - DistributedLocker: Serializes updates of one list across replicas.
  - Renderer: Consumes transitions and applies them to a visual list.
  - EventHandler: Receives the interaction events emitted by the rendering layer.
*/
package ports
