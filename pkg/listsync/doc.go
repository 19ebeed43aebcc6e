/*
Package listsync owns the authoritative snapshot of each chat list and turns
new snapshots into transitions.

A Manager serializes updates per list ID, so every reconciliation runs with
previous set to the last applied snapshot, while different lists proceed
concurrently. With a DistributedLocker the guarantee extends across replicas
that share a SnapshotStore.
*/
package listsync
