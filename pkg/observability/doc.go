/*
Package observability provides Prometheus instrumentation for the list manager.

Metrics exposes lifecycle hooks that count reconciliations, the operations
they produced and the interactions dispatched, and serves its registry over
HTTP.
*/
package observability
