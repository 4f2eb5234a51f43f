// Package driving defines the interfaces the core exposes to its callers:
// the sync trigger consumed by the CLI, the HTTP API and the scheduler.
package driving
