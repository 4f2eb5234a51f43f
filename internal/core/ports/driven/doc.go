// Package driven defines the interfaces the core consumes: the message
// source, the record and cursor stores, the scheduler store, and the
// contact notifier. Adapters implement these.
package driven
