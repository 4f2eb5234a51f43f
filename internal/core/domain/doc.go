// Package domain contains the core value objects of the scrim ingestion
// pipeline: raw channel messages, extracted records, stored records, sync
// cursors and reports. Domain types carry no persistence or transport
// concerns; those live in the adapters.
package domain
