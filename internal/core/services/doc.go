// Package services contains the core application logic: the sync engine
// that turns fetched channel messages into deduplicated stored records,
// and the scheduler that runs it on a cadence.
package services
