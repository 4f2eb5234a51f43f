package driving

import (
	"context"

	"github.com/goforscrim/scrimsync/internal/core/domain"
)

// Syncer is the trigger interface exposed to the scheduler, the CLI and
// the HTTP API. Both operations are idempotent and safe to invoke
// repeatedly.
type Syncer interface {
	// SyncChannels fetches, extracts, deduplicates and persists records
	// for the given channel batch. A per-channel or per-message failure
	// is counted in the report, not returned as an error; only
	// configuration-level failures abort the run.
	SyncChannels(ctx context.Context, channelIDs []string, mode domain.SyncMode) (*domain.SyncReport, error)

	// Cleanup deletes records older than the retention horizon and
	// returns how many were removed.
	Cleanup(ctx context.Context) (int, error)
}
