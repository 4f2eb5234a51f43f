package extract

import "github.com/goforscrim/scrimsync/internal/core/domain"

// Warmup keywords are checked before scrim keywords so that "lfs warmup"
// classifies as a warmup.
var (
	warmupKeywords = []string{"warmup", "warm-up", "warm up", "lfw", "looking for warm"}
	scrimKeywords  = []string{"lfs", "scrim", "looking for scrim"}
)

// matchKind classifies the post. No keyword means unclassified; the
// message is never rejected on that basis.
func matchKind(lower string) domain.Kind {
	if containsAny(lower, warmupKeywords...) {
		return domain.KindWarmup
	}
	if containsAny(lower, scrimKeywords...) {
		return domain.KindScrim
	}
	return domain.KindUnclassified
}
