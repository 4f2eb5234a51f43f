package extract

import (
	"strings"

	"github.com/goforscrim/scrimsync/internal/core/domain"
)

// matchRegion looks for a region keyword in the message text, then falls
// back to the channel's display name. The channel name recognises the
// full region set; message text only carries the two regions authors
// actually spell out.
func matchRegion(lower, channelName string) string {
	if containsAny(lower, "eu", "europe", "fr") {
		return domain.RegionEU
	}
	if containsAny(lower, "na", "us", "americas") {
		return domain.RegionNA
	}

	chLower := strings.ToLower(channelName)
	switch {
	case containsAny(chLower, "eu", "europe"):
		return domain.RegionEU
	case containsAny(chLower, "na", "us", "americas", "north-america", "northamerica"):
		return domain.RegionNA
	case containsAny(chLower, "apac", "asia", "oceania", "oce"):
		return domain.RegionAPAC
	case containsAny(chLower, "sa", "south-america", "southamerica", "latam"):
		return domain.RegionSA
	}
	return ""
}

// matchPlatform looks for a platform keyword in the message text, then in
// the channel's display name.
func matchPlatform(lower, channelName string) string {
	if strings.Contains(lower, "pc") {
		return domain.PlatformPC
	}
	if strings.Contains(lower, "console") {
		return domain.PlatformConsole
	}

	chLower := strings.ToLower(channelName)
	if strings.Contains(chLower, "pc") {
		return domain.PlatformPC
	}
	if strings.Contains(chLower, "console") {
		return domain.PlatformConsole
	}
	return ""
}
