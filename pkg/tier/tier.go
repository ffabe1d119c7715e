package tier

import (
	"fmt"
	"math"
	"strings"

	"github.com/hatidata/hati/pkg/consts"
)

// Tier is a HatiData subscription level. Tiers gate cloud features and
// determine the quota limits applied before any data leaves the local
// database.
type Tier int

const (
	// Free is the default tier for unconfigured projects.
	Free Tier = iota

	// Cloud unlocks remote sync with moderate limits.
	Cloud

	// Growth unlocks VPC targets and high limits.
	Growth

	// Enterprise has no enforced limits.
	Enterprise
)

type (
	// Limits holds the per-tier quotas enforced before pushing data. Values
	// are derived purely from the Tier; they are never persisted or mutated.
	Limits struct {
		// MaxTables is the maximum number of tables per push operation
		MaxTables int

		// MaxRowsPerTable is the maximum rows per individual table
		MaxRowsPerTable uint64

		// MaxPushSizeBytes is the maximum serialized (Parquet) size per table
		MaxPushSizeBytes uint64

		// CanPullData reports whether the tier may pull remote data
		CanPullData bool

		// CanPushVPC reports whether the tier may push to VPC targets
		CanPushVPC bool
	}
)

// Parse parses a tier name case-insensitively. The second return value is
// false for unrecognized names.
func Parse(s string) (Tier, bool) {
	switch strings.ToLower(s) {
	case "free":
		return Free, true
	case "cloud":
		return Cloud, true
	case "growth":
		return Growth, true
	case "enterprise":
		return Enterprise, true
	default:
		return Free, false
	}
}

// String returns the user-facing display name.
func (t Tier) String() string {
	switch t {
	case Cloud:
		return "Cloud"
	case Growth:
		return "Growth"
	case Enterprise:
		return "Enterprise"
	default:
		return "Free"
	}
}

// LimitsFor returns the quota limits for a tier. The mapping is constant for
// the life of the process.
func LimitsFor(t Tier) Limits {
	switch t {
	case Cloud:
		return Limits{
			MaxTables:        50,
			MaxRowsPerTable:  1_000_000,
			MaxPushSizeBytes: 100 * 1024 * 1024,
			CanPullData:      true,
			CanPushVPC:       false,
		}
	case Growth:
		return Limits{
			MaxTables:        500,
			MaxRowsPerTable:  100_000_000,
			MaxPushSizeBytes: 1024 * 1024 * 1024,
			CanPullData:      true,
			CanPushVPC:       true,
		}
	case Enterprise:
		return Limits{
			MaxTables:        math.MaxInt,
			MaxRowsPerTable:  math.MaxUint64,
			MaxPushSizeBytes: math.MaxUint64,
			CanPullData:      true,
			CanPushVPC:       true,
		}
	default:
		return Limits{
			MaxTables:        5,
			MaxRowsPerTable:  10_000,
			MaxPushSizeBytes: 10 * 1024 * 1024,
			CanPullData:      false,
			CanPushVPC:       false,
		}
	}
}

// Resolve determines the effective tier for an operation.
//
// Priority: override > configured > Free. An unrecognized override falls back
// to Free rather than failing; this is deliberate (the most restrictive tier
// wins when the input is garbage) and matches the behavior users see today.
func Resolve(configured, override string) Tier {
	if override != "" {
		t, _ := Parse(override)
		return t
	}

	if configured != "" {
		if t, ok := Parse(configured); ok {
			return t
		}
	}

	return Free
}

// FormatBytes renders a byte count for human-facing output.
func FormatBytes(bytes uint64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	case bytes < 1024*1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	default:
		return fmt.Sprintf("%.2f GB", float64(bytes)/(1024*1024*1024))
	}
}

// UpgradeHint returns upgrade guidance for tiers that have somewhere to go.
// Growth and Enterprise return an empty string.
func UpgradeHint(t Tier) string {
	switch t {
	case Free:
		return fmt.Sprintf("Upgrade to Cloud ($29/mo) for higher limits: %s", consts.PricingURL)
	case Cloud:
		return fmt.Sprintf("Upgrade to Growth for VPC push and higher limits: %s", consts.PricingURL)
	default:
		return ""
	}
}
