package tier_test

import (
	"math"
	"testing"

	"github.com/hatidata/hati/pkg/tier"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input string
		want  tier.Tier
		ok    bool
	}{
		{"free", tier.Free, true},
		{"Free", tier.Free, true},
		{"FREE", tier.Free, true},
		{"cloud", tier.Cloud, true},
		{"Cloud", tier.Cloud, true},
		{"growth", tier.Growth, true},
		{"enterprise", tier.Enterprise, true},
		{"", tier.Free, false},
		{"pro", tier.Free, false},
		{"team", tier.Free, false},
	}

	for _, tc := range cases {
		got, ok := tier.Parse(tc.input)
		require.Equal(t, tc.ok, ok, "input %q", tc.input)
		require.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestTierString(t *testing.T) {
	require.Equal(t, "Free", tier.Free.String())
	require.Equal(t, "Cloud", tier.Cloud.String())
	require.Equal(t, "Growth", tier.Growth.String())
	require.Equal(t, "Enterprise", tier.Enterprise.String())
}

func TestLimitsFor(t *testing.T) {
	t.Run("free", func(t *testing.T) {
		limits := tier.LimitsFor(tier.Free)
		require.Equal(t, 5, limits.MaxTables)
		require.Equal(t, uint64(10_000), limits.MaxRowsPerTable)
		require.Equal(t, uint64(10*1024*1024), limits.MaxPushSizeBytes)
		require.False(t, limits.CanPullData)
		require.False(t, limits.CanPushVPC)
	})

	t.Run("cloud", func(t *testing.T) {
		limits := tier.LimitsFor(tier.Cloud)
		require.Equal(t, 50, limits.MaxTables)
		require.Equal(t, uint64(1_000_000), limits.MaxRowsPerTable)
		require.Equal(t, uint64(100*1024*1024), limits.MaxPushSizeBytes)
		require.True(t, limits.CanPullData)
		require.False(t, limits.CanPushVPC)
	})

	t.Run("growth", func(t *testing.T) {
		limits := tier.LimitsFor(tier.Growth)
		require.Equal(t, 500, limits.MaxTables)
		require.Equal(t, uint64(100_000_000), limits.MaxRowsPerTable)
		require.Equal(t, uint64(1024*1024*1024), limits.MaxPushSizeBytes)
		require.True(t, limits.CanPullData)
		require.True(t, limits.CanPushVPC)
	})

	t.Run("enterprise", func(t *testing.T) {
		limits := tier.LimitsFor(tier.Enterprise)
		require.Equal(t, math.MaxInt, limits.MaxTables)
		require.Equal(t, uint64(math.MaxUint64), limits.MaxRowsPerTable)
		require.True(t, limits.CanPullData)
		require.True(t, limits.CanPushVPC)
	})

	t.Run("is pure", func(t *testing.T) {
		for _, tr := range []tier.Tier{tier.Free, tier.Cloud, tier.Growth, tier.Enterprise} {
			require.Equal(t, tier.LimitsFor(tr), tier.LimitsFor(tr))
		}
	})

	t.Run("is monotonic", func(t *testing.T) {
		order := []tier.Tier{tier.Free, tier.Cloud, tier.Growth, tier.Enterprise}
		for i := 1; i < len(order); i++ {
			lower, higher := tier.LimitsFor(order[i-1]), tier.LimitsFor(order[i])
			require.GreaterOrEqual(t, higher.MaxTables, lower.MaxTables)
			require.GreaterOrEqual(t, higher.MaxRowsPerTable, lower.MaxRowsPerTable)
			require.GreaterOrEqual(t, higher.MaxPushSizeBytes, lower.MaxPushSizeBytes)
			if lower.CanPullData {
				require.True(t, higher.CanPullData)
			}
			if lower.CanPushVPC {
				require.True(t, higher.CanPushVPC)
			}
		}
	})
}

func TestResolve(t *testing.T) {
	t.Run("override wins", func(t *testing.T) {
		require.Equal(t, tier.Cloud, tier.Resolve("free", "cloud"))
		require.Equal(t, tier.Growth, tier.Resolve("free", "growth"))
		require.Equal(t, tier.Cloud, tier.Resolve("growth", "cloud"))
	})

	t.Run("configured when no override", func(t *testing.T) {
		require.Equal(t, tier.Growth, tier.Resolve("growth", ""))
		require.Equal(t, tier.Cloud, tier.Resolve("cloud", ""))
	})

	t.Run("defaults to free", func(t *testing.T) {
		require.Equal(t, tier.Free, tier.Resolve("", ""))
	})

	t.Run("unrecognized override falls back to free", func(t *testing.T) {
		// Documented permissive fallback, not an error.
		require.Equal(t, tier.Free, tier.Resolve("cloud", "pro"))
		require.Equal(t, tier.Free, tier.Resolve("", "bogus"))
	})

	t.Run("unrecognized configured tier falls back to free", func(t *testing.T) {
		require.Equal(t, tier.Free, tier.Resolve("platinum", ""))
	})
}

func TestFormatBytes(t *testing.T) {
	require.Equal(t, "500 B", tier.FormatBytes(500))
	require.Equal(t, "1.5 KB", tier.FormatBytes(1536))
	require.Equal(t, "10.0 MB", tier.FormatBytes(10*1024*1024))
	require.Equal(t, "1.00 GB", tier.FormatBytes(1024*1024*1024))
}

func TestUpgradeHint(t *testing.T) {
	require.Contains(t, tier.UpgradeHint(tier.Free), "Cloud")
	require.Contains(t, tier.UpgradeHint(tier.Cloud), "Growth")
	require.Empty(t, tier.UpgradeHint(tier.Growth))
	require.Empty(t, tier.UpgradeHint(tier.Enterprise))
}
