package tier_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/hatidata/hati/pkg/tier"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// fakeMeasurer returns canned sizes and records how often it is invoked, so
// tests can assert that fatal gates fire before any table is exported.
type fakeMeasurer struct {
	sizes map[string]uint64
	calls int
}

func (m *fakeMeasurer) MeasureExport(_ context.Context, table string) (uint64, error) {
	m.calls++
	size, ok := m.sizes[table]
	if !ok {
		return 0, errors.Errorf("no such table: %s", table)
	}
	return size, nil
}

var testCreds = tier.Credentials{Endpoint: "https://api.hatidata.com", APIKey: "hd_live_test123"}

func TestEvaluatePush_TargetValidation(t *testing.T) {
	m := &fakeMeasurer{}

	_, err := tier.EvaluatePush(context.Background(), tier.Enterprise, "staging", testCreds, nil, m)
	require.ErrorIs(t, err, tier.ErrInvalidTarget)
	require.Zero(t, m.calls)

	// Target is validated before anything else, including auth.
	_, err = tier.EvaluatePush(context.Background(), tier.Free, "prod", tier.Credentials{}, nil, m)
	require.ErrorIs(t, err, tier.ErrInvalidTarget)
}

func TestEvaluatePush_AuthGate(t *testing.T) {
	m := &fakeMeasurer{sizes: map[string]uint64{"events": 100}}
	candidates := []tier.Candidate{{Name: "events", Rows: 10}}

	_, err := tier.EvaluatePush(context.Background(), tier.Enterprise, tier.TargetCloud, tier.Credentials{}, candidates, m)
	require.ErrorIs(t, err, tier.ErrNotAuthenticated)
	require.Zero(t, m.calls)
}

func TestEvaluatePush_VPCGate(t *testing.T) {
	m := &fakeMeasurer{sizes: map[string]uint64{"events": 100}}
	candidates := []tier.Candidate{{Name: "events", Rows: 10}}

	// VPC is all-or-nothing: Free and Cloud fail fatally regardless of
	// table contents.
	for _, tr := range []tier.Tier{tier.Free, tier.Cloud} {
		_, err := tier.EvaluatePush(context.Background(), tr, tier.TargetVPC, testCreds, candidates, m)
		require.ErrorIs(t, err, tier.ErrVPCNotAllowed, "tier %s", tr)
		require.Zero(t, m.calls)
	}

	for _, tr := range []tier.Tier{tier.Growth, tier.Enterprise} {
		report, err := tier.EvaluatePush(context.Background(), tr, tier.TargetVPC, testCreds, candidates, m)
		require.NoError(t, err, "tier %s", tr)
		require.Equal(t, []string{"events"}, report.Accepted)
	}
}

func TestEvaluatePush_TableCountGate(t *testing.T) {
	m := &fakeMeasurer{}

	candidates := make([]tier.Candidate, 6)
	for i := range candidates {
		candidates[i] = tier.Candidate{Name: fmt.Sprintf("t%d", i), Rows: 1}
	}

	// 6 > Free's max of 5: fatal, with zero tables evaluated individually.
	_, err := tier.EvaluatePush(context.Background(), tier.Free, tier.TargetCloud, testCreds, candidates, m)
	require.ErrorIs(t, err, tier.ErrTooManyTables)
	require.Zero(t, m.calls)
}

func TestEvaluatePush_RowLimitSkips(t *testing.T) {
	m := &fakeMeasurer{sizes: map[string]uint64{"small": 100}}

	report, err := tier.EvaluatePush(context.Background(), tier.Cloud, tier.TargetCloud, testCreds,
		[]tier.Candidate{
			{Name: "big", Rows: 2_000_000},
			{Name: "small", Rows: 10},
		}, m)
	require.NoError(t, err)
	require.Equal(t, []tier.Skip{{Table: "big", Reason: "row limit exceeded"}}, report.Skipped)
	require.Equal(t, []string{"small"}, report.Accepted)

	// The oversized table was never exported.
	require.Equal(t, 1, m.calls)
}

func TestEvaluatePush_SizeLimitSkips(t *testing.T) {
	m := &fakeMeasurer{sizes: map[string]uint64{
		"huge": 11 * 1024 * 1024, // over Free's 10 MB
		"tiny": 1024,
	}}

	report, err := tier.EvaluatePush(context.Background(), tier.Free, tier.TargetCloud, testCreds,
		[]tier.Candidate{
			{Name: "huge", Rows: 10},
			{Name: "tiny", Rows: 10},
		}, m)
	require.NoError(t, err)
	require.Equal(t, []tier.Skip{{Table: "huge", Reason: "size limit exceeded"}}, report.Skipped)
	require.Equal(t, []string{"tiny"}, report.Accepted)
}

func TestEvaluatePush_WithinLimits(t *testing.T) {
	m := &fakeMeasurer{sizes: map[string]uint64{"events": 500 * 1024 * 1024}}

	// 500 MB is within Growth's 1 GB per-table cap.
	report, err := tier.EvaluatePush(context.Background(), tier.Growth, tier.TargetCloud, testCreds,
		[]tier.Candidate{{Name: "events", Rows: 10}}, m)
	require.NoError(t, err)
	require.Equal(t, []string{"events"}, report.Accepted)
	require.Empty(t, report.Skipped)
}

func TestEvaluatePush_AllSkippedIsStillSuccess(t *testing.T) {
	m := &fakeMeasurer{}

	report, err := tier.EvaluatePush(context.Background(), tier.Free, tier.TargetCloud, testCreds,
		[]tier.Candidate{
			{Name: "a", Rows: 20_000},
			{Name: "b", Rows: 30_000},
		}, m)
	require.NoError(t, err)
	require.Empty(t, report.Accepted)
	require.Len(t, report.Skipped, 2)
}

func TestEvaluatePush_PreservesCallerOrder(t *testing.T) {
	m := &fakeMeasurer{sizes: map[string]uint64{"c": 1, "a": 1, "b": 1}}

	report, err := tier.EvaluatePush(context.Background(), tier.Cloud, tier.TargetCloud, testCreds,
		[]tier.Candidate{
			{Name: "c", Rows: 1},
			{Name: "a", Rows: 1},
			{Name: "b", Rows: 1},
		}, m)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "a", "b"}, report.Accepted)
}

func TestEvaluatePush_MeasurerErrorIsFatal(t *testing.T) {
	m := &fakeMeasurer{sizes: map[string]uint64{}}

	_, err := tier.EvaluatePush(context.Background(), tier.Cloud, tier.TargetCloud, testCreds,
		[]tier.Candidate{{Name: "missing", Rows: 1}}, m)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing")
}

func TestEvaluatePull(t *testing.T) {
	require.False(t, tier.EvaluatePull(tier.Free))
	require.True(t, tier.EvaluatePull(tier.Cloud))
	require.True(t, tier.EvaluatePull(tier.Growth))
	require.True(t, tier.EvaluatePull(tier.Enterprise))
}
