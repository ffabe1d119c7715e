package tier

import (
	"context"

	"github.com/pkg/errors"
)

type (
	// Target is a push destination.
	Target string

	// Credentials identify the caller to the control plane. Presence of a
	// non-empty API key is the only authentication signal checked locally.
	Credentials struct {
		Endpoint string
		APIKey   string
	}

	// Candidate is one table proposed for a push, identified by name with its
	// current row count. Serialized size is measured lazily, and only for
	// tables that pass the row check.
	Candidate struct {
		Name string
		Rows uint64
	}

	// Skip records a table excluded from a push and why. Skips are not
	// errors; a push that skips every table still succeeds.
	Skip struct {
		Table  string
		Reason string
	}

	// PushReport is the outcome of evaluating a push: which tables passed the
	// quota checks and which were skipped, in the caller-supplied order.
	PushReport struct {
		Accepted []string
		Skipped  []Skip
	}

	// Measurer serializes a table to its wire format and reports the
	// resulting size in bytes. Implemented by the local engine, which exports
	// the table to Parquet.
	Measurer interface {
		MeasureExport(ctx context.Context, table string) (uint64, error)
	}
)

const (
	// TargetCloud pushes to the managed control plane.
	TargetCloud Target = "cloud"

	// TargetVPC pushes to a customer-managed VPC deployment.
	TargetVPC Target = "vpc"
)

// Skip reasons recorded in PushReport.
const (
	SkipReasonRows = "row limit exceeded"
	SkipReasonSize = "size limit exceeded"
)

// Fatal conditions raised by EvaluatePush and the pull gate. Callers match
// with errors.Is to attach the right guidance before exiting.
var (
	ErrInvalidTarget    = errors.New("target must be 'cloud' or 'vpc'")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrVPCNotAllowed    = errors.New("tier does not allow VPC push")
	ErrPullNotAllowed   = errors.New("tier does not allow pulling data")
	ErrTooManyTables    = errors.New("too many tables for tier")
)

// EvaluatePush applies the tier's quota policy to a proposed push.
//
// Gates are checked in a fixed order, each aborting the whole operation:
// target validity, authentication, VPC capability (vpc targets only), and
// table count. After that, tables are evaluated individually in the given
// order. Row and size overruns are recorded as skips, not failures; a
// partial push is useful, so the report carries whatever fit. The measurer
// is only invoked for tables that pass the row check, and a measurer error
// aborts the push (an export failure is I/O, not policy).
func EvaluatePush(ctx context.Context, t Tier, target Target, creds Credentials, candidates []Candidate, m Measurer) (*PushReport, error) {
	if target != TargetCloud && target != TargetVPC {
		return nil, errors.Wrapf(ErrInvalidTarget, "got '%s'", target)
	}

	if creds.APIKey == "" {
		return nil, ErrNotAuthenticated
	}

	limits := LimitsFor(t)

	if target == TargetVPC && !limits.CanPushVPC {
		return nil, errors.Wrapf(ErrVPCNotAllowed, "%s tier", t)
	}

	if len(candidates) > limits.MaxTables {
		return nil, errors.Wrapf(ErrTooManyTables, "%d tables exceeds %s tier limit of %d", len(candidates), t, limits.MaxTables)
	}

	report := &PushReport{}

	for _, c := range candidates {
		if c.Rows > limits.MaxRowsPerTable {
			report.Skipped = append(report.Skipped, Skip{Table: c.Name, Reason: SkipReasonRows})
			continue
		}

		size, err := m.MeasureExport(ctx, c.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to export table %s", c.Name)
		}

		if size > limits.MaxPushSizeBytes {
			report.Skipped = append(report.Skipped, Skip{Table: c.Name, Reason: SkipReasonSize})
			continue
		}

		report.Accepted = append(report.Accepted, c.Name)
	}

	return report, nil
}

// EvaluatePull reports whether a tier may pull remote data. There is no
// partial pull; callers treat false as fatal.
func EvaluatePull(t Tier) bool {
	return LimitsFor(t).CanPullData
}
