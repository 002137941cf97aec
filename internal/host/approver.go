package host

import (
	"context"

	"praxis/internal/process"
)

// Approver resolves breakpoint pauses. A nil return approves; ErrRejected
// declines; any other error aborts the run.
type Approver interface {
	Approve(ctx context.Context, runID string, bp process.Breakpoint) error
}

// ApproverFunc adapts a function to the Approver interface.
type ApproverFunc func(ctx context.Context, runID string, bp process.Breakpoint) error

// Approve implements Approver.
func (f ApproverFunc) Approve(ctx context.Context, runID string, bp process.Breakpoint) error {
	return f(ctx, runID, bp)
}

// AutoApprover approves every breakpoint. Used for unattended runs.
func AutoApprover() Approver {
	return ApproverFunc(func(context.Context, string, process.Breakpoint) error {
		return nil
	})
}

// DenyApprover rejects every breakpoint. Used to stop pipelines at their
// first review point.
func DenyApprover() Approver {
	return ApproverFunc(func(context.Context, string, process.Breakpoint) error {
		return process.ErrRejected
	})
}
