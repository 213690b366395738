package kv

import "errors"

// ErrRolledBack is the reason recorded by Rollback when
// no other reason is given
var ErrRolledBack = errors.New("transaction rolled back")

// Outcome is the result of a transaction block: either
// commit, or rollback with a reason.
type Outcome struct {
	rollback bool
	reason   error
}

// Commit keeps every write made by the transaction block
func Commit() Outcome {
	return Outcome{}
}

// Rollback restores every key touched by the transaction
// block. reason may be nil.
func Rollback(reason error) Outcome {
	if reason == nil {
		reason = ErrRolledBack
	}

	return Outcome{rollback: true, reason: reason}
}

// RollbackIf is a convenience for blocks that produce
// an error: nil commits, anything else rolls back.
func RollbackIf(err error) Outcome {
	if err != nil {
		return Rollback(err)
	}

	return Commit()
}

// RolledBack returns true if the transaction was rolled back
func (outcome Outcome) RolledBack() bool {
	return outcome.rollback
}

// Reason returns why the transaction was rolled back, or
// nil if it committed
func (outcome Outcome) Reason() error {
	return outcome.reason
}
