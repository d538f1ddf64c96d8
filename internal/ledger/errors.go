package ledger

import "errors"

var (
	// ErrAmountNotPositive is returned when a mutating operation receives a
	// zero or negative amount.
	ErrAmountNotPositive = errors.New("amount must be positive")

	// ErrMemberNotFound is returned when a referenced member does not exist.
	ErrMemberNotFound = errors.New("member not found")

	// ErrLoanNotFound is returned when a referenced loan does not exist.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrActiveLoan is returned when an operation would violate the active
	// loan constraints: deleting a member who still owes, or disbursing a
	// second loan to a member with one already open.
	ErrActiveLoan = errors.New("member has an active loan")

	// ErrSessionClosed is returned when a finalized meeting session is used
	// again.
	ErrSessionClosed = errors.New("meeting session already finalized")
)
