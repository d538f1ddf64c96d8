package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionStepTransitions(t *testing.T) {
	t.Parallel()

	store, _ := testStore(t, testDocument())
	s, err := NewSession(store)
	require.NoError(t, err)

	require.Equal(t, StepAttendance, s.Step())
	require.Equal(t, StepAttendance, s.Retreat(), "retreat clamps at attendance")

	require.Equal(t, StepSavings, s.Advance())
	require.Equal(t, StepRepayment, s.Advance())
	require.Equal(t, StepDisbursement, s.Advance())
	require.Equal(t, StepSummary, s.Advance())
	require.Equal(t, StepSummary, s.Advance(), "advance clamps at summary")

	require.Equal(t, StepDisbursement, s.Retreat())
}

func TestSessionAttendanceToggle(t *testing.T) {
	t.Parallel()

	store, _ := testStore(t, testDocument())
	s, err := NewSession(store)
	require.NoError(t, err)

	s.ToggleAttendance("m1")
	s.ToggleAttendance("m2")
	require.True(t, s.Present("m1"))
	require.Equal(t, []string{"m1", "m2"}, s.Attendance())

	s.ToggleAttendance("m1")
	require.False(t, s.Present("m1"))
	require.Equal(t, []string{"m2"}, s.Attendance())
}

func TestSessionAbandonLeavesLedgerUntouched(t *testing.T) {
	t.Parallel()

	store, p := testStore(t, testDocument())
	s, err := NewSession(store)
	require.NoError(t, err)

	s.ToggleAttendance("m1")
	s.SetSaving("m1", 200)
	s.SetDisbursement("m1", 5000)
	// Session goes out of scope without Finalize: no save, no mutation.
	require.Equal(t, 0, p.saves)
	require.Empty(t, p.doc.Transactions)
	require.Equal(t, int64(2400), p.doc.Member("m1").TotalSavings)
}

func TestSessionFinalize(t *testing.T) {
	t.Parallel()

	doc := testDocument()
	doc.Loans = []Loan{{
		ID: "l1", MemberID: "m1",
		PrincipalAmount: 5000, BalanceRemaining: 4600,
		InterestRate: 24, Status: LoanActive,
	}}
	store, p := testStore(t, doc)

	s, err := NewSession(store)
	require.NoError(t, err)
	s.ToggleAttendance("m1")
	s.ToggleAttendance("m2")
	s.ToggleAttendance("m3")
	s.SetSaving("m1", 200)
	s.SetSaving("m2", 200)
	s.SetSaving("m3", 0)
	s.SetRepayment("m1", 500)
	s.SetDisbursement("m3", 5000)

	meeting, err := s.Finalize()
	require.NoError(t, err)
	require.Equal(t, 1, p.saves, "finalize persists the whole batch in one save")

	// Savings.
	require.Equal(t, int64(2600), p.doc.Member("m1").TotalSavings)
	require.Equal(t, int64(2000), p.doc.Member("m2").TotalSavings)
	require.Equal(t, int64(3000), p.doc.Member("m3").TotalSavings, "zero staged saving writes nothing")

	// Repayment split on the 4600 balance.
	var rep *Transaction
	for i := range p.doc.Transactions {
		if p.doc.Transactions[i].Type == TypeRepayment {
			rep = &p.doc.Transactions[i]
		}
	}
	require.NotNil(t, rep)
	require.Equal(t, int64(92), *rep.InterestPart)
	require.Equal(t, int64(408), *rep.PrincipalPart)
	require.Equal(t, int64(4192), p.doc.Loan("l1").BalanceRemaining)
	require.Equal(t, LoanActive, p.doc.Loan("l1").Status)

	// New disbursement for m3.
	l := p.doc.ActiveLoan("m3")
	require.NotNil(t, l)
	require.Equal(t, int64(5000), l.BalanceRemaining)
	require.Equal(t, float64(24), l.InterestRate)

	// Meeting summary totals come from the staged inputs.
	require.Len(t, meeting.Attendance, 3)
	require.Equal(t, int64(900), meeting.TotalCollected)
	require.Equal(t, int64(5000), meeting.TotalDisbursed)
	require.Len(t, p.doc.Meetings, 1)

	// All batch entries share one timestamp.
	for _, tx := range p.doc.Transactions {
		require.Equal(t, meeting.Date, tx.Date)
	}

	// The session is spent.
	_, err = s.Finalize()
	require.ErrorIs(t, err, ErrSessionClosed)
}

func TestSessionFinalizeDropsRepaymentWithoutActiveLoan(t *testing.T) {
	t.Parallel()

	store, p := testStore(t, testDocument())
	s, err := NewSession(store)
	require.NoError(t, err)
	s.ToggleAttendance("m2")
	s.SetRepayment("m2", 500)

	meeting, err := s.Finalize()
	require.NoError(t, err)
	require.Empty(t, p.doc.Transactions, "repayment without an active loan is dropped")
	// The staged figure still counts toward the collected total, which is
	// computed from inputs rather than applied effects.
	require.Equal(t, int64(500), meeting.TotalCollected)
}

func TestSessionFinalizeSkipsSecondActiveLoan(t *testing.T) {
	t.Parallel()

	doc := testDocument()
	doc.Loans = []Loan{{
		ID: "l1", MemberID: "m1",
		PrincipalAmount: 5000, BalanceRemaining: 4600,
		InterestRate: 24, Status: LoanActive,
	}}
	store, p := testStore(t, doc)

	s, err := NewSession(store)
	require.NoError(t, err)
	s.SetDisbursement("m1", 3000)

	_, err = s.Finalize()
	require.NoError(t, err)
	require.Len(t, p.doc.Loans, 1, "second active loan for a member is refused")
}

func TestSessionFinalizeReloadsPersistedState(t *testing.T) {
	t.Parallel()

	store, p := testStore(t, testDocument())
	s, err := NewSession(store)
	require.NoError(t, err)

	// A loan disbursed after the session snapshot is still found at
	// finalize time, because finalize re-reads the store.
	loan, err := store.DisburseLoan("m1", 5000)
	require.NoError(t, err)
	require.Nil(t, s.ActiveLoan("m1"), "snapshot predates the loan")

	s.SetRepayment("m1", 500)
	_, err = s.Finalize()
	require.NoError(t, err)
	require.Equal(t, int64(4600), p.doc.Loan(loan.ID).BalanceRemaining)
}
