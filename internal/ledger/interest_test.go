package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonthlyInterestDue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		balance int64
		rate    float64
		want    int64
	}{
		{"24 percent on 5000", 5000, 24, 100},
		{"24 percent on 4600", 4600, 24, 92},
		{"rounds half away from zero", 4975, 24, 100}, // 99.5 -> 100
		{"zero balance", 0, 24, 0},
		{"zero rate", 5000, 0, 0},
		{"12 percent on 1200", 1200, 12, 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			loan := Loan{BalanceRemaining: tc.balance, InterestRate: tc.rate}
			require.Equal(t, tc.want, MonthlyInterestDue(loan))
		})
	}
}

func TestSplitRepaymentInterestFirst(t *testing.T) {
	t.Parallel()

	loan := Loan{BalanceRemaining: 5000, InterestRate: 24}

	// A payment below the month's interest never touches principal.
	split := SplitRepayment(loan, 60)
	require.Equal(t, int64(60), split.InterestPaid)
	require.Equal(t, int64(0), split.PrincipalPaid)
	require.Equal(t, int64(5000), split.NewBalance)

	// Interest is covered fully before the remainder reduces principal.
	split = SplitRepayment(loan, 500)
	require.Equal(t, int64(100), split.InterestPaid)
	require.Equal(t, int64(400), split.PrincipalPaid)
	require.Equal(t, int64(4600), split.NewBalance)
}

func TestSplitRepaymentClampsBalance(t *testing.T) {
	t.Parallel()

	loan := Loan{BalanceRemaining: 4600, InterestRate: 24}
	split := SplitRepayment(loan, 10000)
	require.Equal(t, int64(92), split.InterestPaid)
	require.Equal(t, int64(9908), split.PrincipalPaid)
	require.Equal(t, int64(0), split.NewBalance, "overpayment must clamp, not go negative")
}

func TestSummarizeLoan(t *testing.T) {
	t.Parallel()

	loan := Loan{BalanceRemaining: 4600, InterestRate: 24}
	sum := SummarizeLoan(loan)
	require.Equal(t, int64(92), sum.InterestDue)
	require.Equal(t, int64(4692), sum.TotalDue)
	require.Equal(t, int64(4600), sum.Principal)
}
