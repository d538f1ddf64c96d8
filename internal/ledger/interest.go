package ledger

import "math"

// RepaymentSplit is the outcome of applying a repayment to a loan snapshot.
type RepaymentSplit struct {
	InterestPaid  int64
	PrincipalPaid int64
	NewBalance    int64
}

// LoanSummary is a convenience projection of what a loan costs to settle now.
type LoanSummary struct {
	InterestDue int64
	TotalDue    int64
	Principal   int64
}

// MonthlyInterestDue computes one month of flat interest on the loan's
// current outstanding balance, rounded half away from zero. Interest is
// always recomputed from the live balance; the engine does not track accrual
// periods, so every repayment is assumed to cover exactly one month.
func MonthlyInterestDue(l Loan) int64 {
	monthlyRate := (l.InterestRate / 12) / 100
	return int64(math.Round(float64(l.BalanceRemaining) * monthlyRate))
}

// SplitRepayment splits a repayment into interest and principal. Interest is
// paid first and in full before any amount reduces principal; the balance is
// clamped at zero, so an overpayment is accepted but not tracked.
func SplitRepayment(l Loan, amount int64) RepaymentSplit {
	interestPaid := MonthlyInterestDue(l)
	if amount < interestPaid {
		interestPaid = amount
	}
	principalPaid := amount - interestPaid
	if principalPaid < 0 {
		principalPaid = 0
	}
	newBalance := l.BalanceRemaining - principalPaid
	if newBalance < 0 {
		newBalance = 0
	}
	return RepaymentSplit{
		InterestPaid:  interestPaid,
		PrincipalPaid: principalPaid,
		NewBalance:    newBalance,
	}
}

// SummarizeLoan reports interest due, total due, and outstanding principal.
func SummarizeLoan(l Loan) LoanSummary {
	due := MonthlyInterestDue(l)
	return LoanSummary{
		InterestDue: due,
		TotalDue:    due + l.BalanceRemaining,
		Principal:   l.BalanceRemaining,
	}
}
