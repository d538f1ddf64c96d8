package ledger

import "time"

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanActive LoanStatus = "ACTIVE"
	LoanClosed LoanStatus = "CLOSED"
)

// TransactionType distinguishes ledger entries.
type TransactionType string

const (
	TypeSaving       TransactionType = "SAVING"
	TypeRepayment    TransactionType = "REPAYMENT"
	TypeDisbursement TransactionType = "DISBURSEMENT"
)

// Group holds the group-level configuration. It is written once when the
// document is seeded and never mutated by ledger operations.
type Group struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	MonthlySaving int64   `json:"monthlySaving"`
	InterestRate  float64 `json:"interestRate"` // annual percent, flat on outstanding balance
}

// Member is a group member with a denormalized running savings total.
type Member struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	TotalSavings int64  `json:"totalSavings"`
}

// Loan is a disbursed loan. PrincipalAmount is immutable; BalanceRemaining
// is maintained by repayments and reversals. InterestRate is captured from
// the group at disbursement time and does not track later rate changes.
type Loan struct {
	ID               string     `json:"id"`
	MemberID         string     `json:"memberId"`
	PrincipalAmount  int64      `json:"principalAmount"`
	BalanceRemaining int64      `json:"balanceRemaining"`
	InterestRate     float64    `json:"interestRate"`
	StartDate        time.Time  `json:"startDate"`
	Status           LoanStatus `json:"status"`
}

// Transaction is one ledger entry. InterestPart and PrincipalPart are only
// recorded for repayments so that reversal can be exact; older records may
// lack them.
type Transaction struct {
	ID            string          `json:"id"`
	MemberID      string          `json:"memberId"`
	LoanID        string          `json:"loanId,omitempty"`
	Type          TransactionType `json:"type"`
	Amount        int64           `json:"amount"`
	InterestPart  *int64          `json:"interestPart,omitempty"`
	PrincipalPart *int64          `json:"principalPart,omitempty"`
	Date          time.Time       `json:"date"`
	Note          string          `json:"note,omitempty"`
}

// Meeting is the append-only summary of a finalized meeting session.
type Meeting struct {
	ID             string    `json:"id"`
	Date           time.Time `json:"date"`
	Attendance     []string  `json:"attendance"`
	TotalCollected int64     `json:"totalCollected"`
	TotalDisbursed int64     `json:"totalDisbursed"`
}

// Document is the aggregate root: the whole ledger as read from and written
// to the storage provider in one piece.
type Document struct {
	Group        Group         `json:"group"`
	Members      []Member      `json:"members"`
	Loans        []Loan        `json:"loans"`
	Transactions []Transaction `json:"transactions"`
	Meetings     []Meeting     `json:"meetings"`
}

// Member returns a pointer into the document's member slice, or nil.
func (d *Document) Member(id string) *Member {
	for i := range d.Members {
		if d.Members[i].ID == id {
			return &d.Members[i]
		}
	}
	return nil
}

// Loan returns a pointer into the document's loan slice, or nil.
func (d *Document) Loan(id string) *Loan {
	for i := range d.Loans {
		if d.Loans[i].ID == id {
			return &d.Loans[i]
		}
	}
	return nil
}

// ActiveLoan returns the member's active loan, or nil. The store enforces at
// most one active loan per member.
func (d *Document) ActiveLoan(memberID string) *Loan {
	for i := range d.Loans {
		if d.Loans[i].MemberID == memberID && d.Loans[i].Status == LoanActive {
			return &d.Loans[i]
		}
	}
	return nil
}

// Transaction returns a pointer into the document's transaction slice, or nil.
func (d *Document) Transaction(id string) *Transaction {
	for i := range d.Transactions {
		if d.Transactions[i].ID == id {
			return &d.Transactions[i]
		}
	}
	return nil
}

// TotalSavings sums the running savings totals of all members.
func (d *Document) TotalSavings() int64 {
	var total int64
	for _, m := range d.Members {
		total += m.TotalSavings
	}
	return total
}
