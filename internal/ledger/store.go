package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Provider persists the ledger document as a whole. Load returns the seeded
// default document when nothing has been saved yet. Both calls are
// synchronous; the store never suspends mid-operation.
type Provider interface {
	Load() (Document, error)
	Save(Document) error
}

// Store owns the ledger aggregate. Every operation reads the whole document
// from the provider, mutates it in memory, and writes it back whole. The
// store assumes a single operator: there is no locking and no
// optimistic-concurrency check.
type Store struct {
	Provider Provider
	Log      logrus.FieldLogger

	// Now supplies timestamps; tests override it. Nil means time.Now.
	Now func() time.Time
}

func (s *Store) timestamp() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Store) log() logrus.FieldLogger {
	if s.Log != nil {
		return s.Log
	}
	l := logrus.New()
	l.SetOutput(nopWriter{})
	return l
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// Load exposes the current document for read-only views.
func (s *Store) Load() (Document, error) {
	return s.Provider.Load()
}

// AddMember registers a new member with zero savings.
func (s *Store) AddMember(name, phone string) (Member, error) {
	doc, err := s.Provider.Load()
	if err != nil {
		return Member{}, fmt.Errorf("load ledger: %w", err)
	}

	m := Member{
		ID:    uuid.NewString(),
		Name:  name,
		Phone: phone,
	}
	doc.Members = append(doc.Members, m)

	if err := s.Provider.Save(doc); err != nil {
		return Member{}, fmt.Errorf("save ledger: %w", err)
	}
	s.log().WithFields(logrus.Fields{"member": m.ID, "name": name}).Info("member added")
	return m, nil
}

// DeleteMember removes a member and cascades to their transactions and
// loans. It refuses while the member has an active loan.
func (s *Store) DeleteMember(id string) error {
	doc, err := s.Provider.Load()
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	if doc.Member(id) == nil {
		return ErrMemberNotFound
	}
	if doc.ActiveLoan(id) != nil {
		return ErrActiveLoan
	}

	members := doc.Members[:0]
	for _, m := range doc.Members {
		if m.ID != id {
			members = append(members, m)
		}
	}
	doc.Members = members

	loans := doc.Loans[:0]
	for _, l := range doc.Loans {
		if l.MemberID != id {
			loans = append(loans, l)
		}
	}
	doc.Loans = loans

	txs := doc.Transactions[:0]
	for _, t := range doc.Transactions {
		if t.MemberID != id {
			txs = append(txs, t)
		}
	}
	doc.Transactions = txs

	if err := s.Provider.Save(doc); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	s.log().WithField("member", id).Info("member deleted")
	return nil
}

// RecordSaving appends a SAVING transaction and increments the member's
// running total in the same write.
func (s *Store) RecordSaving(memberID string, amount int64) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrAmountNotPositive
	}
	doc, err := s.Provider.Load()
	if err != nil {
		return Transaction{}, fmt.Errorf("load ledger: %w", err)
	}
	m := doc.Member(memberID)
	if m == nil {
		return Transaction{}, ErrMemberNotFound
	}

	tx := Transaction{
		ID:       uuid.NewString(),
		MemberID: memberID,
		Type:     TypeSaving,
		Amount:   amount,
		Date:     s.timestamp(),
	}
	m.TotalSavings += amount
	doc.Transactions = append(doc.Transactions, tx)

	if err := s.Provider.Save(doc); err != nil {
		return Transaction{}, fmt.Errorf("save ledger: %w", err)
	}
	s.log().WithFields(logrus.Fields{"member": memberID, "amount": amount}).Info("saving recorded")
	return tx, nil
}

// DisburseLoan opens a new active loan at the group's current interest rate
// and records the linked DISBURSEMENT transaction. A member may hold at most
// one active loan.
func (s *Store) DisburseLoan(memberID string, amount int64) (Loan, error) {
	if amount <= 0 {
		return Loan{}, ErrAmountNotPositive
	}
	doc, err := s.Provider.Load()
	if err != nil {
		return Loan{}, fmt.Errorf("load ledger: %w", err)
	}
	if doc.Member(memberID) == nil {
		return Loan{}, ErrMemberNotFound
	}
	if doc.ActiveLoan(memberID) != nil {
		return Loan{}, ErrActiveLoan
	}

	now := s.timestamp()
	loan := Loan{
		ID:               uuid.NewString(),
		MemberID:         memberID,
		PrincipalAmount:  amount,
		BalanceRemaining: amount,
		InterestRate:     doc.Group.InterestRate,
		StartDate:        now,
		Status:           LoanActive,
	}
	doc.Loans = append(doc.Loans, loan)
	doc.Transactions = append(doc.Transactions, Transaction{
		ID:       uuid.NewString(),
		MemberID: memberID,
		LoanID:   loan.ID,
		Type:     TypeDisbursement,
		Amount:   amount,
		Date:     now,
	})

	if err := s.Provider.Save(doc); err != nil {
		return Loan{}, fmt.Errorf("save ledger: %w", err)
	}
	s.log().WithFields(logrus.Fields{"member": memberID, "loan": loan.ID, "amount": amount}).Info("loan disbursed")
	return loan, nil
}

// RecordRepayment splits a repayment into interest and principal, records
// both parts on the transaction, and updates the loan. The loan closes when
// its balance reaches exactly zero.
func (s *Store) RecordRepayment(loanID string, amount int64) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrAmountNotPositive
	}
	doc, err := s.Provider.Load()
	if err != nil {
		return Transaction{}, fmt.Errorf("load ledger: %w", err)
	}
	loan := doc.Loan(loanID)
	if loan == nil {
		return Transaction{}, ErrLoanNotFound
	}

	split := SplitRepayment(*loan, amount)
	tx := Transaction{
		ID:            uuid.NewString(),
		MemberID:      loan.MemberID,
		LoanID:        loan.ID,
		Type:          TypeRepayment,
		Amount:        amount,
		InterestPart:  &split.InterestPaid,
		PrincipalPart: &split.PrincipalPaid,
		Date:          s.timestamp(),
	}
	loan.BalanceRemaining = split.NewBalance
	if split.NewBalance == 0 {
		loan.Status = LoanClosed
	} else {
		loan.Status = LoanActive
	}
	doc.Transactions = append(doc.Transactions, tx)

	if err := s.Provider.Save(doc); err != nil {
		return Transaction{}, fmt.Errorf("save ledger: %w", err)
	}
	s.log().WithFields(logrus.Fields{
		"loan":      loanID,
		"amount":    amount,
		"interest":  split.InterestPaid,
		"principal": split.PrincipalPaid,
		"balance":   split.NewBalance,
	}).Info("repayment recorded")
	return tx, nil
}

// DeleteTransaction reverses a transaction's effect and removes it from the
// log. Deleting an id that no longer exists is a no-op, which keeps the
// operation idempotent.
func (s *Store) DeleteTransaction(id string) error {
	doc, err := s.Provider.Load()
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	found := doc.Transaction(id)
	if found == nil {
		return nil
	}
	tx := *found // copy before the log is compacted underneath the pointer

	switch tx.Type {
	case TypeSaving:
		// Mirror of the forward mutation; no floor is applied.
		if m := doc.Member(tx.MemberID); m != nil {
			m.TotalSavings -= tx.Amount
		}
	case TypeRepayment:
		// Older records carry no principal part; fall back to the gross
		// amount. A missing loan means the reversal of balance is skipped
		// and only the record is removed.
		if loan := doc.Loan(tx.LoanID); loan != nil {
			restore := tx.Amount
			if tx.PrincipalPart != nil {
				restore = *tx.PrincipalPart
			}
			loan.BalanceRemaining += restore
			loan.Status = LoanActive
		}
	case TypeDisbursement:
		loans := doc.Loans[:0]
		for _, l := range doc.Loans {
			if l.ID != tx.LoanID {
				loans = append(loans, l)
			}
		}
		doc.Loans = loans
	}

	txs := doc.Transactions[:0]
	for _, t := range doc.Transactions {
		if t.ID != id {
			txs = append(txs, t)
		}
	}
	doc.Transactions = txs

	if err := s.Provider.Save(doc); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	s.log().WithFields(logrus.Fields{"transaction": id, "type": tx.Type}).Info("transaction reversed")
	return nil
}
