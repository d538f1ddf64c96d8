package ledger

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Step is one stage of the meeting workflow.
type Step string

const (
	StepAttendance   Step = "ATTENDANCE"
	StepSavings      Step = "SAVINGS"
	StepRepayment    Step = "REPAYMENT"
	StepDisbursement Step = "DISBURSEMENT"
	StepSummary      Step = "SUMMARY"
)

var stepOrder = []Step{StepAttendance, StepSavings, StepRepayment, StepDisbursement, StepSummary}

// Session stages a meeting in memory: attendance, savings collection, loan
// repayments, and new disbursements. Nothing touches the store until
// Finalize; abandoning the session beforehand has no ledger effect.
type Session struct {
	store *Store
	doc   Document // snapshot taken at session start, for display only

	step          int
	attendance    []string // toggle order preserved
	savings       map[string]int64
	repayments    map[string]int64
	disbursements map[string]int64
	closed        bool
}

// NewSession snapshots the ledger and opens the workflow at attendance.
func NewSession(store *Store) (*Session, error) {
	doc, err := store.Provider.Load()
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return &Session{
		store:         store,
		doc:           doc,
		savings:       make(map[string]int64),
		repayments:    make(map[string]int64),
		disbursements: make(map[string]int64),
	}, nil
}

// Step reports the current workflow stage.
func (s *Session) Step() Step { return stepOrder[s.step] }

// Advance moves one step forward, stopping at the summary. Finalizing is a
// separate, explicit call.
func (s *Session) Advance() Step {
	if s.step < len(stepOrder)-1 {
		s.step++
	}
	return stepOrder[s.step]
}

// Retreat moves one step back, stopping at attendance.
func (s *Session) Retreat() Step {
	if s.step > 0 {
		s.step--
	}
	return stepOrder[s.step]
}

// Group returns the group config from the session snapshot.
func (s *Session) Group() Group { return s.doc.Group }

// Members returns the member list from the session snapshot.
func (s *Session) Members() []Member { return s.doc.Members }

// ActiveLoan returns the member's active loan from the session snapshot.
func (s *Session) ActiveLoan(memberID string) *Loan { return s.doc.ActiveLoan(memberID) }

// ToggleAttendance marks a member present, or absent if already present.
func (s *Session) ToggleAttendance(memberID string) {
	for i, id := range s.attendance {
		if id == memberID {
			s.attendance = append(s.attendance[:i], s.attendance[i+1:]...)
			return
		}
	}
	s.attendance = append(s.attendance, memberID)
}

// Present reports whether a member is marked present.
func (s *Session) Present(memberID string) bool {
	for _, id := range s.attendance {
		if id == memberID {
			return true
		}
	}
	return false
}

// Attendance returns the members marked present, in toggle order.
func (s *Session) Attendance() []string { return s.attendance }

// SetSaving stages a savings amount for a member.
func (s *Session) SetSaving(memberID string, amount int64) { s.savings[memberID] = amount }

// Saving returns the staged savings amount for a member.
func (s *Session) Saving(memberID string) int64 { return s.savings[memberID] }

// SetRepayment stages a repayment amount for a member.
func (s *Session) SetRepayment(memberID string, amount int64) { s.repayments[memberID] = amount }

// Repayment returns the staged repayment amount for a member.
func (s *Session) Repayment(memberID string) int64 { return s.repayments[memberID] }

// SetDisbursement stages a new-loan amount for a member.
func (s *Session) SetDisbursement(memberID string, amount int64) { s.disbursements[memberID] = amount }

// Disbursement returns the staged new-loan amount for a member.
func (s *Session) Disbursement(memberID string) int64 { return s.disbursements[memberID] }

// TotalCollected sums the staged savings and repayments as entered, before
// any interest/principal split.
func (s *Session) TotalCollected() int64 {
	var total int64
	for _, amount := range s.savings {
		total += amount
	}
	for _, amount := range s.repayments {
		total += amount
	}
	return total
}

// TotalDisbursed sums the staged disbursement amounts.
func (s *Session) TotalDisbursed() int64 {
	var total int64
	for _, amount := range s.disbursements {
		total += amount
	}
	return total
}

// Finalize commits the staged meeting as one batch: savings, then
// repayments, then disbursements, then the meeting summary, all under a
// single timestamp and a single save. It re-reads the document so loan and
// member lookups reflect the persisted state, not the session snapshot.
func (s *Session) Finalize() (Meeting, error) {
	if s.closed {
		return Meeting{}, ErrSessionClosed
	}
	doc, err := s.store.Provider.Load()
	if err != nil {
		return Meeting{}, fmt.Errorf("load ledger: %w", err)
	}
	now := s.store.timestamp()
	log := s.store.log()

	for _, memberID := range sortedKeys(s.savings) {
		amount := s.savings[memberID]
		if amount <= 0 {
			continue
		}
		m := doc.Member(memberID)
		if m == nil {
			log.WithField("member", memberID).Warn("staged saving for unknown member dropped")
			continue
		}
		m.TotalSavings += amount
		doc.Transactions = append(doc.Transactions, Transaction{
			ID:       uuid.NewString(),
			MemberID: memberID,
			Type:     TypeSaving,
			Amount:   amount,
			Date:     now,
		})
	}

	for _, memberID := range sortedKeys(s.repayments) {
		amount := s.repayments[memberID]
		if amount <= 0 {
			continue
		}
		loan := doc.ActiveLoan(memberID)
		if loan == nil {
			// A staged repayment must not abort the whole meeting.
			log.WithField("member", memberID).Warn("staged repayment without active loan dropped")
			continue
		}
		split := SplitRepayment(*loan, amount)
		doc.Transactions = append(doc.Transactions, Transaction{
			ID:            uuid.NewString(),
			MemberID:      memberID,
			LoanID:        loan.ID,
			Type:          TypeRepayment,
			Amount:        amount,
			InterestPart:  &split.InterestPaid,
			PrincipalPart: &split.PrincipalPaid,
			Date:          now,
		})
		loan.BalanceRemaining = split.NewBalance
		if split.NewBalance == 0 {
			loan.Status = LoanClosed
		}
	}

	for _, memberID := range sortedKeys(s.disbursements) {
		amount := s.disbursements[memberID]
		if amount <= 0 {
			continue
		}
		if doc.ActiveLoan(memberID) != nil {
			log.WithField("member", memberID).Warn("staged disbursement skipped, member already has an active loan")
			continue
		}
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
	}

	meeting := Meeting{
		ID:             uuid.NewString(),
		Date:           now,
		Attendance:     append([]string(nil), s.attendance...),
		TotalCollected: s.TotalCollected(),
		TotalDisbursed: s.TotalDisbursed(),
	}
	doc.Meetings = append(doc.Meetings, meeting)

	if err := s.store.Provider.Save(doc); err != nil {
		return Meeting{}, fmt.Errorf("save ledger: %w", err)
	}
	s.closed = true
	log.WithFields(logrus.Fields{
		"meeting":   meeting.ID,
		"present":   len(meeting.Attendance),
		"collected": meeting.TotalCollected,
		"disbursed": meeting.TotalDisbursed,
	}).Info("meeting finalized")
	return meeting, nil
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
