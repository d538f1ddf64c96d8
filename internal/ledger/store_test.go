package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// memProvider keeps the document in memory, copying through JSON on both
// sides the way the real providers do, so a pointer held by the store can
// never leak into "persisted" state.
type memProvider struct {
	doc   Document
	saves int
}

func newMemProvider(doc Document) *memProvider {
	return &memProvider{doc: doc}
}

func (p *memProvider) Load() (Document, error) {
	return copyDocument(p.doc), nil
}

func (p *memProvider) Save(doc Document) error {
	p.doc = copyDocument(doc)
	p.saves++
	return nil
}

func copyDocument(doc Document) Document {
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return out
}

func testDocument() Document {
	return Document{
		Group: Group{ID: "g1", Name: "Ekta Sangam", MonthlySaving: 200, InterestRate: 24},
		Members: []Member{
			{ID: "m1", Name: "Lakshmi Devi", Phone: "9876543210", TotalSavings: 2400},
			{ID: "m2", Name: "Meena Bai", Phone: "9876543211", TotalSavings: 1800},
			{ID: "m3", Name: "Saritha Akka", Phone: "9876543212", TotalSavings: 3000},
		},
	}
}

func testStore(t *testing.T, doc Document) (*Store, *memProvider) {
	t.Helper()
	p := newMemProvider(doc)
	return &Store{
		Provider: p,
		Now:      func() time.Time { return time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC) },
	}, p
}

func TestAddMember(t *testing.T) {
	t.Parallel()

	store, p := testStore(t, testDocument())
	m, err := store.AddMember("Radha Amma", "9876543213")
	require.NoError(t, err)
	require.NotEmpty(t, m.ID)
	require.Equal(t, int64(0), m.TotalSavings)

	require.Len(t, p.doc.Members, 4)
	require.Equal(t, "Radha Amma", p.doc.Members[3].Name)
}

func TestDeleteMemberRefusedWhileLoanActive(t *testing.T) {
	t.Parallel()

	store, p := testStore(t, testDocument())
	loan, err := store.DisburseLoan("m1", 5000)
	require.NoError(t, err)

	err = store.DeleteMember("m1")
	require.ErrorIs(t, err, ErrActiveLoan)
	require.NotNil(t, p.doc.Member("m1"), "refused delete must leave the ledger unmodified")

	// Close the loan, then deletion is allowed.
	_, err = store.RecordRepayment(loan.ID, 5100)
	require.NoError(t, err)
	require.NoError(t, store.DeleteMember("m1"))
}

func TestDeleteMemberCascades(t *testing.T) {
	t.Parallel()

	store, p := testStore(t, testDocument())
	_, err := store.RecordSaving("m1", 200)
	require.NoError(t, err)
	loan, err := store.DisburseLoan("m1", 5000)
	require.NoError(t, err)
	_, err = store.RecordRepayment(loan.ID, 5100)
	require.NoError(t, err)
	_, err = store.RecordSaving("m2", 300)
	require.NoError(t, err)

	require.NoError(t, store.DeleteMember("m1"))

	require.Nil(t, p.doc.Member("m1"))
	require.Empty(t, p.doc.Loans, "closed loans are swept with the member")
	require.Len(t, p.doc.Transactions, 1, "only m2's saving survives")
	require.Equal(t, "m2", p.doc.Transactions[0].MemberID)
}

func TestDeleteMemberNotFound(t *testing.T) {
	t.Parallel()

	store, _ := testStore(t, testDocument())
	require.ErrorIs(t, store.DeleteMember("nobody"), ErrMemberNotFound)
}

func TestRecordSaving(t *testing.T) {
	t.Parallel()

	store, p := testStore(t, testDocument())
	tx, err := store.RecordSaving("m1", 200)
	require.NoError(t, err)
	require.Equal(t, TypeSaving, tx.Type)
	require.Equal(t, int64(200), tx.Amount)

	require.Equal(t, int64(2600), p.doc.Member("m1").TotalSavings)
	require.Len(t, p.doc.Transactions, 1)

	_, err = store.RecordSaving("m1", 0)
	require.ErrorIs(t, err, ErrAmountNotPositive)
	_, err = store.RecordSaving("m1", -50)
	require.ErrorIs(t, err, ErrAmountNotPositive)
	_, err = store.RecordSaving("ghost", 200)
	require.ErrorIs(t, err, ErrMemberNotFound)
	require.Len(t, p.doc.Transactions, 1, "rejected inputs must not write")
}

func TestSavingReversalIsExact(t *testing.T) {
	t.Parallel()

	store, p := testStore(t, testDocument())
	before := p.doc.Member("m1").TotalSavings

	tx, err := store.RecordSaving("m1", 200)
	require.NoError(t, err)
	require.NoError(t, store.DeleteTransaction(tx.ID))

	require.Equal(t, before, p.doc.Member("m1").TotalSavings)
	require.Empty(t, p.doc.Transactions)

	// Deleting again is a no-op, not an error.
	require.NoError(t, store.DeleteTransaction(tx.ID))
}

func TestDisburseLoan(t *testing.T) {
	t.Parallel()

	store, p := testStore(t, testDocument())
	loan, err := store.DisburseLoan("m1", 5000)
	require.NoError(t, err)
	require.Equal(t, LoanActive, loan.Status)
	require.Equal(t, int64(5000), loan.PrincipalAmount)
	require.Equal(t, int64(5000), loan.BalanceRemaining)
	require.Equal(t, float64(24), loan.InterestRate, "rate captured from group at disbursement")

	require.Len(t, p.doc.Transactions, 1)
	require.Equal(t, TypeDisbursement, p.doc.Transactions[0].Type)
	require.Equal(t, loan.ID, p.doc.Transactions[0].LoanID)

	// One active loan per member is a hard invariant.
	_, err = store.DisburseLoan("m1", 1000)
	require.ErrorIs(t, err, ErrActiveLoan)

	_, err = store.DisburseLoan("ghost", 1000)
	require.ErrorIs(t, err, ErrMemberNotFound)
	_, err = store.DisburseLoan("m2", 0)
	require.ErrorIs(t, err, ErrAmountNotPositive)
}

func TestRecordRepaymentClosesAtZero(t *testing.T) {
	t.Parallel()

	store, p := testStore(t, testDocument())
	loan, err := store.DisburseLoan("m1", 5000)
	require.NoError(t, err)

	tx, err := store.RecordRepayment(loan.ID, 500)
	require.NoError(t, err)
	require.NotNil(t, tx.InterestPart)
	require.NotNil(t, tx.PrincipalPart)
	require.Equal(t, int64(100), *tx.InterestPart)
	require.Equal(t, int64(400), *tx.PrincipalPart)

	got := p.doc.Loan(loan.ID)
	require.Equal(t, int64(4600), got.BalanceRemaining)
	require.Equal(t, LoanActive, got.Status)

	// Overpayment clamps to zero and closes the loan.
	_, err = store.RecordRepayment(loan.ID, 10000)
	require.NoError(t, err)
	got = p.doc.Loan(loan.ID)
	require.Equal(t, int64(0), got.BalanceRemaining)
	require.Equal(t, LoanClosed, got.Status)

	_, err = store.RecordRepayment("ghost", 100)
	require.ErrorIs(t, err, ErrLoanNotFound)
}

func TestRepaymentReversalReopensLoan(t *testing.T) {
	t.Parallel()

	store, p := testStore(t, testDocument())
	loan, err := store.DisburseLoan("m1", 5000)
	require.NoError(t, err)
	tx, err := store.RecordRepayment(loan.ID, 5100)
	require.NoError(t, err)
	require.Equal(t, LoanClosed, p.doc.Loan(loan.ID).Status)

	require.NoError(t, store.DeleteTransaction(tx.ID))

	got := p.doc.Loan(loan.ID)
	require.Equal(t, LoanActive, got.Status)
	require.Equal(t, int64(5000), got.BalanceRemaining)
}

func TestRepaymentReversalFallsBackToGrossAmount(t *testing.T) {
	t.Parallel()

	// A legacy record with no principal part restores the full amount.
	doc := testDocument()
	doc.Loans = []Loan{{ID: "l1", MemberID: "m1", PrincipalAmount: 5000, BalanceRemaining: 4600, InterestRate: 24, Status: LoanActive}}
	doc.Transactions = []Transaction{{ID: "t1", MemberID: "m1", LoanID: "l1", Type: TypeRepayment, Amount: 400}}

	store, p := testStore(t, doc)
	require.NoError(t, store.DeleteTransaction("t1"))
	require.Equal(t, int64(5000), p.doc.Loan("l1").BalanceRemaining)
}

func TestRepaymentReversalSkipsMissingLoan(t *testing.T) {
	t.Parallel()

	doc := testDocument()
	principal := int64(400)
	doc.Transactions = []Transaction{{ID: "t1", MemberID: "m1", LoanID: "gone", Type: TypeRepayment, Amount: 500, PrincipalPart: &principal}}

	store, p := testStore(t, doc)
	require.NoError(t, store.DeleteTransaction("t1"))
	require.Empty(t, p.doc.Transactions, "record removed even when the loan is gone")
}

func TestDisbursementReversalRemovesLoan(t *testing.T) {
	t.Parallel()

	store, p := testStore(t, testDocument())
	loan, err := store.DisburseLoan("m1", 5000)
	require.NoError(t, err)
	require.Len(t, p.doc.Transactions, 1)

	require.NoError(t, store.DeleteTransaction(p.doc.Transactions[0].ID))

	require.Nil(t, p.doc.Loan(loan.ID), "reversing a disbursement deletes the loan itself")
	require.Empty(t, p.doc.Transactions)
}
