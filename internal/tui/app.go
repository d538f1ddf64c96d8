package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/sangam/internal/config"
	"github.com/jask/sangam/internal/ledger"
	"github.com/jask/sangam/internal/narrate"
)

// App ties together views over the ledger store.
type App struct {
	store     *ledger.Store
	announcer narrate.Announcer
	cfg       config.Config

	state  appState
	modal  modalState
	doc    ledger.Document
	status string
	err    error
	width  int
	height int

	memberCursor   int
	historyCursor  int
	settingsCursor int
	selectedID     string

	// add-member form
	nameInput  textinput.Model
	phoneInput textinput.Model
	addFocus   int
	dupWarning string

	// amount entry modal
	amountInput textinput.Model
	amountMode  amountMode

	// settings editing
	settingsInput   textinput.Model
	settingsEditing bool

	// meeting workflow
	session    *ledger.Session
	meetCursor int
	meetInput  textinput.Model
}

type appState string

const (
	viewMembers  appState = "members"
	viewAdd      appState = "add"
	viewDetail   appState = "detail"
	viewHistory  appState = "history"
	viewMeeting  appState = "meeting"
	viewSettings appState = "settings"
)

type modalState string

const (
	modalNone         modalState = ""
	modalAmount       modalState = "amount"
	modalDeleteMember modalState = "deleteMember"
	modalDeleteTx     modalState = "deleteTx"
	modalAbandonMeet  modalState = "abandonMeeting"
)

type amountMode string

const (
	amountSaving amountMode = "saving"
	amountRepay  amountMode = "repay"
	amountLoan   amountMode = "loan"
)

// New builds the application model.
func New(cfg config.Config, store *ledger.Store, announcer narrate.Announcer) *App {
	if announcer == nil {
		announcer = narrate.Discard{}
	}
	name := textinput.New()
	name.Placeholder = "e.g. Meena Bai"
	name.CharLimit = 64
	phone := textinput.New()
	phone.Placeholder = "10 digit number"
	phone.CharLimit = 16
	amount := textinput.New()
	amount.Placeholder = "0"
	amount.CharLimit = 12
	settings := textinput.New()
	settings.CharLimit = 32
	meet := textinput.New()
	meet.Placeholder = "0"
	meet.CharLimit = 12
	return &App{
		store:         store,
		announcer:     announcer,
		cfg:           cfg,
		state:         viewMembers,
		nameInput:     name,
		phoneInput:    phone,
		amountInput:   amount,
		settingsInput: settings,
		meetInput:     meet,
	}
}

func (a *App) Init() tea.Cmd {
	return a.load()
}

// ---------------------------------------------------------------------------
// Messages and commands
// ---------------------------------------------------------------------------

type docMsg ledger.Document

type errMsg struct{ err error }

type opDoneMsg struct{ status string }

func (a *App) load() tea.Cmd {
	return func() tea.Msg {
		doc, err := a.store.Load()
		if err != nil {
			return errMsg{err}
		}
		return docMsg(doc)
	}
}

func (a *App) addMember(name, phone string) tea.Cmd {
	return func() tea.Msg {
		m, err := a.store.AddMember(name, phone)
		if err != nil {
			return errMsg{err}
		}
		a.announcer.Announce(fmt.Sprintf("New member %s added.", m.Name))
		return opDoneMsg{status: fmt.Sprintf("Added %s", m.Name)}
	}
}

func (a *App) removeMember(id, name string) tea.Cmd {
	return func() tea.Msg {
		if err := a.store.DeleteMember(id); err != nil {
			return errMsg{err}
		}
		a.announcer.Announce(fmt.Sprintf("%s has been removed.", name))
		return opDoneMsg{status: fmt.Sprintf("Removed %s", name)}
	}
}

func (a *App) collectSaving(memberID string, amount int64) tea.Cmd {
	return func() tea.Msg {
		if _, err := a.store.RecordSaving(memberID, amount); err != nil {
			return errMsg{err}
		}
		doc, err := a.store.Load()
		if err != nil {
			return errMsg{err}
		}
		m := doc.Member(memberID)
		a.announcer.Announce(fmt.Sprintf("Saved %d for %s. Total savings is now %d.", amount, m.Name, m.TotalSavings))
		return opDoneMsg{status: fmt.Sprintf("Collected %s from %s", a.money(amount), m.Name)}
	}
}

func (a *App) giveLoan(memberID string, amount int64) tea.Cmd {
	return func() tea.Msg {
		loan, err := a.store.DisburseLoan(memberID, amount)
		if err != nil {
			return errMsg{err}
		}
		doc, err := a.store.Load()
		if err != nil {
			return errMsg{err}
		}
		m := doc.Member(loan.MemberID)
		a.announcer.Announce(fmt.Sprintf("Gave %d loan to %s.", amount, m.Name))
		return opDoneMsg{status: fmt.Sprintf("Disbursed %s to %s", a.money(amount), m.Name)}
	}
}

func (a *App) repayLoan(loanID string, amount int64) tea.Cmd {
	return func() tea.Msg {
		if _, err := a.store.RecordRepayment(loanID, amount); err != nil {
			return errMsg{err}
		}
		doc, err := a.store.Load()
		if err != nil {
			return errMsg{err}
		}
		balance := int64(0)
		if l := doc.Loan(loanID); l != nil {
			balance = l.BalanceRemaining
		}
		a.announcer.Announce(fmt.Sprintf("Received %d repayment. New balance is %d.", amount, balance))
		return opDoneMsg{status: fmt.Sprintf("Repaid %s, balance %s", a.money(amount), a.money(balance))}
	}
}

func (a *App) deleteTx(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.store.DeleteTransaction(id); err != nil {
			return errMsg{err}
		}
		return opDoneMsg{status: "Entry deleted and balances restored"}
	}
}

func (a *App) announceGroupSummary() tea.Cmd {
	return func() tea.Msg {
		doc, err := a.store.Load()
		if err != nil {
			return errMsg{err}
		}
		text := fmt.Sprintf("The group has %d members. Total savings is %d.", len(doc.Members), doc.TotalSavings())
		a.announcer.Announce(text)
		return opDoneMsg{status: text}
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil
	case docMsg:
		a.doc = ledger.Document(m)
		a.clampCursors()
		return a, nil
	case errMsg:
		a.err = m.err
		a.status = ""
		return a, nil
	case opDoneMsg:
		a.err = nil
		a.status = m.status
		return a, a.load()
	case meetingStartedMsg, meetingDoneMsg:
		return a.handleMeetingMsg(msg)
	case tea.KeyMsg:
		a.err = nil
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		switch a.state {
		case viewAdd:
			return a.handleAddKey(m)
		case viewDetail:
			return a.handleDetailKey(m)
		case viewHistory:
			return a.handleHistoryKey(m)
		case viewMeeting:
			return a.handleMeetingKey(m)
		case viewSettings:
			return a.handleSettingsKey(m)
		}
		return a.handleMembersKey(m)
	}
	return a, nil
}

func (a *App) handleMembersKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.memberCursor > 0 {
			a.memberCursor--
		}
	case "down", "j":
		if a.memberCursor < len(a.doc.Members)-1 {
			a.memberCursor++
		}
	case "enter":
		if len(a.doc.Members) > 0 {
			a.selectedID = a.doc.Members[a.memberCursor].ID
			a.state = viewDetail
		}
	case "a":
		a.openAddForm()
	case "h":
		a.historyCursor = 0
		a.state = viewHistory
	case "m":
		return a, a.startMeeting()
	case "s":
		a.settingsCursor = 0
		a.settingsEditing = false
		a.state = viewSettings
	case "g":
		return a, a.announceGroupSummary()
	}
	return a, nil
}

func (a *App) openAddForm() {
	a.nameInput.SetValue("")
	a.phoneInput.SetValue("")
	a.dupWarning = ""
	a.addFocus = 0
	a.nameInput.Focus()
	a.phoneInput.Blur()
	a.state = viewAdd
}

func (a *App) handleAddKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.state = viewMembers
		return a, nil
	case "tab", "shift+tab":
		if a.addFocus == 0 {
			a.addFocus = 1
			a.nameInput.Blur()
			a.phoneInput.Focus()
		} else {
			a.addFocus = 0
			a.phoneInput.Blur()
			a.nameInput.Focus()
		}
		return a, nil
	case "enter":
		name := strings.TrimSpace(a.nameInput.Value())
		if name == "" {
			a.status = "Name is required"
			return a, nil
		}
		// Warn once about a near-duplicate name, then accept on re-submit.
		if a.dupWarning == "" {
			if near, ok := ledger.SimilarMember(a.doc.Members, name); ok {
				a.dupWarning = near.Name
				a.status = fmt.Sprintf("Looks like %q — press enter again to add anyway", near.Name)
				return a, nil
			}
		}
		a.state = viewMembers
		return a, a.addMember(name, strings.TrimSpace(a.phoneInput.Value()))
	}
	var cmd tea.Cmd
	if a.addFocus == 0 {
		a.nameInput, cmd = a.nameInput.Update(m)
	} else {
		a.phoneInput, cmd = a.phoneInput.Update(m)
	}
	a.dupWarning = ""
	return a, cmd
}

func (a *App) handleDetailKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	member := a.doc.Member(a.selectedID)
	if member == nil {
		a.state = viewMembers
		return a, nil
	}
	loan := a.doc.ActiveLoan(member.ID)
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.state = viewMembers
	case "c":
		return a, a.collectSaving(member.ID, a.doc.Group.MonthlySaving)
	case "o":
		a.openAmountModal(amountSaving)
	case "r":
		if loan != nil {
			a.openAmountModal(amountRepay)
		}
	case "l":
		if loan == nil {
			a.openAmountModal(amountLoan)
		} else {
			a.status = "Member already has an active loan"
		}
	case "d":
		a.modal = modalDeleteMember
	}
	return a, nil
}

func (a *App) openAmountModal(mode amountMode) {
	a.amountMode = mode
	a.amountInput.SetValue("")
	a.amountInput.Focus()
	a.modal = modalAmount
}

func (a *App) handleHistoryKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.state = viewMembers
	case "up", "k":
		if a.historyCursor > 0 {
			a.historyCursor--
		}
	case "down", "j":
		if a.historyCursor < len(a.doc.Transactions)-1 {
			a.historyCursor++
		}
	case "d":
		if len(a.doc.Transactions) > 0 {
			a.modal = modalDeleteTx
		}
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalAmount:
		switch m.String() {
		case "esc":
			a.modal = modalNone
			return a, nil
		case "enter":
			amount, err := parseAmount(a.amountInput.Value())
			if err != nil {
				a.status = "Enter a whole positive amount"
				return a, nil
			}
			a.modal = modalNone
			member := a.doc.Member(a.selectedID)
			if member == nil {
				return a, nil
			}
			switch a.amountMode {
			case amountRepay:
				if loan := a.doc.ActiveLoan(member.ID); loan != nil {
					return a, a.repayLoan(loan.ID, amount)
				}
				return a, nil
			case amountLoan:
				return a, a.giveLoan(member.ID, amount)
			default:
				return a, a.collectSaving(member.ID, amount)
			}
		}
		var cmd tea.Cmd
		a.amountInput, cmd = a.amountInput.Update(m)
		return a, cmd

	case modalDeleteMember:
		switch m.String() {
		case "y", "enter":
			a.modal = modalNone
			member := a.doc.Member(a.selectedID)
			if member == nil {
				return a, nil
			}
			a.state = viewMembers
			return a, a.removeMember(member.ID, member.Name)
		case "n", "esc":
			a.modal = modalNone
		}
		return a, nil

	case modalDeleteTx:
		switch m.String() {
		case "y", "enter":
			a.modal = modalNone
			txs := a.historyTransactions()
			if a.historyCursor < len(txs) {
				return a, a.deleteTx(txs[a.historyCursor].ID)
			}
		case "n", "esc":
			a.modal = modalNone
		}
		return a, nil

	case modalAbandonMeet:
		switch m.String() {
		case "y", "enter":
			a.modal = modalNone
			a.session = nil
			a.state = viewMembers
			a.status = "Meeting abandoned, nothing was recorded"
		case "n", "esc":
			a.modal = modalNone
		}
		return a, nil
	}
	a.modal = modalNone
	return a, nil
}

func (a *App) handleSettingsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.settingsEditing {
		switch m.String() {
		case "esc":
			a.settingsEditing = false
			return a, nil
		case "enter":
			a.settingsEditing = false
			value := strings.TrimSpace(a.settingsInput.Value())
			switch a.settingsCursor {
			case 0:
				if value != "" {
					a.cfg.UI.CurrencySymbol = value
				}
			case 1:
				if value != "" {
					a.cfg.UI.DateFormat = value
				}
			case 2:
				a.cfg.Log.Level = value
			}
			if err := config.Save(a.cfg); err != nil {
				return a, func() tea.Msg { return errMsg{err} }
			}
			a.status = "Settings saved"
			return a, nil
		}
		var cmd tea.Cmd
		a.settingsInput, cmd = a.settingsInput.Update(m)
		return a, cmd
	}
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.state = viewMembers
	case "up", "k":
		if a.settingsCursor > 0 {
			a.settingsCursor--
		}
	case "down", "j":
		if a.settingsCursor < 2 {
			a.settingsCursor++
		}
	case "enter":
		switch a.settingsCursor {
		case 0:
			a.settingsInput.SetValue(a.cfg.UI.CurrencySymbol)
		case 1:
			a.settingsInput.SetValue(a.cfg.UI.DateFormat)
		case 2:
			a.settingsInput.SetValue(a.cfg.Log.Level)
		}
		a.settingsInput.Focus()
		a.settingsEditing = true
	}
	return a, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (a *App) clampCursors() {
	if a.memberCursor >= len(a.doc.Members) {
		a.memberCursor = len(a.doc.Members) - 1
	}
	if a.memberCursor < 0 {
		a.memberCursor = 0
	}
	if a.historyCursor >= len(a.doc.Transactions) {
		a.historyCursor = len(a.doc.Transactions) - 1
	}
	if a.historyCursor < 0 {
		a.historyCursor = 0
	}
}

// historyTransactions returns the log newest first.
func (a *App) historyTransactions() []ledger.Transaction {
	txs := make([]ledger.Transaction, len(a.doc.Transactions))
	copy(txs, a.doc.Transactions)
	for i, j := 0, len(txs)-1; i < j; i, j = i+1, j-1 {
		txs[i], txs[j] = txs[j], txs[i]
	}
	return txs
}

func (a *App) money(amount int64) string {
	return a.cfg.UI.CurrencySymbol + strconv.FormatInt(amount, 10)
}

func parseAmount(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}
	return n, nil
}
