package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/sangam/internal/ledger"
)

type meetingStartedMsg struct{ session *ledger.Session }

type meetingDoneMsg struct{ meeting ledger.Meeting }

func (a *App) startMeeting() tea.Cmd {
	return func() tea.Msg {
		session, err := ledger.NewSession(a.store)
		if err != nil {
			return errMsg{err}
		}
		return meetingStartedMsg{session}
	}
}

func (a *App) finalizeMeeting() tea.Cmd {
	return func() tea.Msg {
		meeting, err := a.session.Finalize()
		if err != nil {
			return errMsg{err}
		}
		a.announcer.Announce(fmt.Sprintf(
			"Meeting closed. %d members present. Collected %d, gave out %d in loans.",
			len(meeting.Attendance), meeting.TotalCollected, meeting.TotalDisbursed))
		return meetingDoneMsg{meeting}
	}
}

func (a *App) handleMeetingMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case meetingStartedMsg:
		a.session = m.session
		a.meetCursor = 0
		a.meetInput.SetValue("")
		a.state = viewMeeting
	case meetingDoneMsg:
		a.session = nil
		a.state = viewMembers
		a.status = fmt.Sprintf("Meeting recorded: collected %s, disbursed %s",
			a.money(m.meeting.TotalCollected), a.money(m.meeting.TotalDisbursed))
		return a, a.load()
	}
	return a, nil
}

func (a *App) handleMeetingKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.session == nil {
		a.state = viewMembers
		return a, nil
	}
	members := a.session.Members()
	step := a.session.Step()

	switch m.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.modal = modalAbandonMeet
		return a, nil
	case "up", "k":
		a.commitMeetInput()
		if a.meetCursor > 0 {
			a.meetCursor--
		}
		a.loadMeetInput()
		return a, nil
	case "down", "j":
		a.commitMeetInput()
		if a.meetCursor < len(a.meetingRows())-1 {
			a.meetCursor++
		}
		a.loadMeetInput()
		return a, nil
	case "left":
		a.commitMeetInput()
		a.meetCursor = 0
		a.session.Retreat()
		a.loadMeetInput()
		return a, nil
	case "right", "tab":
		a.commitMeetInput()
		a.meetCursor = 0
		a.session.Advance()
		a.loadMeetInput()
		return a, nil
	case "enter":
		if step == ledger.StepSummary {
			return a, a.finalizeMeeting()
		}
		if step == ledger.StepAttendance {
			if a.meetCursor < len(members) {
				a.session.ToggleAttendance(members[a.meetCursor].ID)
			}
			return a, nil
		}
		a.commitMeetInput()
		if a.meetCursor < len(a.meetingRows())-1 {
			a.meetCursor++
		}
		a.loadMeetInput()
		return a, nil
	case " ":
		if step == ledger.StepAttendance {
			if a.meetCursor < len(members) {
				a.session.ToggleAttendance(members[a.meetCursor].ID)
			}
			return a, nil
		}
	}

	if step == ledger.StepSavings || step == ledger.StepRepayment || step == ledger.StepDisbursement {
		var cmd tea.Cmd
		a.meetInput, cmd = a.meetInput.Update(m)
		return a, cmd
	}
	return a, nil
}

// meetingRows returns the members shown on the current step. The money steps
// only list members marked present: savings lists all of them, repayment
// those with an active loan, disbursement those without one.
func (a *App) meetingRows() []ledger.Member {
	members := a.session.Members()
	switch a.session.Step() {
	case ledger.StepSavings:
		rows := make([]ledger.Member, 0, len(members))
		for _, m := range members {
			if a.session.Present(m.ID) {
				rows = append(rows, m)
			}
		}
		return rows
	case ledger.StepRepayment:
		rows := make([]ledger.Member, 0, len(members))
		for _, m := range members {
			if a.session.Present(m.ID) && a.session.ActiveLoan(m.ID) != nil {
				rows = append(rows, m)
			}
		}
		return rows
	case ledger.StepDisbursement:
		rows := make([]ledger.Member, 0, len(members))
		for _, m := range members {
			if a.session.Present(m.ID) && a.session.ActiveLoan(m.ID) == nil {
				rows = append(rows, m)
			}
		}
		return rows
	case ledger.StepSummary:
		return nil
	}
	return members
}

// commitMeetInput parses the amount box into the staged entry for the row
// under the cursor. An empty box stages nothing: suggested defaults live in
// the placeholder, so only typed amounts ever reach the session.
func (a *App) commitMeetInput() {
	step := a.session.Step()
	if step == ledger.StepAttendance || step == ledger.StepSummary {
		return
	}
	rows := a.meetingRows()
	if a.meetCursor >= len(rows) {
		return
	}
	id := rows[a.meetCursor].ID
	amount, err := parseAmount(a.meetInput.Value())
	if err != nil {
		amount = 0
	}
	// amount 0 only unstages a previous entry; untouched rows stay unset
	switch step {
	case ledger.StepSavings:
		if amount > 0 || a.session.Saving(id) > 0 {
			a.session.SetSaving(id, amount)
		}
	case ledger.StepRepayment:
		if amount > 0 || a.session.Repayment(id) > 0 {
			a.session.SetRepayment(id, amount)
		}
	case ledger.StepDisbursement:
		if amount > 0 || a.session.Disbursement(id) > 0 {
			a.session.SetDisbursement(id, amount)
		}
	}
}

// loadMeetInput prepares the amount box for the row under the cursor: the
// value is the already-staged amount if any, the placeholder suggests the
// group default saving or the interest due.
func (a *App) loadMeetInput() {
	step := a.session.Step()
	if step == ledger.StepAttendance || step == ledger.StepSummary {
		a.meetInput.Blur()
		return
	}
	a.meetInput.SetValue("")
	a.meetInput.Placeholder = "0"
	rows := a.meetingRows()
	if a.meetCursor >= len(rows) {
		return
	}
	id := rows[a.meetCursor].ID
	var staged int64
	switch step {
	case ledger.StepSavings:
		staged = a.session.Saving(id)
		a.meetInput.Placeholder = fmt.Sprintf("%d", a.session.Group().MonthlySaving)
	case ledger.StepRepayment:
		staged = a.session.Repayment(id)
		if loan := a.session.ActiveLoan(id); loan != nil {
			a.meetInput.Placeholder = fmt.Sprintf("%d", ledger.MonthlyInterestDue(*loan))
		}
	case ledger.StepDisbursement:
		staged = a.session.Disbursement(id)
	}
	if staged > 0 {
		a.meetInput.SetValue(fmt.Sprintf("%d", staged))
	}
	a.meetInput.Focus()
}
