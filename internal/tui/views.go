package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/sangam/internal/ledger"
)

// styles
var titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)

func (a *App) View() string {
	var body string
	switch a.state {
	case viewAdd:
		body = a.renderAdd()
	case viewDetail:
		body = a.renderDetail()
	case viewHistory:
		body = a.renderHistory()
	case viewMeeting:
		body = a.renderMeeting()
	case viewSettings:
		body = a.renderSettings()
	default:
		body = a.renderMembers()
	}
	if a.modal != modalNone {
		body += "\n\n" + a.renderModal()
	}
	if a.err != nil {
		body += "\nError: " + a.err.Error()
	}
	return body
}

func (a *App) renderMembers() string {
	title := titleStyle.Render(a.doc.Group.Name)
	out := title + "\n"
	out += fmt.Sprintf("Members: %d  Total savings: %s\n\n", len(a.doc.Members), a.money(a.doc.TotalSavings()))
	if len(a.doc.Members) == 0 {
		out += "  (no members yet, press a to add one)\n"
	}
	for i, m := range a.doc.Members {
		marker := " "
		if i == a.memberCursor {
			marker = "▶"
		}
		badge := ""
		if loan := a.doc.ActiveLoan(m.ID); loan != nil {
			badge = fmt.Sprintf("  loan %s", a.money(loan.BalanceRemaining))
		}
		out += fmt.Sprintf("%s %-24s %10s%s\n", marker, m.Name, a.money(m.TotalSavings), badge)
	}
	out += "\n[enter] Open  [a] Add  [m] Meeting  [h] History  [g] Summary  [s] Settings  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderAdd() string {
	title := titleStyle.Render("Add Member")
	nameLabel, phoneLabel := "  Name ", "  Phone"
	if a.addFocus == 0 {
		nameLabel = "▶ Name "
	} else {
		phoneLabel = "▶ Phone"
	}
	out := fmt.Sprintf("%s\n%s %s\n%s %s\n", title, nameLabel, a.nameInput.View(), phoneLabel, a.phoneInput.View())
	if a.dupWarning != "" {
		out += fmt.Sprintf("Similar name already on the roll: %s\n", a.dupWarning)
	}
	out += "[tab] Switch field  [enter] Save  [esc] Cancel"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderDetail() string {
	m := a.doc.Member(a.selectedID)
	if m == nil {
		return "member not found"
	}
	title := titleStyle.Render(m.Name)
	out := title + "\n"
	if m.Phone != "" {
		out += "Phone: " + m.Phone + "\n"
	}
	out += fmt.Sprintf("Total savings: %s\n", a.money(m.TotalSavings))

	if loan := a.doc.ActiveLoan(m.ID); loan != nil {
		s := ledger.SummarizeLoan(*loan)
		out += fmt.Sprintf("\nActive loan since %s\n", loan.StartDate.Format(a.cfg.UI.DateFormat))
		out += fmt.Sprintf("  Principal:   %s\n", a.money(s.Principal))
		out += fmt.Sprintf("  Balance:     %s\n", a.money(loan.BalanceRemaining))
		out += fmt.Sprintf("  This month:  %s interest due\n", a.money(s.InterestDue))
		out += fmt.Sprintf("  To close:    %s\n", a.money(s.TotalDue))
	} else {
		out += "\nNo active loan\n"
	}

	out += "\nPassbook\n"
	rows := 0
	for _, tx := range a.historyTransactions() {
		if tx.MemberID != m.ID {
			continue
		}
		out += "  " + a.transactionLine(tx) + "\n"
		rows++
		if rows == 10 {
			break
		}
	}
	if rows == 0 {
		out += "  (no entries yet)\n"
	}

	out += "\n[c] Collect " + a.money(a.doc.Group.MonthlySaving) + "  [o] Other amount"
	if a.doc.ActiveLoan(m.ID) != nil {
		out += "  [r] Repay"
	} else {
		out += "  [l] New loan"
	}
	out += "  [d] Remove member  [esc] Back  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderHistory() string {
	title := titleStyle.Render("History")
	out := title + "\n"
	txs := a.historyTransactions()
	if len(txs) == 0 {
		out += "  (no entries yet)\n"
	}
	for i, tx := range txs {
		marker := " "
		if i == a.historyCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %s\n", marker, a.transactionLine(tx))
	}
	out += "\n[d] Delete entry  [esc] Back  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) transactionLine(tx ledger.Transaction) string {
	name := tx.MemberID
	if m := a.doc.Member(tx.MemberID); m != nil {
		name = m.Name
	}
	label := "Saving"
	switch tx.Type {
	case ledger.TypeRepayment:
		label = "Repayment"
	case ledger.TypeDisbursement:
		label = "Loan given"
	}
	line := fmt.Sprintf("%s  %-12s %-20s %10s", tx.Date.Format(a.cfg.UI.DateFormat), label, name, a.money(tx.Amount))
	if tx.Type == ledger.TypeRepayment && tx.InterestPart != nil && tx.PrincipalPart != nil {
		line += fmt.Sprintf("  (interest %s, principal %s)", a.money(*tx.InterestPart), a.money(*tx.PrincipalPart))
	}
	return line
}

func (a *App) renderMeeting() string {
	if a.session == nil {
		return "no meeting in progress"
	}
	step := a.session.Step()
	title := titleStyle.Render("Meeting - " + meetingStepTitle(step))
	out := title + "\n"
	out += renderStepTrail(step) + "\n\n"

	switch step {
	case ledger.StepAttendance:
		for i, m := range a.session.Members() {
			marker := " "
			if i == a.meetCursor {
				marker = "▶"
			}
			check := "[ ]"
			if a.session.Present(m.ID) {
				check = "[x]"
			}
			out += fmt.Sprintf("%s %s %s\n", marker, check, m.Name)
		}
		out += fmt.Sprintf("\nPresent: %d of %d\n", len(a.session.Attendance()), len(a.session.Members()))
		out += "[space/enter] Toggle  [→] Next step  [esc] Abandon"

	case ledger.StepSavings, ledger.StepRepayment, ledger.StepDisbursement:
		rows := a.meetingRows()
		if len(rows) == 0 {
			out += "  (no members on this step)\n"
		}
		for i, m := range rows {
			marker := " "
			amount := ""
			switch step {
			case ledger.StepSavings:
				amount = a.money(a.session.Saving(m.ID))
			case ledger.StepRepayment:
				amount = a.money(a.session.Repayment(m.ID))
			case ledger.StepDisbursement:
				amount = a.money(a.session.Disbursement(m.ID))
			}
			if i == a.meetCursor {
				marker = "▶"
				amount = a.meetInput.View()
			}
			extra := ""
			if step == ledger.StepRepayment {
				if loan := a.session.ActiveLoan(m.ID); loan != nil {
					extra = fmt.Sprintf("  balance %s, interest due %s", a.money(loan.BalanceRemaining), a.money(ledger.MonthlyInterestDue(*loan)))
				}
			}
			out += fmt.Sprintf("%s %-24s %s%s\n", marker, m.Name, amount, extra)
		}
		out += "\n[enter] Confirm amount  [←/→] Step  [esc] Abandon"

	case ledger.StepSummary:
		out += fmt.Sprintf("Present:         %d of %d\n", len(a.session.Attendance()), len(a.session.Members()))
		out += fmt.Sprintf("Total collected: %s\n", a.money(a.session.TotalCollected()))
		out += fmt.Sprintf("Total disbursed: %s\n", a.money(a.session.TotalDisbursed()))
		out += "\n[enter] Record meeting  [←] Back  [esc] Abandon"
	}
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func meetingStepTitle(s ledger.Step) string {
	switch s {
	case ledger.StepAttendance:
		return "Attendance"
	case ledger.StepSavings:
		return "Savings"
	case ledger.StepRepayment:
		return "Repayments"
	case ledger.StepDisbursement:
		return "New Loans"
	}
	return "Summary"
}

func renderStepTrail(current ledger.Step) string {
	steps := []ledger.Step{ledger.StepAttendance, ledger.StepSavings, ledger.StepRepayment, ledger.StepDisbursement, ledger.StepSummary}
	parts := make([]string, 0, len(steps))
	for _, s := range steps {
		label := meetingStepTitle(s)
		if s == current {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " > ")
}

func (a *App) renderSettings() string {
	title := titleStyle.Render("Settings")
	rows := []struct{ label, value string }{
		{"Currency symbol", a.cfg.UI.CurrencySymbol},
		{"Date format", a.cfg.UI.DateFormat},
		{"Log level", a.cfg.Log.Level},
	}
	out := title + "\n"
	for i, r := range rows {
		marker := " "
		value := r.value
		if i == a.settingsCursor {
			marker = "▶"
			if a.settingsEditing {
				value = a.settingsInput.View()
			}
		}
		out += fmt.Sprintf("%s %-16s %s\n", marker, r.label, value)
	}
	out += fmt.Sprintf("\nGroup: %s  Monthly saving: %s  Interest: %.1f%% yearly\n",
		a.doc.Group.Name, a.money(a.doc.Group.MonthlySaving), a.doc.Group.InterestRate)
	out += "[enter] Edit  [esc] Back  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalAmount:
		label := "Collect savings"
		switch a.amountMode {
		case amountRepay:
			label = "Repayment amount"
		case amountLoan:
			label = "Loan amount"
		}
		return titleStyle.Render(label) + fmt.Sprintf("\n%s\n[enter] Save  [esc] Cancel", a.amountInput.View())
	case modalDeleteMember:
		m := a.doc.Member(a.selectedID)
		name := "this member"
		if m != nil {
			name = m.Name
		}
		return titleStyle.Render("Remove "+name+"?") + "\nTheir savings and loan history will be deleted.\n[y] Yes  [n] No"
	case modalDeleteTx:
		return titleStyle.Render("Delete this entry?") + "\nBalances will be restored as if it never happened.\n[y] Yes  [n] No"
	case modalAbandonMeet:
		return titleStyle.Render("Abandon meeting?") + "\nNothing from this meeting has been recorded yet.\n[y] Yes  [n] No"
	default:
		return ""
	}
}
