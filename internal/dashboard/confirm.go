package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmPrompt is shown before a record is depersonalized.
const ConfirmPrompt = "Are you sure you want to delete (depersonalize) this user? This action cannot be undone."

// confirmState holds the record awaiting delete confirmation.
type confirmState struct {
	id       string
	name     string
	email    string
	deleting bool
	keys     confirmKeys
}

// confirmDeleteMsg is emitted when the user accepts the prompt.
type confirmDeleteMsg struct {
	ID string
}

func newConfirmState(id, name, email string) confirmState {
	return confirmState{id: id, name: name, email: email, keys: ConfirmKeyMap()}
}

// Update processes key messages for the confirmation screen. Confirming
// marks the delete in flight; keys are ignored until it resolves.
func (cs confirmState) Update(msg tea.Msg) (confirmState, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || cs.deleting {
		return cs, nil
	}
	switch {
	case key.Matches(keyMsg, cs.keys.Confirm):
		cs.deleting = true
		id := cs.id
		return cs, func() tea.Msg { return confirmDeleteMsg{ID: id} }
	case key.Matches(keyMsg, cs.keys.Cancel):
		return cs, func() tea.Msg { return CancelFormMsg{} }
	}
	return cs, nil
}

// View renders the confirmation screen.
func (cs confirmState) View(spinnerView string) string {
	var b strings.Builder

	b.WriteString(ConfirmPrompt)
	fmt.Fprintf(&b, "\n\n  %s", cs.name)
	if cs.email != "" {
		fmt.Fprintf(&b, " <%s>", cs.email)
	}

	if cs.deleting {
		fmt.Fprintf(&b, "\n\n  %s Deleting...", spinnerView)
		return b.String()
	}
	b.WriteString("\n\n  [y] Delete   [n/Esc] Cancel")
	return b.String()
}
