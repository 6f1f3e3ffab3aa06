package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/pdm/internal/form"
	"github.com/smileynet/pdm/internal/record"
)

// formState edits one record. The focused field is edited through a single
// textinput whose value is committed to the form when focus leaves it.
type formState struct {
	form       *form.Form
	focus      int
	input      textinput.Model
	dirty      bool
	submitting bool
	keys       formKeys
}

// newFormState opens a form for initial, or an empty create form when nil.
func newFormState(initial *record.UserRecord, opts ...form.Option) formState {
	ti := textinput.New()
	ti.Prompt = ""
	fs := formState{
		form:  form.New(initial, opts...),
		input: ti,
		keys:  FormKeyMap(),
	}
	return fs.focusField(0)
}

// Focused returns the field that currently has focus.
func (fs formState) Focused() form.FieldRef {
	fields := fs.form.Fields()
	if fs.focus < 0 || fs.focus >= len(fields) {
		return form.FieldRef{}
	}
	return fields[fs.focus]
}

// Update processes messages for the form state.
func (fs formState) Update(msg tea.Msg) (formState, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		fs.input, cmd = fs.input.Update(msg)
		return fs, cmd
	}

	switch {
	case key.Matches(keyMsg, fs.keys.Submit):
		if fs.submitting {
			return fs, nil
		}
		return fs.submit()

	case key.Matches(keyMsg, fs.keys.Cancel):
		if fs.submitting {
			return fs, nil
		}
		return fs, func() tea.Msg { return CancelFormMsg{} }

	case key.Matches(keyMsg, fs.keys.Next):
		return fs.blur().focusField(fs.focus + 1), nil

	case key.Matches(keyMsg, fs.keys.Prev):
		return fs.blur().focusField(fs.focus - 1), nil

	case key.Matches(keyMsg, fs.keys.AddAddress):
		if fs.submitting {
			return fs, nil
		}
		fs = fs.blur()
		fs.form.AppendAddress()
		n := len(fs.form.Addresses()) - 1
		return fs.focusRef(form.Address(n, form.FieldPostalCode)), nil

	case key.Matches(keyMsg, fs.keys.AddPhone):
		if fs.submitting {
			return fs, nil
		}
		fs = fs.blur()
		fs.form.AppendPhone()
		n := len(fs.form.Phones()) - 1
		return fs.focusRef(form.Phone(n)), nil

	case key.Matches(keyMsg, fs.keys.RemoveEntry):
		return fs.removeFocusedEntry(), nil
	}

	if fs.submitting {
		return fs, nil
	}
	before := fs.input.Value()
	var cmd tea.Cmd
	fs.input, cmd = fs.input.Update(keyMsg)
	if fs.input.Value() != before {
		fs.dirty = true
	}
	return fs, cmd
}

// blur commits the input value to the focused field and validates it when
// it was edited.
func (fs formState) blur() formState {
	ref := fs.Focused()
	if ref.Name == "" {
		return fs
	}
	if fs.dirty {
		_ = fs.form.SetValue(ref, fs.input.Value())
		fs.form.ValidateField(ref)
		fs.dirty = false
	}
	fs.input.Blur()
	return fs
}

// focusField moves focus to index i, wrapping at both ends.
func (fs formState) focusField(i int) formState {
	fields := fs.form.Fields()
	if len(fields) == 0 {
		return fs
	}
	i = ((i % len(fields)) + len(fields)) % len(fields)
	fs.focus = i
	v, _ := fs.form.Value(fields[i])
	fs.input.SetValue(v)
	fs.input.CursorEnd()
	fs.input.Placeholder = placeholder(fields[i])
	fs.input.Focus()
	fs.dirty = false
	return fs
}

func (fs formState) focusRef(ref form.FieldRef) formState {
	for i, f := range fs.form.Fields() {
		if f == ref {
			return fs.focusField(i)
		}
	}
	return fs.focusField(0)
}

// removeFocusedEntry removes the address or phone row holding focus. It is a
// no-op on scalar fields and on the last remaining row.
func (fs formState) removeFocusedEntry() formState {
	if fs.submitting {
		return fs
	}
	ref := fs.Focused()
	fs = fs.blur()
	var removed bool
	switch ref.Group {
	case form.GroupAddress:
		removed = fs.form.RemoveAddress(ref.Index)
	case form.GroupPhone:
		removed = fs.form.RemovePhone(ref.Index)
	}
	if !removed {
		return fs.focusField(fs.focus)
	}
	// Land on the same field of the row that moved up, or the new last row.
	idx := ref.Index
	switch ref.Group {
	case form.GroupAddress:
		if idx >= len(fs.form.Addresses()) {
			idx = len(fs.form.Addresses()) - 1
		}
		return fs.focusRef(form.Address(idx, form.FieldPostalCode))
	default:
		if idx >= len(fs.form.Phones()) {
			idx = len(fs.form.Phones()) - 1
		}
		return fs.focusRef(form.Phone(idx))
	}
}

// submit validates the form. On success it marks the form submitting and
// emits SubmitFormMsg; on failure focus moves to the first invalid field.
func (fs formState) submit() (formState, tea.Cmd) {
	fs = fs.blur()
	in, err := fs.form.Submit()
	if err != nil {
		for i, ref := range fs.form.Fields() {
			if len(fs.form.Violations().For(ref.Path())) > 0 {
				return fs.focusField(i), nil
			}
		}
		return fs.focusField(fs.focus), nil
	}
	fs = fs.focusField(fs.focus)
	fs.submitting = true
	id := fs.form.RecordID()
	return fs, func() tea.Msg { return SubmitFormMsg{ID: id, Input: in} }
}

func placeholder(ref form.FieldRef) string {
	if ref.Group == form.GroupUser && ref.Name == form.FieldDateOfBirth {
		return "YYYY-MM-DD"
	}
	return ""
}

// Title is the heading of the form.
func (fs formState) Title() string {
	if fs.form.Mode() == form.ModeEdit {
		return "Edit User"
	}
	return "Create User"
}

// SubmitLabel is the label of the submit action.
func (fs formState) SubmitLabel() string {
	if fs.submitting {
		return "Saving..."
	}
	if fs.form.Mode() == form.ModeEdit {
		return "Update User"
	}
	return "Create User"
}

// View renders the form, scrolled so the focused field is visible.
func (fs formState) View(width, height int) string {
	var lines []string
	focusLine := 0
	violations := fs.form.Violations()
	focused := fs.Focused()

	field := func(ref form.FieldRef, indent string) {
		if ref == focused {
			focusLine = len(lines)
			lines = append(lines, indent+labelText.Render(ref.Label()+":")+" "+fs.input.View())
		} else {
			v, _ := fs.form.Value(ref)
			lines = append(lines, indent+ref.Label()+": "+v)
		}
		for _, msg := range violations.For(ref.Path()) {
			lines = append(lines, indent+"  "+errorText.Render(msg))
		}
	}

	lines = append(lines, titleStyle.Render(fs.Title()), "")
	for _, ref := range fs.form.Fields() {
		if ref.Group == form.GroupUser {
			field(ref, "  ")
		}
	}

	lines = append(lines, "", titleStyle.Render("Addresses"))
	for _, msg := range violations.For("addresses") {
		lines = append(lines, "  "+errorText.Render(msg))
	}
	for i := range fs.form.Addresses() {
		head := fmt.Sprintf("  Address %d", i+1)
		if fs.form.CanRemoveAddress() {
			head += mutedText.Render("  [ctrl+x] remove")
		}
		lines = append(lines, head)
		for _, name := range []string{form.FieldPostalCode, form.FieldCity, form.FieldStreet, form.FieldHouseNumber, form.FieldOtherInfo} {
			field(form.Address(i, name), "    ")
		}
	}
	lines = append(lines, mutedText.Render("  [ctrl+a] add address"))

	lines = append(lines, "", titleStyle.Render("Phone Numbers"))
	for _, msg := range violations.For("phoneNumbers") {
		lines = append(lines, "  "+errorText.Render(msg))
	}
	for i := range fs.form.Phones() {
		head := fmt.Sprintf("  Phone %d", i+1)
		if fs.form.CanRemovePhone() {
			head += mutedText.Render("  [ctrl+x] remove")
		}
		lines = append(lines, head)
		field(form.Phone(i), "    ")
	}
	lines = append(lines, mutedText.Render("  [ctrl+p] add phone"))

	cancel := "[esc] Cancel"
	if fs.submitting {
		cancel = mutedText.Render(cancel)
	}
	lines = append(lines, "", fmt.Sprintf("  [ctrl+s] %s   %s", fs.SubmitLabel(), cancel))

	return scrollTo(strings.Join(lines, "\n"), width, height, focusLine)
}

// scrollTo renders content in a viewport of the given size, scrolled so
// line sits near the middle. Content that fits is returned unchanged.
func scrollTo(content string, width, height, line int) string {
	if height <= 0 || strings.Count(content, "\n")+1 <= height {
		return content
	}
	vp := viewport.New(width, height)
	vp.SetContent(content)
	offset := line - height/2
	if offset < 0 {
		offset = 0
	}
	vp.SetYOffset(offset)
	return vp.View()
}
