package listing

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/pdm/internal/record"
)

// CursorMarker is the prefix shown on the selected row.
const CursorMarker = "▸ "

// Actions is the action column text of every row.
const Actions = "[e]dit [d]elete"

var headers = []string{"Name", "Email", "Date of Birth", "Actions"}

// Styles decorates the table.
type Styles struct {
	Header   lipgloss.Style
	Selected lipgloss.Style
	Expanded lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style
}

// PlainStyles returns styles that add no decoration.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{Header: s, Selected: s, Expanded: s, Label: s, Muted: s}
}

// DefaultStyles returns the colored styles used on a terminal.
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"}),
		Expanded: lipgloss.NewStyle().Background(lipgloss.AdaptiveColor{Light: "254", Dark: "236"}),
		Label:    lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"}),
	}
}

// Options controls which row is highlighted and which is expanded.
type Options struct {
	// Cursor is the index of the highlighted row, or -1 for none.
	Cursor int
	// ExpandedID is the id of the record whose detail is shown, if any.
	ExpandedID string
	Styles     Styles
}

// Table renders records as a table with one primary row each. The row
// whose id matches opts.ExpandedID is followed by its detail block. An
// empty slice renders NoUsers.
func Table(records []record.UserRecord, opts Options) string {
	if len(records) == 0 {
		return NoUsers
	}

	rows := make([][]string, len(records))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for i, r := range records {
		rows[i] = []string{r.Name, r.Email, FormatDate(r.DateOfBirth), Actions}
		for j, cell := range rows[i] {
			if w := lipgloss.Width(cell); w > widths[j] {
				widths[j] = w
			}
		}
	}

	var b strings.Builder
	b.WriteString(opts.Styles.Header.Render(pad("  ", headers, widths)))
	b.WriteByte('\n')
	b.WriteString(opts.Styles.Muted.Render("  " + rule(widths)))

	for i, r := range records {
		b.WriteByte('\n')
		prefix := "  "
		style := lipgloss.NewStyle()
		if i == opts.Cursor {
			prefix = CursorMarker
			style = opts.Styles.Selected
		}
		if r.ID != "" && r.ID == opts.ExpandedID {
			style = style.Inherit(opts.Styles.Expanded)
		}
		b.WriteString(style.Render(pad(prefix, rows[i], widths)))
		if r.ID != "" && r.ID == opts.ExpandedID {
			b.WriteByte('\n')
			b.WriteString(Detail(r, opts.Styles))
		}
	}
	return b.String()
}

func pad(prefix string, cells []string, widths []int) string {
	var b strings.Builder
	b.WriteString(prefix)
	for i, cell := range cells {
		b.WriteString(cell)
		if i == len(cells)-1 {
			break
		}
		b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
	}
	return b.String()
}

func rule(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	return strings.Join(parts, "  ")
}

// Detail renders the secondary fields and both collections of r.
func Detail(r record.UserRecord, st Styles) string {
	const indent = "    "
	var b strings.Builder

	field := func(label, value string) {
		b.WriteString(indent + st.Label.Render(label+":") + " " + orNA(value) + "\n")
	}
	field("Place of Birth", r.PlaceOfBirth)
	field("Mother's Maiden Name", r.MotherMaidenName)
	field("TAJ", r.TAJ)
	field("Tax ID", r.TaxID)

	b.WriteString(indent + st.Label.Render("Addresses") + "\n")
	if len(r.Addresses) == 0 {
		b.WriteString(indent + "  " + st.Muted.Render(NoAddresses) + "\n")
	}
	for _, a := range r.Addresses {
		b.WriteString(indent + "  - " + FormatAddress(a) + "\n")
	}

	b.WriteString(indent + st.Label.Render("Phone Numbers") + "\n")
	if len(r.PhoneNumbers) == 0 {
		b.WriteString(indent + "  " + st.Muted.Render(NoPhones))
	}
	for i, p := range r.PhoneNumbers {
		b.WriteString(indent + "  - " + FormatPhone(p))
		if i < len(r.PhoneNumbers)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
