package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/pdm/internal/listing"
	"github.com/smileynet/pdm/internal/record"
)

// listState manages the record table, cursor, expansion, and
// loading/error states for list mode.
type listState struct {
	records    []record.UserRecord
	cursor     int
	expandedID string
	loading    bool
	err        error
	keys       listKeys
}

// newListState returns a listState in the loading state.
func newListState() listState {
	return listState{loading: true, keys: ListKeyMap()}
}

// loadRecords returns a tea.Cmd that calls store.List() asynchronously
// and wraps the result in a RecordsLoadedMsg.
func loadRecords(ctx context.Context, store RecordStore) tea.Cmd {
	return func() tea.Msg {
		records, err := store.List(ctx)
		return RecordsLoadedMsg{Records: records, Err: err}
	}
}

// Update processes messages for the list state.
func (ls listState) Update(msg tea.Msg) (listState, tea.Cmd) {
	switch msg := msg.(type) {
	case RecordsLoadedMsg:
		return ls.applyRecords(msg.Records, msg.Err), nil

	case tea.KeyMsg:
		if ls.loading {
			return ls, nil
		}
		return ls.handleKey(msg)
	}

	return ls, nil
}

// applyRecords applies a fetched record list (or error) to the list state,
// clearing the loading indicator. The cursor is kept in range.
func (ls listState) applyRecords(records []record.UserRecord, err error) listState {
	ls.loading = false
	if err != nil {
		ls.err = err
		ls.records = nil
		ls.cursor = 0
		ls.expandedID = ""
		return ls
	}
	ls.err = nil
	ls.records = append([]record.UserRecord(nil), records...)
	if ls.find(ls.expandedID) < 0 {
		ls.expandedID = ""
	}
	ls.clampCursor()
	return ls
}

func (ls listState) handleKey(msg tea.KeyMsg) (listState, tea.Cmd) {
	switch {
	case key.Matches(msg, ls.keys.Up):
		if len(ls.records) > 0 {
			ls.cursor--
			if ls.cursor < 0 {
				ls.cursor = len(ls.records) - 1
			}
		}
		return ls, nil

	case key.Matches(msg, ls.keys.Down):
		if len(ls.records) > 0 {
			ls.cursor++
			if ls.cursor >= len(ls.records) {
				ls.cursor = 0
			}
		}
		return ls, nil

	case key.Matches(msg, ls.keys.Toggle):
		id := ls.SelectedID()
		if id == "" {
			return ls, nil
		}
		if ls.expandedID == id {
			ls.expandedID = ""
		} else {
			ls.expandedID = id
		}
		return ls, nil

	// Action keys never change expansion.
	case key.Matches(msg, ls.keys.Edit):
		if id := ls.SelectedID(); id != "" {
			return ls, func() tea.Msg { return EditRecordMsg{ID: id} }
		}
		return ls, nil

	case key.Matches(msg, ls.keys.Delete):
		if id := ls.SelectedID(); id != "" {
			return ls, func() tea.Msg { return DeleteRecordMsg{ID: id} }
		}
		return ls, nil

	case key.Matches(msg, ls.keys.New):
		return ls, func() tea.Msg { return NewRecordMsg{} }

	case key.Matches(msg, ls.keys.Refresh):
		ls.loading = true
		ls.err = nil
		return ls, func() tea.Msg { return RefreshMsg{} }
	}

	return ls, nil
}

// upsert replaces the record with the same id or appends it.
func (ls listState) upsert(r record.UserRecord) listState {
	records := append([]record.UserRecord(nil), ls.records...)
	if i := ls.find(r.ID); i >= 0 {
		records[i] = r
	} else {
		records = append(records, r)
		ls.cursor = len(records) - 1
	}
	ls.records = records
	return ls
}

// remove drops the record with id from the page.
func (ls listState) remove(id string) listState {
	i := ls.find(id)
	if i < 0 {
		return ls
	}
	records := make([]record.UserRecord, 0, len(ls.records)-1)
	records = append(records, ls.records[:i]...)
	records = append(records, ls.records[i+1:]...)
	ls.records = records
	if ls.expandedID == id {
		ls.expandedID = ""
	}
	ls.clampCursor()
	return ls
}

func (ls listState) find(id string) int {
	if id == "" {
		return -1
	}
	for i, r := range ls.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (ls *listState) clampCursor() {
	if ls.cursor >= len(ls.records) {
		ls.cursor = len(ls.records) - 1
	}
	if ls.cursor < 0 {
		ls.cursor = 0
	}
}

// SelectedID returns the record ID at the current cursor position,
// or "" if the list is empty or still loading.
func (ls listState) SelectedID() string {
	if ls.loading || len(ls.records) == 0 || ls.cursor < 0 || ls.cursor >= len(ls.records) {
		return ""
	}
	return ls.records[ls.cursor].ID
}

// View renders the list content, scrolled to keep the cursor row visible.
// spinnerView is the current spinner frame (may be empty when spinner is inactive).
func (ls listState) View(spinnerView string, width, height int) string {
	if ls.loading {
		return fmt.Sprintf("%s Loading users...", spinnerView)
	}

	if ls.err != nil {
		return errorText.Render(fmt.Sprintf("Error: %s", ls.err)) + "\n\nPress r to retry"
	}

	table := listing.Table(ls.records, listing.Options{
		Cursor:     ls.cursor,
		ExpandedID: ls.expandedID,
		Styles:     TableStyles(),
	})
	cursorLine := 0
	for i, line := range strings.Split(table, "\n") {
		if strings.Contains(line, listing.CursorMarker) {
			cursorLine = i
			break
		}
	}
	return scrollTo(table, width, height, cursorLine)
}
