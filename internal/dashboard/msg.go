// Package dashboard implements the interactive record browser: a
// collapsible record table, the record form, and a delete confirmation.
// It owns the page-scoped record slice and patches it after each
// successful API call.
package dashboard

import (
	"context"

	"github.com/smileynet/pdm/internal/record"
)

// Mode represents the current dashboard view mode.
type Mode int

const (
	ModeList          Mode = iota // Browsing the record table.
	ModeForm                      // Creating or editing a record.
	ModeConfirmDelete             // Confirming a delete.
)

// --- Consumer-side interfaces ---

// RecordStore is the users API as seen by the dashboard.
type RecordStore interface {
	List(ctx context.Context) ([]record.UserRecord, error)
	Create(ctx context.Context, in record.Input) (record.UserRecord, error)
	Update(ctx context.Context, id string, in record.UpdateInput) (record.UserRecord, error)
	Delete(ctx context.Context, id string) error
}

// --- tea.Msg types ---

// RecordsLoadedMsg carries the result of a RecordStore.List() call.
type RecordsLoadedMsg struct {
	Records []record.UserRecord
	Err     error
}

// RecordSavedMsg carries the result of a create or update call.
type RecordSavedMsg struct {
	Record  record.UserRecord
	Created bool
	Err     error
}

// RecordDeletedMsg carries the result of a RecordStore.Delete() call.
type RecordDeletedMsg struct {
	ID  string
	Err error
}

// RefreshMsg signals that the record list should be reloaded.
// listState emits this on 'r'; Model.Update intercepts it and calls loadRecords.
type RefreshMsg struct{}

// NewRecordMsg asks the host to open an empty form.
type NewRecordMsg struct{}

// EditRecordMsg asks the host to open the form for a record.
type EditRecordMsg struct {
	ID string
}

// DeleteRecordMsg asks the host to confirm deleting a record.
type DeleteRecordMsg struct {
	ID string
}

// SubmitFormMsg carries a validated payload from the form to the host.
// ID is empty when creating.
type SubmitFormMsg struct {
	ID    string
	Input record.Input
}

// CancelFormMsg signals the form was dismissed without saving.
type CancelFormMsg struct{}
