package dashboard

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
)

// loadedModel returns a sized model whose initial fetch has completed.
func loadedModel(t *testing.T, store *fakeStore) Model {
	t.Helper()
	m := NewModel(store, WithFormOptions(counterKeys()))
	for _, msg := range execBatch(t, m.Init()) {
		m, _ = update(m, msg)
	}
	m, _ = update(m, tea.WindowSizeMsg{Width: 120, Height: 60})
	return m
}

// drain runs cmd and feeds every resulting message back into m.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range execBatch(t, cmd) {
		var next tea.Cmd
		m, next = update(m, msg)
		if next != nil {
			m = drain(t, m, next)
		}
	}
	return m
}

func TestNewModel_Initializing(t *testing.T) {
	m := NewModel(newFakeStore())

	if m.Mode() != ModeList {
		t.Errorf("mode = %d, want ModeList", m.Mode())
	}
	if got := m.View(); got != "Initializing..." {
		t.Errorf("view before sizing = %q", got)
	}
}

func TestModel_LoadsRecords(t *testing.T) {
	// Given: a store with two records
	m := loadedModel(t, newFakeStore(sampleRecords()...))

	// Then: both are listed
	if len(m.Records()) != 2 {
		t.Fatalf("records = %d, want 2", len(m.Records()))
	}
	view := stripANSI(m.View())
	if !strings.Contains(view, "Test User") || !strings.Contains(view, "Another User") {
		t.Errorf("view should list records:\n%s", view)
	}
}

func TestModel_LoadErrorShowsBanner(t *testing.T) {
	// Given: a store that fails to list
	store := newFakeStore()
	store.listErr = errors.New("connection refused")

	// When: the model loads
	m := loadedModel(t, store)

	// Then: the error banner and retry hint are shown
	view := stripANSI(m.View())
	if !strings.Contains(view, "Error Fetching Users: connection refused") {
		t.Errorf("view should show fetch error:\n%s", view)
	}
	if !strings.Contains(view, "Press r to retry") {
		t.Errorf("view should offer retry:\n%s", view)
	}
}

func TestModel_RefreshReloads(t *testing.T) {
	store := newFakeStore()
	m := loadedModel(t, store)
	store.records = sampleRecords()

	m, cmd := update(m, keyRunes("r"))
	m = drain(t, m, cmd)

	if len(m.Records()) != 2 {
		t.Errorf("records after refresh = %d, want 2", len(m.Records()))
	}
}

func TestModel_KeysIgnoredWhileLoading(t *testing.T) {
	m := NewModel(newFakeStore(sampleRecords()...))
	m, _ = update(m, tea.WindowSizeMsg{Width: 120, Height: 60})

	_, cmd := update(m, keyRunes("n"))

	if cmd != nil {
		t.Error("list keys should be ignored while loading")
	}
}

func TestModel_CreateAppendsRecord(t *testing.T) {
	// Given: a loaded model
	store := newFakeStore(sampleRecords()...)
	m := loadedModel(t, store)

	// When: a new record is entered and saved
	m, cmd := update(m, keyRunes("n"))
	m = drain(t, m, cmd)
	if m.Mode() != ModeForm {
		t.Fatalf("mode = %d, want ModeForm", m.Mode())
	}
	m.form = fillForm(m.form)
	m, cmd = update(m, submitKey)
	m = drain(t, m, cmd)

	// Then: the record is appended and a success banner is shown
	if m.Mode() != ModeList {
		t.Errorf("mode = %d, want ModeList", m.Mode())
	}
	if len(store.created) != 1 {
		t.Fatalf("store creates = %d, want 1", len(store.created))
	}
	recs := m.Records()
	if len(recs) != 3 || recs[2].Name != "Jane Doe" {
		t.Errorf("records = %+v", recs)
	}
	view := stripANSI(m.View())
	if !strings.Contains(view, "User Created: User Jane Doe created successfully.") {
		t.Errorf("view should show success banner:\n%s", view)
	}
}

func TestModel_EditReplacesRecord(t *testing.T) {
	// Given: the first record open for editing
	store := newFakeStore(sampleRecords()...)
	m := loadedModel(t, store)
	m, cmd := update(m, keyRunes("e"))
	m = drain(t, m, cmd)
	if !containsPlainText(m.View(), "Edit User") {
		t.Fatalf("view should show edit form:\n%s", stripANSI(m.View()))
	}

	// When: the name is changed and saved
	m.form.input.SetValue("")
	m.form = typeInto(m.form, "Renamed User")
	m, cmd = update(m, submitKey)
	m = drain(t, m, cmd)

	// Then: every field is sent and the page row is replaced in place
	sent, ok := store.updated["1"]
	if !ok {
		t.Fatal("store should receive an update for record 1")
	}
	if sent.Name == nil || *sent.Name != "Renamed User" || sent.TAJ == nil {
		t.Errorf("update payload = %+v", sent)
	}
	if recs := m.Records(); recs[0].Name != "Renamed User" || len(recs) != 2 {
		t.Errorf("records = %+v", recs)
	}
	if !containsPlainText(m.View(), "User Updated: User Renamed User updated successfully.") {
		t.Errorf("view should show update banner:\n%s", stripANSI(m.View()))
	}
}

func TestModel_SaveErrorStaysInForm(t *testing.T) {
	// Given: a store that rejects saves
	store := newFakeStore(sampleRecords()...)
	store.saveErr = errors.New("request failed with status 500")
	m := loadedModel(t, store)
	m, cmd := update(m, keyRunes("n"))
	m = drain(t, m, cmd)

	// When: a valid form is submitted
	m.form = fillForm(m.form)
	m, cmd = update(m, submitKey)
	m = drain(t, m, cmd)

	// Then: the form stays open with its input and an error banner
	if m.Mode() != ModeForm {
		t.Errorf("mode = %d, want ModeForm", m.Mode())
	}
	if m.form.submitting {
		t.Error("submitting should be cleared after the response")
	}
	if len(m.Records()) != 2 {
		t.Errorf("records = %d, page should be unchanged", len(m.Records()))
	}
	if v, _ := m.form.form.Value(m.form.Focused()); v != "Jane Doe" {
		t.Errorf("form input lost, focused value = %q", v)
	}
	if !containsPlainText(m.View(), "Error Saving User") {
		t.Errorf("view should show save error:\n%s", stripANSI(m.View()))
	}
}

func TestModel_DeleteRemovesRecord(t *testing.T) {
	// Given: a loaded model
	store := newFakeStore(sampleRecords()...)
	m := loadedModel(t, store)

	// When: the first record is deleted and confirmed
	m, cmd := update(m, keyRunes("d"))
	m = drain(t, m, cmd)
	if m.Mode() != ModeConfirmDelete {
		t.Fatalf("mode = %d, want ModeConfirmDelete", m.Mode())
	}
	m, cmd = update(m, keyRunes("y"))
	m = drain(t, m, cmd)

	// Then: the record is gone from the page
	if len(store.deleted) != 1 || store.deleted[0] != "1" {
		t.Errorf("store deletes = %v", store.deleted)
	}
	recs := m.Records()
	if len(recs) != 1 || recs[0].ID != "2" {
		t.Errorf("records = %+v", recs)
	}
	if !containsPlainText(m.View(), "User Deleted: User data has been depersonalized.") {
		t.Errorf("view should show delete banner:\n%s", stripANSI(m.View()))
	}
}

func TestModel_DeleteErrorKeepsRecord(t *testing.T) {
	store := newFakeStore(sampleRecords()...)
	store.deleteErr = errors.New("User not found")
	m := loadedModel(t, store)

	m, cmd := update(m, keyRunes("d"))
	m = drain(t, m, cmd)
	m, cmd = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = drain(t, m, cmd)

	if m.Mode() != ModeList {
		t.Errorf("mode = %d, want ModeList", m.Mode())
	}
	if len(m.Records()) != 2 {
		t.Errorf("records = %d, want 2", len(m.Records()))
	}
	if !containsPlainText(m.View(), "Error Deleting User: User not found") {
		t.Errorf("view should show delete error:\n%s", stripANSI(m.View()))
	}
}

func TestModel_CancelDeleteReturnsToList(t *testing.T) {
	store := newFakeStore(sampleRecords()...)
	m := loadedModel(t, store)

	m, cmd := update(m, keyRunes("d"))
	m = drain(t, m, cmd)
	m, cmd = update(m, keyRunes("n"))
	m = drain(t, m, cmd)

	if m.Mode() != ModeList || len(store.deleted) != 0 {
		t.Errorf("mode = %d, deletes = %v", m.Mode(), store.deleted)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	// Given: a model in form mode
	m := loadedModel(t, newFakeStore(sampleRecords()...))
	m, cmd := update(m, keyRunes("n"))
	m = drain(t, m, cmd)

	// When: q is typed
	m, _ = update(m, keyRunes("q"))

	// Then: it is text, not a quit
	if m.Mode() != ModeForm {
		t.Errorf("mode = %d, q should not leave the form", m.Mode())
	}
	if m.form.input.Value() != "q" {
		t.Errorf("input = %q, want q", m.form.input.Value())
	}

	// When: ctrl+c is pressed
	_, cmd = update(m, tea.KeyMsg{Type: tea.KeyCtrlC})

	// Then: the program quits
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("ctrl+c emitted %#v, want tea.QuitMsg", cmd())
	}
}

func TestModel_OpeningFormClearsStatus(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("boom")
	m := loadedModel(t, store)
	store.listErr = nil

	m, cmd := update(m, keyRunes("r"))
	m = drain(t, m, cmd)
	m, cmd = update(m, keyRunes("n"))
	m = drain(t, m, cmd)

	if containsPlainText(m.View(), "Error Fetching Users") {
		t.Errorf("status should be cleared:\n%s", stripANSI(m.View()))
	}
}

func TestModel_DoubleSubmitSendsOneCreate(t *testing.T) {
	// Given: a filled create form
	store := newFakeStore(sampleRecords()...)
	m := loadedModel(t, store)
	m, cmd := update(m, keyRunes("n"))
	m = drain(t, m, cmd)
	m.form = fillForm(m.form)

	// When: ctrl+s is pressed twice before any command runs
	m, first := update(m, submitKey)
	m, second := update(m, submitKey)
	m = drain(t, m, first)
	m = drain(t, m, second)

	// Then: the store sees a single create
	if len(store.created) != 1 {
		t.Errorf("store creates = %d, want 1", len(store.created))
	}
	if len(m.Records()) != 3 {
		t.Errorf("records = %d, want 3", len(m.Records()))
	}
}

func TestModel_DoubleConfirmSendsOneDelete(t *testing.T) {
	store := newFakeStore(sampleRecords()...)
	m := loadedModel(t, store)
	m, cmd := update(m, keyRunes("d"))
	m = drain(t, m, cmd)

	m, first := update(m, keyRunes("y"))
	m, second := update(m, keyRunes("y"))
	m = drain(t, m, first)
	m = drain(t, m, second)

	if len(store.deleted) != 1 {
		t.Errorf("store deletes = %v, want one", store.deleted)
	}
}

// TestModel_Teatest_DeleteFlow drives the program end to end via teatest.
func TestModel_Teatest_DeleteFlow(t *testing.T) {
	store := newFakeStore(sampleRecords()...)
	m := NewModel(store)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 40))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Another User"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(keyRunes("j"))
	tm.Send(keyRunes("d"))
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("depersonalize"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(keyRunes("y"))
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("User Deleted"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(keyRunes("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final := tm.FinalModel(t).(Model)
	recs := final.Records()
	if len(recs) != 1 || recs[0].ID != "1" {
		t.Errorf("records = %+v, want only record 1", recs)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "2" {
		t.Errorf("store deletes = %v, want [2]", store.deleted)
	}
}
