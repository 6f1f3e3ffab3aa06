package dashboard

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/pdm/internal/record"
)

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// execBatch executes a tea.Cmd, handling both single commands and batch
// commands. It returns all resulting messages. Spinner ticks are skipped
// to avoid infinite recursion.
func execBatch(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			if c != nil {
				result := c()
				// Skip spinner ticks to avoid recursion.
				if _, isTick := result.(spinner.TickMsg); !isTick {
					msgs = append(msgs, result)
				}
			}
		}
		return msgs
	}
	return []tea.Msg{msg}
}

// keyRunes builds a KeyMsg for typed characters.
func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// update feeds msg to m and returns the concrete Model.
func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// typeInto sends each rune of s to the form as its own key press.
func typeInto(fs formState, s string) formState {
	for _, r := range s {
		fs, _ = fs.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return fs
}

// fakeStore is an in-memory RecordStore that records calls.
type fakeStore struct {
	mu        sync.Mutex
	records   []record.UserRecord
	listErr   error
	saveErr   error
	deleteErr error
	created   []record.Input
	updated   map[string]record.UpdateInput
	deleted   []string
}

func newFakeStore(records ...record.UserRecord) *fakeStore {
	return &fakeStore{records: records, updated: map[string]record.UpdateInput{}}
}

func (f *fakeStore) List(context.Context) ([]record.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]record.UserRecord(nil), f.records...), nil
}

func (f *fakeStore) Create(_ context.Context, in record.Input) (record.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	if f.saveErr != nil {
		return record.UserRecord{}, f.saveErr
	}
	return record.UserRecord{
		ID:           "new-1",
		Name:         in.Name,
		Email:        in.Email,
		DateOfBirth:  in.DateOfBirth,
		Addresses:    in.Addresses,
		PhoneNumbers: in.PhoneNumbers,
	}, nil
}

func (f *fakeStore) Update(_ context.Context, id string, in record.UpdateInput) (record.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[id] = in
	if f.saveErr != nil {
		return record.UserRecord{}, f.saveErr
	}
	for _, r := range f.records {
		if r.ID == id {
			if in.Name != nil {
				r.Name = *in.Name
			}
			if in.Email != nil {
				r.Email = *in.Email
			}
			return r, nil
		}
	}
	return record.UserRecord{}, errNotFound
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

type stubError string

func (e stubError) Error() string { return string(e) }

const errNotFound = stubError("not found")

func sampleRecords() []record.UserRecord {
	return []record.UserRecord{
		{
			ID:               "1",
			Name:             "Test User",
			Email:            "test@example.com",
			DateOfBirth:      "1990-01-15",
			PlaceOfBirth:     "Test City",
			MotherMaidenName: "Test Maiden",
			TAJ:              "123456789",
			TaxID:            "9876543210",
			Addresses:        []record.Address{{ID: "a1", PostalCode: "1234", City: "Test City", Street: "Main St", HouseNumber: "10", OtherInfo: "Apt 1"}},
			PhoneNumbers:     []record.PhoneNumber{{ID: "p1", PhoneNumber: "555-1234"}},
		},
		{
			ID:          "2",
			Name:        "Another User",
			Email:       "another@example.com",
			DateOfBirth: "1985-05-20",
		},
	}
}
