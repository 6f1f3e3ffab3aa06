package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/pdm/internal/form"
	"github.com/smileynet/pdm/internal/record"
)

// helpBarHeight is the number of lines reserved for the help bar at the bottom.
const helpBarHeight = 1

// bannerHeight is the number of lines a status banner takes (text + border).
const bannerHeight = 3

// status is the outcome of the most recent operation.
type status struct {
	title  string
	detail string
	isErr  bool
}

// Model is the root Bubble Tea model for the dashboard TUI.
// It owns the page-scoped records and routes messages by mode.
type Model struct {
	mode    Mode
	ctx     context.Context
	store   RecordStore
	logger  *slog.Logger
	formOpt []form.Option

	width  int
	height int

	list    listState
	form    formState
	confirm confirmState
	status  status

	spinner spinner.Model
	help    help.Model
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger for API outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithContext sets the context passed to RecordStore calls.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithFormOptions sets options applied to every form the dashboard opens.
func WithFormOptions(opts ...form.Option) Option {
	return func(m *Model) {
		m.formOpt = opts
	}
}

// NewModel creates a dashboard Model in list mode, loading records from store.
func NewModel(store RecordStore, opts ...Option) Model {
	m := Model{
		mode:    ModeList,
		ctx:     context.Background(),
		store:   store,
		logger:  slog.New(slog.DiscardHandler),
		list:    newListState(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts the initial record fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadRecords(m.ctx, m.store), m.spinner.Tick)
}

// busy reports whether any request is in flight.
func (m Model) busy() bool {
	return m.list.loading || m.form.submitting || m.confirm.deleting
}

// Update handles incoming messages with mode-based routing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case RecordsLoadedMsg:
		if msg.Err != nil {
			m.logger.Error("fetch users failed", "error", msg.Err)
			m.status = status{title: "Error Fetching Users", detail: msg.Err.Error(), isErr: true}
		}
		m.list, _ = m.list.Update(msg)
		return m, nil

	case RefreshMsg:
		m.list.loading = true
		return m, tea.Batch(loadRecords(m.ctx, m.store), m.spinner.Tick)

	case NewRecordMsg:
		m.status = status{}
		m.form = newFormState(nil, m.formOpt...)
		m.mode = ModeForm
		return m, nil

	case EditRecordMsg:
		i := m.list.find(msg.ID)
		if i < 0 {
			return m, nil
		}
		rec := m.list.records[i]
		m.status = status{}
		m.form = newFormState(&rec, m.formOpt...)
		m.mode = ModeForm
		return m, nil

	case DeleteRecordMsg:
		i := m.list.find(msg.ID)
		if i < 0 {
			return m, nil
		}
		rec := m.list.records[i]
		m.status = status{}
		m.confirm = newConfirmState(rec.ID, rec.Name, rec.Email)
		m.mode = ModeConfirmDelete
		return m, nil

	case CancelFormMsg:
		m.mode = ModeList
		return m, nil

	case SubmitFormMsg:
		m.form.submitting = true
		return m, tea.Batch(m.saveRecord(msg), m.spinner.Tick)

	case RecordSavedMsg:
		m.form.submitting = false
		if msg.Err != nil {
			m.logger.Error("save user failed", "error", msg.Err)
			m.status = status{title: "Error Saving User", detail: msg.Err.Error(), isErr: true}
			return m, nil
		}
		m.list = m.list.upsert(msg.Record)
		m.mode = ModeList
		if msg.Created {
			m.logger.Info("user created", "id", msg.Record.ID)
			m.status = status{title: "User Created", detail: fmt.Sprintf("User %s created successfully.", msg.Record.Name)}
		} else {
			m.logger.Info("user updated", "id", msg.Record.ID)
			m.status = status{title: "User Updated", detail: fmt.Sprintf("User %s updated successfully.", msg.Record.Name)}
		}
		return m, nil

	case confirmDeleteMsg:
		m.confirm.deleting = true
		return m, tea.Batch(m.deleteRecord(msg.ID), m.spinner.Tick)

	case RecordDeletedMsg:
		m.confirm.deleting = false
		m.mode = ModeList
		if msg.Err != nil {
			m.logger.Error("delete user failed", "id", msg.ID, "error", msg.Err)
			m.status = status{title: "Error Deleting User", detail: msg.Err.Error(), isErr: true}
			return m, nil
		}
		m.logger.Info("user deleted", "id", msg.ID)
		m.list = m.list.remove(msg.ID)
		m.status = status{title: "User Deleted", detail: "User data has been depersonalized."}
		return m, nil
	}

	if m.mode == ModeForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey processes key messages with global and mode-specific routing.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	switch m.mode {
	case ModeForm:
		m.form, cmd = m.form.Update(msg)
	case ModeConfirmDelete:
		m.confirm, cmd = m.confirm.Update(msg)
	default:
		if msg.String() == "q" {
			return m, tea.Quit
		}
		if m.list.loading {
			return m, nil
		}
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

// saveRecord returns a tea.Cmd that creates or updates a record.
func (m Model) saveRecord(msg SubmitFormMsg) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		if msg.ID == "" {
			rec, err := store.Create(ctx, msg.Input)
			return RecordSavedMsg{Record: rec, Created: true, Err: err}
		}
		rec, err := store.Update(ctx, msg.ID, msg.Input.Update())
		return RecordSavedMsg{Record: rec, Err: err}
	}
}

// deleteRecord returns a tea.Cmd that depersonalizes a record.
func (m Model) deleteRecord(id string) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		return RecordDeletedMsg{ID: id, Err: store.Delete(ctx, id)}
	}
}

// Records returns the records currently held by the page.
func (m Model) Records() []record.UserRecord {
	return append([]record.UserRecord(nil), m.list.records...)
}

// Mode returns the current view mode.
func (m Model) Mode() Mode {
	return m.mode
}

// contentHeight returns the usable height for the main view,
// accounting for the banner and help bar.
func (m Model) contentHeight() int {
	h := m.height - helpBarHeight
	if m.status.title != "" {
		h -= bannerHeight
	}
	if h < 1 {
		return 1
	}
	return h
}

// View renders the current mode with status banner and help bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var body string
	switch m.mode {
	case ModeForm:
		body = m.form.View(m.width, m.contentHeight())
	case ModeConfirmDelete:
		body = m.confirm.View(m.spinner.View())
	default:
		body = m.list.View(m.spinner.View(), m.width, m.contentHeight())
	}

	parts := make([]string, 0, 3)
	if m.status.title != "" {
		text := m.status.title
		if m.status.detail != "" {
			text += ": " + m.status.detail
		}
		parts = append(parts, Banner(m.status.isErr).Render(text))
	}
	parts = append(parts,
		lipgloss.NewStyle().Height(m.contentHeight()).MaxHeight(m.contentHeight()).Render(body),
		m.help.View(HelpBindings(m.mode)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
