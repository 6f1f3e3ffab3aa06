package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/smileynet/pdm/internal/api"
	"github.com/smileynet/pdm/internal/config"
	"github.com/smileynet/pdm/internal/dashboard"
	"github.com/smileynet/pdm/internal/listing"
	"github.com/smileynet/pdm/internal/logging"
	"github.com/smileynet/pdm/internal/record"
	"github.com/smileynet/pdm/internal/schema"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errConfirmRequired is returned by delete when --yes is missing.
var errConfirmRequired = errors.New("refusing to delete without --yes")

// CLI is the top-level command structure for pdm.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Browse  BrowseCmd        `cmd:"" help:"Open the interactive user browser."`
	List    ListCmd          `cmd:"" help:"List users."`
	Show    ShowCmd          `cmd:"" help:"Show one user with all details."`
	Create  CreateCmd        `cmd:"" help:"Create a user from a YAML or JSON file."`
	Update  UpdateCmd        `cmd:"" help:"Update a user from a YAML or JSON file."`
	Delete  DeleteCmd        `cmd:"" help:"Delete (depersonalize) a user."`
}

// --- Consumer-side interfaces ---

type userLister interface {
	List(ctx context.Context) ([]record.UserRecord, error)
}

type userGetter interface {
	Get(ctx context.Context, id string) (record.UserRecord, error)
}

type userCreator interface {
	Create(ctx context.Context, in record.Input) (record.UserRecord, error)
}

type userUpdater interface {
	Update(ctx context.Context, id string, in record.UpdateInput) (record.UserRecord, error)
}

type userDeleter interface {
	Delete(ctx context.Context, id string) error
}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// loadConfig loads .env, then layered config from user and project paths,
// then env overrides.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/pdm/config.yaml"),
		".pdm/config.yaml",
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newClient builds the API client. A missing base URL is logged and left
// for each call to report.
func newClient(cfg *config.Config, logger *slog.Logger) *api.Client {
	if err := cfg.RequireAPI(); err != nil {
		logger.Error("startup", "error", err)
	}
	return api.NewClient(cfg.API.BaseURL, api.WithLogger(logger))
}

// setup loads config and returns a context, a stderr logger and a client
// for a plain command.
func setup(name string) (context.Context, *api.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	ctx := logging.WithCommand(context.Background(), name)
	return ctx, newClient(cfg, logger), nil
}

func isTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// tableStyles colours output only on a terminal.
func tableStyles(plain bool) listing.Styles {
	if plain || !isTTY(os.Stdout) {
		return listing.PlainStyles()
	}
	return listing.DefaultStyles()
}

// --- Browse command ---

// BrowseCmd opens the interactive dashboard TUI.
type BrowseCmd struct{}

// Run builds real dependencies and launches the dashboard TUI.
func (b *BrowseCmd) Run() error {
	if !isTTY(os.Stdout) {
		return fmt.Errorf("browse: requires a terminal (TTY)")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}

	// The dashboard owns the terminal, so logs go to a file or nowhere.
	var out io.Writer
	if cfg.Log.File != "" {
		f, err := logging.Open(cfg.Log.File)
		if err != nil {
			return fmt.Errorf("browse: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: out})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logging.WithCommand(ctx, "browse")

	m := dashboard.NewModel(newClient(cfg, logger),
		dashboard.WithLogger(logger),
		dashboard.WithContext(ctx),
	)
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	return b.run(true, prog)
}

// run executes the tea program, enabling testable wiring.
func (b *BrowseCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("browse: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// --- Plain commands ---

// ListCmd prints every user as a table.
type ListCmd struct {
	Expand string `help:"ID of a user whose details are shown." placeholder:"ID"`
	Plain  bool   `help:"Force plain text output even if stdout is a TTY." default:"false"`
}

// Run executes the list command.
func (l *ListCmd) Run() error {
	ctx, client, err := setup("list")
	if err != nil {
		return err
	}
	return l.run(ctx, os.Stdout, client, tableStyles(l.Plain))
}

func (l *ListCmd) run(ctx context.Context, w io.Writer, users userLister, st listing.Styles) error {
	records, err := users.List(ctx)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	_, _ = fmt.Fprintln(w, listing.Table(records, listing.Options{
		Cursor:     -1,
		ExpandedID: l.Expand,
		Styles:     st,
	}))
	return nil
}

// ShowCmd prints one user, expanded.
type ShowCmd struct {
	ID    string `arg:"" help:"User ID."`
	Plain bool   `help:"Force plain text output even if stdout is a TTY." default:"false"`
}

// Run executes the show command.
func (s *ShowCmd) Run() error {
	ctx, client, err := setup("show")
	if err != nil {
		return err
	}
	return s.run(ctx, os.Stdout, client, tableStyles(s.Plain))
}

func (s *ShowCmd) run(ctx context.Context, w io.Writer, users userGetter, st listing.Styles) error {
	r, err := users.Get(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}
	_, _ = fmt.Fprintln(w, listing.Table([]record.UserRecord{r}, listing.Options{
		Cursor:     -1,
		ExpandedID: r.ID,
		Styles:     st,
	}))
	return nil
}

// CreateCmd creates a user from a file.
type CreateCmd struct {
	File string `short:"f" required:"" type:"existingfile" help:"YAML or JSON file holding the user."`
}

// Run executes the create command.
func (c *CreateCmd) Run() error {
	ctx, client, err := setup("create")
	if err != nil {
		return err
	}
	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	defer f.Close()
	return c.run(ctx, os.Stdout, f, client)
}

func (c *CreateCmd) run(ctx context.Context, w io.Writer, src io.Reader, users userCreator) error {
	var in record.Input
	if err := decodeFile(src, &in); err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if err := schema.New().Input(in); err != nil {
		printViolations(w, err)
		return fmt.Errorf("create: %w", err)
	}
	r, err := users.Create(ctx, in.Create())
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	_, _ = fmt.Fprintf(w, "User %s created successfully. (id %s)\n", r.Name, r.ID)
	return nil
}

// UpdateCmd applies a partial update from a file.
type UpdateCmd struct {
	ID   string `arg:"" help:"User ID."`
	File string `short:"f" required:"" type:"existingfile" help:"YAML or JSON file holding the fields to change."`
}

// Run executes the update command.
func (u *UpdateCmd) Run() error {
	ctx, client, err := setup("update")
	if err != nil {
		return err
	}
	f, err := os.Open(u.File)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	defer f.Close()
	return u.run(ctx, os.Stdout, f, client)
}

func (u *UpdateCmd) run(ctx context.Context, w io.Writer, src io.Reader, users userUpdater) error {
	var in record.UpdateInput
	if err := decodeFile(src, &in); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if err := schema.New().Update(in); err != nil {
		printViolations(w, err)
		return fmt.Errorf("update: %w", err)
	}
	r, err := users.Update(ctx, u.ID, in)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	_, _ = fmt.Fprintf(w, "User %s updated successfully.\n", r.Name)
	return nil
}

// DeleteCmd depersonalizes a user.
type DeleteCmd struct {
	ID  string `arg:"" help:"User ID."`
	Yes bool   `help:"Confirm the delete. This action cannot be undone." default:"false"`
}

// Run executes the delete command.
func (d *DeleteCmd) Run() error {
	if !d.Yes {
		return fmt.Errorf("delete: %w", errConfirmRequired)
	}
	ctx, client, err := setup("delete")
	if err != nil {
		return err
	}
	return d.run(ctx, os.Stdout, client)
}

func (d *DeleteCmd) run(ctx context.Context, w io.Writer, users userDeleter) error {
	if !d.Yes {
		return fmt.Errorf("delete: %w", errConfirmRequired)
	}
	if err := users.Delete(ctx, d.ID); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	_, _ = fmt.Fprintln(w, "User data has been depersonalized.")
	return nil
}

// decodeFile reads YAML (and therefore JSON) into v, rejecting unknown fields.
func decodeFile(r io.Reader, v any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("input file is empty")
		}
		return fmt.Errorf("decoding input: %w", err)
	}
	return nil
}

func printViolations(w io.Writer, err error) {
	var v schema.Violations
	if !errors.As(err, &v) {
		return
	}
	for _, vi := range v {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", vi.Field, vi.Message)
	}
}

const (
	exitSuccess    = 0
	exitAPI        = 1
	exitSetup      = 2
	exitValidation = 3
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var v schema.Violations
	if errors.As(err, &v) {
		return exitValidation
	}
	var ae *api.Error
	if errors.As(err, &ae) {
		return exitAPI
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Description("Manage personal data records through the users API."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
