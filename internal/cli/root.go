package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/shoplist/internal/codec"
	"github.com/idilsaglam/shoplist/internal/config"
	"github.com/idilsaglam/shoplist/internal/logger"
	"github.com/idilsaglam/shoplist/internal/resolver"
	"github.com/idilsaglam/shoplist/internal/share"
	"github.com/idilsaglam/shoplist/internal/store"
	"github.com/idilsaglam/shoplist/internal/store/jsonstore"
	"github.com/idilsaglam/shoplist/internal/store/sqlitestore"
	"github.com/idilsaglam/shoplist/internal/tui"
	"github.com/idilsaglam/shoplist/internal/ui"
)

// App carries root flags and the wiring shared by every subcommand.
type App struct {
	Dir     string
	Backend string
	Code    string
	Log     string

	cfg     config.Config
	log     *logger.Logger
	kv      store.KV
	closeKV func() error
	sess    *store.Session
	res     *resolver.Resolver
}

// usageError marks bad invocations (exit code 2).
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// Run executes the command line and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string) int {
	app := &App{}
	cmd := newRootCmd(app)
	cmd.SetArgs(args)
	cmd.SetOut(ui.Stdout)
	cmd.SetErr(ui.Stderr)
	err := cmd.Execute()
	app.close()
	if err != nil {
		ui.Fail(err.Error())
		if hint := hintFor(err); hint != "" {
			ui.Hint(hint)
		}
		return exitCode(err)
	}
	return 0
}

func exitCode(err error) int {
	var (
		ue usageError
		de *codec.DecodeError
		ie *codec.ImportError
	)
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue), store.IsValidation(err), errors.As(err, &de), errors.As(err, &ie):
		return 2
	case strings.HasPrefix(err.Error(), "unknown command"), strings.HasPrefix(err.Error(), "unknown flag"):
		return 2
	}
	return 1
}

func hintFor(err error) string {
	var ve *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNoList):
		return "Hint: run `shoplist new` or `shoplist connect <code>` first"
	case errors.As(err, &ve) && (ve.Field == "category" || ve.Field == "item"):
		return "Hint: run `shoplist ls` to see valid numbers"
	case errors.Is(err, store.ErrCorruptEntry):
		return "Hint: the stored list was left untouched; fix or remove it in the data dir"
	}
	return ""
}

// NewRootCmd builds the command tree on a fresh App.
func NewRootCmd() *cobra.Command { return newRootCmd(&App{}) }

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "shoplist",
		Short:         "Local-first shopping list (CLI + TUI)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive editor
  shoplist

  # Scriptable commands
  shoplist new
  shoplist add 1 Leche --price 1.10 --qty 2
  shoplist ls
  shoplist share --qr
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Data directory (default $SHOPLIST_DIR or ~/.shoplist)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Storage backend (json|sqlite|memory)")
	cmd.PersistentFlags().StringVar(&app.Code, "code", "", "Work on the list with this code instead of the last one used")
	cmd.PersistentFlags().StringVar(&app.Log, "log", "", "Log mode (quiet|dev|file)")

	cmd.AddCommand(newNewCmd(app))
	cmd.AddCommand(newConnectCmd(app))
	cmd.AddCommand(newOpenCmd(app))
	cmd.AddCommand(newListsCmd(app))
	cmd.AddCommand(newCloseCmd(app))
	cmd.AddCommand(newLsCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newCheckCmd(app))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newCategoryCmd(app))
	cmd.AddCommand(newShareCmd(app))
	cmd.AddCommand(newCodeCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	return cmd
}

// setup loads config (flags win over env and file), then opens logging,
// storage and the session.
func (app *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(app.Dir)
	if err != nil {
		return err
	}
	if app.Backend != "" {
		cfg.Backend = app.Backend
	}
	if app.Log != "" {
		cfg.Log = app.Log
	}
	if err := cfg.Validate(); err != nil {
		return usageError{msg: err.Error()}
	}
	// The editor owns the terminal, so quiet logging goes to a file instead.
	if cmd == cmd.Root() && cfg.Log == "quiet" {
		cfg.Log = "file"
	}
	ui.SetTheme(cfg.Theme)
	app.cfg = cfg

	log, err := logger.New(cfg.Log, cfg.Dir)
	if err != nil {
		return usageError{msg: err.Error()}
	}
	app.log = log

	kv, closeKV, err := openKV(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Backend, err)
	}
	app.kv, app.closeKV = kv, closeKV
	app.sess = store.NewSession(kv, store.WithLogger(log), store.WithCodeLength(cfg.CodeLength))
	app.res = resolver.New(app.sess, log)
	log.Debug("cli ready", "command", cmd.CommandPath(), "backend", cfg.Backend, "dir", cfg.Dir)
	return nil
}

func (app *App) close() {
	if app.closeKV != nil {
		if err := app.closeKV(); err != nil && app.log != nil {
			app.log.Warn("close storage", "error", err)
		}
	}
	if app.log != nil {
		app.log.Sync()
	}
}

func openKV(ctx context.Context, cfg config.Config) (store.KV, func() error, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	switch cfg.Backend {
	case config.BackendSQLite:
		s, err := sqlitestore.Open(ctx, cfg.SQLitePath())
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendMemory:
		return store.NewMemory(), nil, nil
	default:
		s, err := jsonstore.Open(cfg.ListsDir())
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}
}

// current opens the list to work on: --code when given, otherwise the last
// one used. Storage warnings are printed and do not stop the command.
func (app *App) current() error {
	var err error
	if strings.TrimSpace(app.Code) != "" {
		_, err = app.res.Connect(app.Code)
	} else {
		_, err = app.sess.Initialize("")
		if err == nil && app.sess.ID() == "" {
			return store.ErrNoList
		}
	}
	return app.warn(err)
}

// warn prints storage problems and passes every other error through.
func (app *App) warn(err error) error {
	if err != nil && errors.Is(err, store.ErrStorageUnavailable) {
		ui.Warn(err.Error())
		return nil
	}
	return err
}

func runTUI(app *App) error {
	u := &url.URL{}
	if code := strings.TrimSpace(app.Code); code != "" {
		u.RawQuery = url.Values{resolver.ParamCode: {code}}.Encode()
	}
	r, err := app.res.Resolve(u)
	if err != nil {
		return err
	}
	return tui.Run(app.sess, app.res, r, tui.Options{
		BaseURL: app.cfg.BaseURL,
		QR:      share.QR{Endpoint: app.cfg.QREndpoint, Size: app.cfg.QRSize},
		Copy:    share.Copy,
		Log:     app.log,
	})
}
