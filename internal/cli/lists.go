package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/shoplist/internal/share"
	"github.com/idilsaglam/shoplist/internal/store"
	"github.com/idilsaglam/shoplist/internal/ui"
)

func newNewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a new list with the default categories",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.res.NewList(); app.warn(err) != nil {
				return err
			}
			ui.OK("created list " + app.sess.ID())
			ui.Hint("Reopen it later with `shoplist connect " + app.sess.ID() + "`")
			return nil
		},
	}
}

func newConnectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "connect <code>",
		Short: "Open the list stored under a code, creating it if it does not exist",
		Args:  exactArgs(1, "shoplist connect <code>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.res.Connect(args[0]); app.warn(err) != nil {
				return err
			}
			ui.OK("connected to " + app.sess.ID())
			return nil
		},
	}
}

func newOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open <link-or-payload>",
		Short: "Open a shared list from a link",
		Args:  exactArgs(1, "shoplist open <link-or-payload>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.res.OpenText(args[0])
			if err != nil {
				return err
			}
			if r.DecodeErr != nil {
				return r.DecodeErr
			}
			if err := app.warn(r.Warning); err != nil {
				return err
			}
			if r.ID == "" {
				return usagef("nothing to open in %q", args[0])
			}
			ui.OK(fmt.Sprintf("opened %s list as %s", r.Outcome, r.ID))
			return nil
		},
	}
}

func newListsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "List the codes stored on this device",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, err := app.sess.Lists()
			if err != nil {
				return err
			}
			cur, _, err := app.kv.Get(store.CurrentKey)
			if err != nil {
				app.log.Warn("read session marker", "error", err)
			}
			if len(codes) == 0 {
				fmt.Fprintln(ui.Stdout, ui.C(ui.Current().Muted, "no lists yet"))
				return nil
			}
			for _, c := range codes {
				mark := "  "
				if c == cur {
					mark = ui.C(ui.Current().Accent, "* ")
				}
				fmt.Fprintln(ui.Stdout, mark+c)
			}
			return nil
		},
	}
}

func newCloseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Forget the last-used list (stored lists are kept)",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.sess.Forget(); err != nil {
				return err
			}
			ui.OK("closed")
			return nil
		},
	}
}

func newCodeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "code",
		Short: "Print the code of the open list",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.current(); err != nil {
				return err
			}
			fmt.Fprintln(ui.Stdout, app.sess.ID())
			fmt.Fprintln(ui.Stdout, ui.C(ui.Current().Muted, share.CodeURL(app.cfg.BaseURL, app.sess.ID())))
			return nil
		},
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("%s takes no arguments, got %q", cmd.CommandPath(), strings.Join(args, " "))
	}
	return nil
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: %s", usage)
		}
		return nil
	}
}

func minArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usagef("usage: %s", usage)
		}
		return nil
	}
}
