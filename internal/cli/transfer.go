package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/shoplist/internal/codec"
	"github.com/idilsaglam/shoplist/internal/share"
	"github.com/idilsaglam/shoplist/internal/store"
	"github.com/idilsaglam/shoplist/internal/ui"
)

// copyText is swapped out by tests.
var copyText = share.Copy

func newShareCmd(app *App) *cobra.Command {
	var fragment, qr, doCopy bool
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Print a link that carries the whole list",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.current(); err != nil {
				return err
			}
			build := share.LinkURL
			if fragment {
				build = share.FragmentURL
			}
			link, err := build(app.cfg.BaseURL, app.sess.Document())
			if err != nil {
				return err
			}
			fmt.Fprintln(ui.Stdout, link)
			if qr {
				q := share.QR{Endpoint: app.cfg.QREndpoint, Size: app.cfg.QRSize}
				fmt.Fprintln(ui.Stdout, ui.C(ui.Current().Muted, "QR: ")+q.ImageURL(link))
			}
			if doCopy {
				copyOrWarn(link, "link")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fragment, "fragment", false, "Carry the list after '#' instead of in the query")
	cmd.Flags().BoolVar(&qr, "qr", false, "Also print a QR image URL for the link")
	cmd.Flags().BoolVar(&doCopy, "copy", false, "Copy the link to the clipboard")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var doCopy bool
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the list as indented JSON",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.current(); err != nil {
				return err
			}
			text, err := codec.ExportPlain(app.sess.Document())
			if err != nil {
				return err
			}
			if out != "" {
				if err := os.WriteFile(out, []byte(text+"\n"), 0o600); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				ui.OK("exported to " + out)
			} else {
				fmt.Fprintln(ui.Stdout, text)
			}
			if doCopy {
				copyOrWarn(text, "list")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&doCopy, "copy", false, "Copy the JSON to the clipboard")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file|-]",
		Short: "Replace the open list with exported JSON (stdin when no file is given)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usagef("usage: shoplist import [file|-]")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				b   []byte
				err error
			)
			if len(args) == 0 || args[0] == "-" {
				b, err = io.ReadAll(cmd.InOrStdin())
			} else {
				b, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read: %w", err)
			}
			doc, err := codec.ImportPlain(string(b))
			if err != nil {
				return err
			}

			err = app.current()
			switch {
			case errors.Is(err, store.ErrNoList):
				if _, err := app.sess.Adopt(doc); app.warn(err) != nil {
					return err
				}
			case err != nil:
				return err
			default:
				if err := app.warn(app.sess.Replace(doc)); err != nil {
					return err
				}
			}
			ui.OK(fmt.Sprintf("imported %d categories into %s", len(doc.Categories), app.sess.ID()))
			return nil
		},
	}
}

func copyOrWarn(text, what string) {
	if err := copyText(text); err != nil {
		ui.Warn(fmt.Sprintf("could not copy the %s, copy it from above (%v)", what, err))
		return
	}
	ui.OK(what + " copied to the clipboard")
}
