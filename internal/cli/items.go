package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/ui"
)

func newLsCmd(app *App) *cobra.Command {
	var hideEmpty bool
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "Show the open list with subtotals and the grand total",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.current(); err != nil {
				return err
			}
			ui.Panel(ui.Stdout, listLines(app.sess.ID(), app.sess.Document(), hideEmpty))
			return nil
		},
	}
	cmd.Flags().BoolVar(&hideEmpty, "hide-empty", false, "Skip categories without items")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var price, qty string
	cmd := &cobra.Command{
		Use:   "add <category#> <name...>",
		Short: "Add an item to a category",
		Example: `  shoplist add 1 Leche --price 1.10 --qty 2
  shoplist add 4 "Manzanas rojas" --price 0.35 --qty 6`,
		Args: minArgs(2, `shoplist add <category#> <name...> [--price P] [--qty Q]`),
		RunE: func(cmd *cobra.Command, args []string) error {
			ci, err := userIndex("category", args[0])
			if err != nil {
				return err
			}
			if err := app.current(); err != nil {
				return err
			}
			name := strings.Join(args[1:], " ")
			if err := app.warn(app.sess.AddItem(ci, name, price, qty)); err != nil {
				return err
			}
			cat := app.sess.Document().Categories[ci]
			it := cat.Items[len(cat.Items)-1]
			ui.OK(fmt.Sprintf("added %s to %s (%s)", it.Name, cat.Name, model.FormatMoney(it.Subtotal())))
			return nil
		},
	}
	cmd.Flags().StringVar(&price, "price", "0", "Unit price")
	cmd.Flags().StringVar(&qty, "qty", "1", "Quantity")
	return cmd
}

func newCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check <category#> <item#>",
		Short: "Toggle the checked state of an item",
		Args:  exactArgs(2, "shoplist check <category#> <item#>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ci, ii, err := itemRef(args)
			if err != nil {
				return err
			}
			if err := app.current(); err != nil {
				return err
			}
			if err := app.warn(app.sess.ToggleItem(ci, ii)); err != nil {
				return err
			}
			it := app.sess.Document().Categories[ci].Items[ii]
			if it.Checked {
				ui.OK("checked " + it.Name)
			} else {
				ui.OK("unchecked " + it.Name)
			}
			return nil
		},
	}
}

func newRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <category#> <item#>",
		Short: "Remove an item",
		Args:  exactArgs(2, "shoplist rm <category#> <item#>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ci, ii, err := itemRef(args)
			if err != nil {
				return err
			}
			if err := app.current(); err != nil {
				return err
			}
			if err := app.warn(app.sess.DeleteItem(ci, ii)); err != nil {
				return err
			}
			ui.OK("removed")
			return nil
		},
	}
}

func newCategoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Add or rename categories",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name...>",
		Short: "Append a category",
		Args:  minArgs(1, "shoplist category add <name...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.current(); err != nil {
				return err
			}
			if err := app.warn(app.sess.AddCategory(strings.Join(args, " "))); err != nil {
				return err
			}
			ui.OK(fmt.Sprintf("added category %d", len(app.sess.Document().Categories)))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <category#> <name...>",
		Short: "Rename a category",
		Args:  minArgs(2, "shoplist category rename <category#> <name...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ci, err := userIndex("category", args[0])
			if err != nil {
				return err
			}
			if err := app.current(); err != nil {
				return err
			}
			if err := app.warn(app.sess.RenameCategory(ci, strings.Join(args[1:], " "))); err != nil {
				return err
			}
			ui.OK("renamed")
			return nil
		},
	})
	return cmd
}

// userIndex turns a 1-based number from the command line into an index.
func userIndex(what, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, usagef("%s: not a number: %s", what, s)
	}
	return n - 1, nil
}

func itemRef(args []string) (int, int, error) {
	ci, err := userIndex("category", args[0])
	if err != nil {
		return 0, 0, err
	}
	ii, err := userIndex("item", args[1])
	if err != nil {
		return 0, 0, err
	}
	return ci, ii, nil
}

// -------------- rendering helpers --------------

func listLines(code string, doc *model.Document, hideEmpty bool) []string {
	t := ui.Current()
	done, total := doc.CheckedCount(), doc.ItemCount()
	header := fmt.Sprintf("%s %s  %s %d  %s %d  %s %s",
		ui.C(t.Title, "Shopping list"), ui.C(t.Accent, code),
		ui.C(t.Success, "✔"), done,
		ui.C(t.Pending, "•"), total-done,
		ui.C(t.Accent, "Total"), ui.C(t.Money, model.FormatMoney(doc.GrandTotal())),
	)

	var body []string
	for ci, c := range doc.Categories {
		if hideEmpty && len(c.Items) == 0 {
			continue
		}
		body = append(body, "")
		body = append(body, ui.Columns(
			fmt.Sprintf("%s %s %s", ui.C(dimIndex, fmt.Sprintf("%d.", ci+1)), t.SymCategory, ui.C(t.Accent, c.Name)),
			ui.C(t.Money, model.FormatMoney(c.Total())), 44))
		body = append(body, itemLines(c.Items)...)
	}
	if len(body) == 0 {
		body = append(body, "", ui.C(t.Muted, "no items"))
	}

	lines := []string{header, ui.C(t.Muted, ui.ProgressBar(done, total, 28))}
	lines = append(lines, body...)
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Muted, "Tip: add with `shoplist add 1 Leche --price 1.10 --qty 2`"))
	return lines
}

const dimIndex = "\033[2m"

func itemLines(items []model.Item) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{ui.C(t.Muted, "   (empty)")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		box, color := t.BoxUnchecked, t.Muted
		if it.Checked {
			box, color = t.BoxChecked, t.Success
		}
		name := it.Name
		if r := []rune(name); len(r) > 40 {
			name = string(r[:37]) + "..."
		}
		left := fmt.Sprintf("   %s %s %s  %s", ui.C(dimIndex, fmt.Sprintf("%2d.", i+1)), ui.C(color, box), name,
			ui.C(t.Muted, fmt.Sprintf("%s × %s", formatQty(it.Qty), model.FormatMoney(decimal.NewFromFloat(it.Price)))))
		out = append(out, ui.Columns(left, ui.C(t.Money, model.FormatMoney(it.Subtotal())), 44))
	}
	return out
}

func formatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
