package model

import "github.com/shopspring/decimal"

// Item is a single line on the shopping list.
// Subtotal is derived on every read and never stored.
type Item struct {
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Qty     float64 `json:"qty"`
	Checked bool    `json:"checked"`
}

// Category groups items under a heading. Names are not required to be unique.
type Category struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Document is the whole shopping list. Category order is display order.
type Document struct {
	Categories []Category `json:"categories"`
}

// DefaultCategoryNames seeds every fresh list, in display order.
var DefaultCategoryNames = []string{
	"Lácteos",
	"Panadería",
	"Bebidas",
	"Fruta y Verdura",
	"Carne y Pescado",
	"Snacks",
	"Despensa",
	"Otros",
}

// NewDefaultDocument returns a list with one empty category per default name.
func NewDefaultDocument() *Document {
	cats := make([]Category, 0, len(DefaultCategoryNames))
	for _, name := range DefaultCategoryNames {
		cats = append(cats, Category{Name: name, Items: []Item{}})
	}
	return &Document{Categories: cats}
}

func (it Item) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(it.Price).Mul(decimal.NewFromFloat(it.Qty))
}

// Total sums the unchecked items of one category.
func (c Category) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		if !it.Checked {
			total = total.Add(it.Subtotal())
		}
	}
	return total
}

// GrandTotal sums subtotals of unchecked items only.
func (d *Document) GrandTotal() decimal.Decimal {
	total := decimal.Zero
	if d == nil {
		return total
	}
	for _, c := range d.Categories {
		total = total.Add(c.Total())
	}
	return total
}

// ItemCount returns the number of items across all categories.
func (d *Document) ItemCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, c := range d.Categories {
		n += len(c.Items)
	}
	return n
}

// CheckedCount returns how many items are ticked off.
func (d *Document) CheckedCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, c := range d.Categories {
		for _, it := range c.Items {
			if it.Checked {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy so a mutation can be discarded on failure.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{Categories: make([]Category, len(d.Categories))}
	for i, c := range d.Categories {
		items := make([]Item, len(c.Items))
		copy(items, c.Items)
		out.Categories[i] = Category{Name: c.Name, Items: items}
	}
	return out
}

// FormatMoney renders an amount the way the list shows it: "$5.00".
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
