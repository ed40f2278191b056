package store

import (
	"strings"

	"github.com/idilsaglam/shoplist/internal/model"
)

// Command is one of the closed set of list mutations. Commands run against a
// scratch copy of the list; a returned error means nothing was applied.
type Command interface {
	apply(d *model.Document) error
}

// AddItem appends an item to a category. Price and Qty are raw user input and
// are coerced with ParsePrice and ParseQty.
type AddItem struct {
	Category int
	Name     string
	Price    string
	Qty      string
}

type ToggleItem struct {
	Category int
	Item     int
}

type SetChecked struct {
	Category int
	Item     int
	Checked  bool
}

type DeleteItem struct {
	Category int
	Item     int
}

type AddCategory struct {
	Name string
}

type RenameCategory struct {
	Category int
	Name     string
}

type RenameItem struct {
	Category int
	Item     int
	Name     string
}

// RestoreItem puts a deleted item back at its old position (undo).
type RestoreItem struct {
	Category int
	Index    int
	Item     model.Item
}

func (c AddItem) apply(d *model.Document) error {
	cat, err := category(d, c.Category)
	if err != nil {
		return err
	}
	name, err := requireName("name", c.Name)
	if err != nil {
		return err
	}
	cat.Items = append(cat.Items, model.Item{
		Name:  name,
		Price: ParsePrice(c.Price),
		Qty:   float64(ParseQty(c.Qty)),
	})
	return nil
}

func (c ToggleItem) apply(d *model.Document) error {
	it, err := item(d, c.Category, c.Item)
	if err != nil {
		return err
	}
	it.Checked = !it.Checked
	return nil
}

func (c SetChecked) apply(d *model.Document) error {
	it, err := item(d, c.Category, c.Item)
	if err != nil {
		return err
	}
	it.Checked = c.Checked
	return nil
}

func (c DeleteItem) apply(d *model.Document) error {
	cat, err := category(d, c.Category)
	if err != nil {
		return err
	}
	if c.Item < 0 || c.Item >= len(cat.Items) {
		return invalid("item", "index out of range: have %d, got %d", len(cat.Items), c.Item)
	}
	cat.Items = append(cat.Items[:c.Item], cat.Items[c.Item+1:]...)
	return nil
}

func (c AddCategory) apply(d *model.Document) error {
	name, err := requireName("category name", c.Name)
	if err != nil {
		return err
	}
	d.Categories = append(d.Categories, model.Category{Name: name, Items: []model.Item{}})
	return nil
}

func (c RenameCategory) apply(d *model.Document) error {
	cat, err := category(d, c.Category)
	if err != nil {
		return err
	}
	name, err := requireName("category name", c.Name)
	if err != nil {
		return err
	}
	cat.Name = name
	return nil
}

func (c RenameItem) apply(d *model.Document) error {
	it, err := item(d, c.Category, c.Item)
	if err != nil {
		return err
	}
	name, err := requireName("name", c.Name)
	if err != nil {
		return err
	}
	it.Name = name
	return nil
}

func (c RestoreItem) apply(d *model.Document) error {
	cat, err := category(d, c.Category)
	if err != nil {
		return err
	}
	name, err := requireName("name", c.Item.Name)
	if err != nil {
		return err
	}
	it := c.Item
	it.Name = name
	idx := c.Index
	if idx < 0 {
		idx = 0
	}
	if idx > len(cat.Items) {
		idx = len(cat.Items)
	}
	cat.Items = append(cat.Items, model.Item{})
	copy(cat.Items[idx+1:], cat.Items[idx:])
	cat.Items[idx] = it
	return nil
}

func requireName(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid(field, "required")
	}
	return s, nil
}

func category(d *model.Document, i int) (*model.Category, error) {
	if i < 0 || i >= len(d.Categories) {
		return nil, invalid("category", "index out of range: have %d, got %d", len(d.Categories), i)
	}
	return &d.Categories[i], nil
}

func item(d *model.Document, ci, ii int) (*model.Item, error) {
	cat, err := category(d, ci)
	if err != nil {
		return nil, err
	}
	if ii < 0 || ii >= len(cat.Items) {
		return nil, invalid("item", "index out of range: have %d, got %d", len(cat.Items), ii)
	}
	return &cat.Items[ii], nil
}
