package model

import (
	"fmt"
	"math"
	"strings"
)

// ShapeError reports the first structural problem found in a Document.
type ShapeError struct {
	Path   string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid list: %s: %s", e.Path, e.Reason)
}

func shapeErr(path, reason string) error {
	return &ShapeError{Path: path, Reason: reason}
}

// Validate checks the structure every deserialized Document must have.
// A nil item slice is normalised to an empty one; nothing else is rewritten.
func (d *Document) Validate() error {
	if d == nil {
		return shapeErr("$", "document is null")
	}
	if d.Categories == nil {
		return shapeErr("categories", "missing")
	}
	for i := range d.Categories {
		c := &d.Categories[i]
		path := fmt.Sprintf("categories[%d]", i)
		if strings.TrimSpace(c.Name) == "" {
			return shapeErr(path+".name", "empty")
		}
		if c.Items == nil {
			c.Items = []Item{}
		}
		for j, it := range c.Items {
			ipath := fmt.Sprintf("%s.items[%d]", path, j)
			if strings.TrimSpace(it.Name) == "" {
				return shapeErr(ipath+".name", "empty")
			}
			if math.IsNaN(it.Price) || math.IsInf(it.Price, 0) || it.Price < 0 {
				return shapeErr(ipath+".price", "must be a non-negative number")
			}
			if math.IsNaN(it.Qty) || math.IsInf(it.Qty, 0) || it.Qty <= 0 {
				return shapeErr(ipath+".qty", "must be positive")
			}
		}
	}
	return nil
}
