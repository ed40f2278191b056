// Package codec converts shopping lists to and from their interchange forms:
// compact JSON for storage, base64 text for links and QR codes, and indented
// JSON for manual export.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/idilsaglam/shoplist/internal/model"
)

var (
	ErrMalformedEncoding = errors.New("malformed base64")
	ErrMalformedJSON     = errors.New("malformed JSON")
	ErrMissingCategories = errors.New(`missing "categories" field`)
)

// DecodeError is returned when a transport string cannot be turned back into a list.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode shared list: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// ImportError is returned when pasted or loaded plain text is not a valid list.
type ImportError struct {
	Err error
}

func (e *ImportError) Error() string { return "import list: " + e.Err.Error() }
func (e *ImportError) Unwrap() error { return e.Err }

// Marshal returns the canonical compact form used for storage.
func Marshal(doc *model.Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("marshal: nil document")
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

// Unmarshal parses and validates the canonical form.
func Unmarshal(b []byte) (*model.Document, error) {
	var doc model.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if doc.Categories == nil {
		return nil, ErrMissingCategories
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode produces the URL/QR-safe form: base64 of the UTF-8 JSON bytes.
// The standard alphabet includes '+', so callers placing it in a query
// parameter must escape it.
func Encode(doc *model.Document) (string, error) {
	b, err := Marshal(doc)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Decode reverses Encode. It never mutates anything: the result is either a
// fresh Document or a *DecodeError.
func Decode(s string) (*model.Document, error) {
	raw, err := decodeB64(s)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	doc, err := Unmarshal(raw)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return doc, nil
}

// decodeB64 accepts padded or unpadded, standard or URL-safe base64. Spaces are
// read as '+', which is what a form decoder makes of an unescaped plus sign.
func decodeB64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedEncoding)
	}
	s = strings.ReplaceAll(s, " ", "+")

	encs := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	var first error
	for _, enc := range encs {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		if first == nil {
			first = err
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, first)
}

// ExportPlain returns indented JSON for copy/paste transfer.
func ExportPlain(doc *model.Document) (string, error) {
	if doc == nil {
		return "", errors.New("export: nil document")
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("json marshal: %w", err)
	}
	return string(b), nil
}

// ImportPlain parses exported text, rejecting anything without the list shape.
func ImportPlain(text string) (*model.Document, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ImportError{Err: fmt.Errorf("%w: empty input", ErrMalformedJSON)}
	}
	doc, err := Unmarshal([]byte(text))
	if err != nil {
		return nil, &ImportError{Err: err}
	}
	return doc, nil
}
