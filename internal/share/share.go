// Package share builds the links, QR image URLs and clipboard copies used to
// move a list to another device.
package share

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/idilsaglam/shoplist/internal/codec"
	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/resolver"
)

const (
	DefaultQREndpoint = "https://api.qrserver.com/v1/create-qr-code/"
	DefaultQRSize     = 250
)

var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// LinkURL puts the encoded list in the query string. The value is escaped:
// base64 uses '+', which a query decoder would otherwise read as a space.
func LinkURL(base string, doc *model.Document) (string, error) {
	enc, err := codec.Encode(doc)
	if err != nil {
		return "", err
	}
	return withParam(base, resolver.ParamList, enc), nil
}

// FragmentURL puts the encoded list after '#', which browsers never send to a server.
func FragmentURL(base string, doc *model.Document) (string, error) {
	enc, err := codec.Encode(doc)
	if err != nil {
		return "", err
	}
	return resolver.StripTransient(base) + "#" + enc, nil
}

// CodeURL links to a list by code. It carries no data: the other device only
// sees items if its own storage already has that code.
func CodeURL(base, code string) string {
	return withParam(base, resolver.ParamCode, code)
}

// QR describes an image endpoint that renders arbitrary text as a QR code.
type QR struct {
	Endpoint string
	Size     int
}

// ImageURL returns the image URL for data (normally a share link).
func (q QR) ImageURL(data string) string {
	endpoint := q.Endpoint
	if endpoint == "" {
		endpoint = DefaultQREndpoint
	}
	size := q.Size
	if size <= 0 {
		size = DefaultQRSize
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%ssize=%dx%d&data=%s", endpoint, sep, size, size, url.QueryEscape(data))
}

// Copy writes text to the system clipboard. On failure callers should show
// the text so it can be copied by hand.
func Copy(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return nil
}

func withParam(base, key, value string) string {
	return resolver.StripTransient(base) + "?" + key + "=" + url.QueryEscape(value)
}
