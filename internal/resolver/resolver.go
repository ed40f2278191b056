// Package resolver decides which list becomes active at startup: one that
// arrives encoded in a link, one addressed by a code, or the last one used.
package resolver

import (
	"errors"
	"net/url"
	"strings"

	"github.com/idilsaglam/shoplist/internal/codec"
	"github.com/idilsaglam/shoplist/internal/identity"
	"github.com/idilsaglam/shoplist/internal/logger"
	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/store"
)

const (
	ParamList       = "list"
	ParamListLegacy = "lista"
	ParamCode       = "code"
)

type Outcome int

const (
	StartScreen Outcome = iota // nothing inbound, nothing remembered
	FromPayload                // decoded from a shared link
	FromCode                   // connected (or created) by code
	Resumed                    // last-used list on this device
)

func (o Outcome) String() string {
	switch o {
	case FromPayload:
		return "payload"
	case FromCode:
		return "code"
	case Resumed:
		return "resumed"
	default:
		return "start"
	}
}

// Resolution is what Resolve settled on.
type Resolution struct {
	Outcome Outcome
	ID      string
	Doc     *model.Document

	// DecodeErr is set when the link carried a payload that could not be
	// decoded. Resolution then continued with the lower-priority paths.
	DecodeErr error

	// Warning carries a non-fatal storage problem (store.ErrStorageUnavailable).
	Warning error

	// CleanURL is the input without query or fragment, so a reload does not
	// replay a one-time payload.
	CleanURL string
}

type Resolver struct {
	Session *store.Session
	Log     *logger.Logger
}

func New(s *store.Session, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{Session: s, Log: log}
}

// Resolve applies the startup priority: payload, then code, then the
// remembered list. u may be nil.
func (r *Resolver) Resolve(u *url.URL) (*Resolution, error) {
	res := &Resolution{}
	var q url.Values
	if u != nil {
		q = u.Query()
		res.CleanURL = StripTransient(u.String())
	}

	if payload, ok := payloadOf(u, q); ok {
		doc, err := codec.Decode(payload)
		if err == nil {
			code, err := r.Session.Adopt(doc)
			if err != nil && !errors.Is(err, store.ErrStorageUnavailable) {
				return nil, err
			}
			res.Outcome, res.ID, res.Doc, res.Warning = FromPayload, code, r.Session.Document(), err
			r.Log.Info("resolved shared list", "code", code)
			return res, nil
		}
		res.DecodeErr = err
		r.Log.Warn("shared list could not be decoded", "error", err)
	}

	if code := strings.TrimSpace(q.Get(ParamCode)); code != "" {
		doc, err := r.Connect(code)
		if err != nil && !errors.Is(err, store.ErrStorageUnavailable) {
			return nil, err
		}
		res.Outcome, res.ID, res.Doc, res.Warning = FromCode, r.Session.ID(), doc, err
		return res, nil
	}

	doc, err := r.Session.Initialize("")
	if err != nil && !errors.Is(err, store.ErrStorageUnavailable) {
		return nil, err
	}
	res.Warning = err
	if r.Session.Resumed() {
		res.Outcome, res.ID, res.Doc = Resumed, r.Session.ID(), doc
	} else {
		res.Outcome = StartScreen
	}
	return res, nil
}

// Connect is the "connect by code" path: normalise and connect-or-create.
// A blank code is a validation error, never a resume.
func (r *Resolver) Connect(code string) (*model.Document, error) {
	norm, err := identity.Normalize(code)
	if err != nil {
		return nil, &store.ValidationError{Field: "code", Reason: err.Error()}
	}
	doc, err := r.Session.Initialize(norm)
	if err == nil || errors.Is(err, store.ErrStorageUnavailable) {
		r.Log.Info("connected by code", "code", r.Session.ID())
	}
	return doc, err
}

// NewList is the "new list" path from the start screen.
func (r *Resolver) NewList() (*model.Document, error) {
	return r.Session.Create()
}

// OpenText runs Resolve on something a user pasted: a full share URL, a bare
// fragment or query, or just the encoded payload.
func (r *Resolver) OpenText(text string) (*Resolution, error) {
	text = strings.TrimSpace(text)
	if strings.Contains(text, "://") || strings.HasPrefix(text, "?") || strings.HasPrefix(text, "#") {
		u, err := url.Parse(text)
		if err != nil {
			return nil, &codec.DecodeError{Err: err}
		}
		return r.Resolve(u)
	}
	return r.Resolve(&url.URL{Fragment: text})
}

func payloadOf(u *url.URL, q url.Values) (string, bool) {
	for _, k := range []string{ParamList, ParamListLegacy} {
		if v := q.Get(k); v != "" {
			return v, true
		}
	}
	if u == nil {
		return "", false
	}
	frag := strings.TrimSpace(u.Fragment)
	if frag == "" {
		return "", false
	}
	for _, k := range []string{ParamList, ParamListLegacy} {
		if strings.HasPrefix(frag, k+"=") {
			return strings.TrimPrefix(frag, k+"="), true
		}
	}
	return frag, true
}

// StripTransient drops the query and fragment of a link, where list data
// travels, and keeps the rest.
func StripTransient(link string) string {
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		return link[:i]
	}
	return link
}
