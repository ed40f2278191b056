package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/idilsaglam/shoplist/internal/codec"
	"github.com/idilsaglam/shoplist/internal/identity"
	"github.com/idilsaglam/shoplist/internal/logger"
	"github.com/idilsaglam/shoplist/internal/model"
)

const (
	ListKeyPrefix = "shoplist_list_"
	CurrentKey    = "shoplist_current"
)

// Session owns the open list and its code. Presentation code reads the list
// through Document and changes it only through Apply (or the helpers below).
//
// Errors wrapping ErrStorageUnavailable are warnings: the change has been
// applied in memory but could not be written.
type Session struct {
	kv      KV
	log     *logger.Logger
	newCode func() (string, error)

	id      string
	doc     *model.Document
	resumed bool
	// unread is set when the stored list could not be read. Save refuses to
	// write until the list is opened again successfully.
	unread bool
}

type Option func(*Session)

func WithLogger(l *logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCodeLength sets the length of generated codes.
func WithCodeLength(n int) Option {
	return func(s *Session) {
		s.newCode = func() (string, error) { return identity.Generate(n) }
	}
}

// WithCodeGenerator replaces code generation entirely (tests).
func WithCodeGenerator(fn func() (string, error)) Option {
	return func(s *Session) { s.newCode = fn }
}

func NewSession(kv KV, opts ...Option) *Session {
	s := &Session{
		kv:      kv,
		log:     logger.Nop(),
		newCode: func() (string, error) { return identity.Generate(identity.DefaultLength) },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ID is the open list's code, or "" when the list has no identity yet.
func (s *Session) ID() string { return s.id }

// Document is the open list (shared, not a copy). Nil before Initialize.
func (s *Session) Document() *model.Document { return s.doc }

// Resumed reports whether the last Initialize("") picked up the previous list.
func (s *Session) Resumed() bool { return s.resumed }

// Initialize opens a list.
//
// With an empty id it resumes the last-used list if one is remembered;
// otherwise it returns a fresh default list with no identity (Save is a no-op
// until Create or Adopt assigns one).
//
// With an id it connects to that list, creating and saving an empty default
// list when nothing is stored under it. Unknown codes are never an error.
func (s *Session) Initialize(id string) (*model.Document, error) {
	s.resumed, s.unread = false, false
	if strings.TrimSpace(id) == "" {
		cur, ok, err := s.kv.Get(CurrentKey)
		if err != nil {
			s.log.Warn("read session marker", "error", err)
		}
		if ok {
			if code, nerr := identity.Normalize(cur); nerr == nil {
				doc, err := s.open(code)
				if doc != nil {
					s.resumed = true
				}
				return doc, err
			}
			s.log.Warn("ignoring malformed session marker", "marker", cur)
		}
		s.id, s.doc = "", model.NewDefaultDocument()
		return s.doc, nil
	}

	code, err := identity.Normalize(id)
	if err != nil {
		return nil, invalid("code", "%v", err)
	}
	return s.open(code)
}

func (s *Session) open(code string) (*model.Document, error) {
	doc, found, err := s.load(code)
	if err != nil && !errors.Is(err, ErrStorageUnavailable) {
		return nil, err
	}
	if err != nil {
		// Whatever is stored under code is unknown, so it must not be replaced
		// by the placeholder list.
		s.id, s.doc, s.unread = code, model.NewDefaultDocument(), true
		return s.doc, err
	}
	if !found {
		doc = model.NewDefaultDocument()
	}
	s.id, s.doc = code, doc
	var warn error
	if !found {
		warn = s.Save()
	}
	s.mark()
	s.log.Debug("list opened", "code", code, "created", !found)
	return s.doc, warn
}

func (s *Session) load(code string) (*model.Document, bool, error) {
	v, ok, err := s.kv.Get(ListKeyPrefix + code)
	if err != nil {
		s.log.Warn("load list", "code", code, "error", err)
		return nil, false, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if !ok {
		return nil, false, nil
	}
	doc, err := codec.Unmarshal([]byte(v))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, code, err)
	}
	return doc, true, nil
}

func (s *Session) mark() {
	if err := s.kv.Set(CurrentKey, s.id); err != nil {
		s.log.Warn("write session marker", "error", err)
	}
}

// Create starts a new empty list under a freshly generated code.
func (s *Session) Create() (*model.Document, error) {
	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	s.id, s.doc, s.resumed, s.unread = code, model.NewDefaultDocument(), false, false
	err = s.Save()
	s.mark()
	s.log.Info("list created", "code", code)
	return s.doc, err
}

// Adopt makes an inbound shared list the open list under a new local code.
func (s *Session) Adopt(doc *model.Document) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}
	code, err := s.newCode()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	s.id, s.doc, s.resumed, s.unread = code, doc.Clone(), false, false
	err = s.Save()
	s.mark()
	s.log.Info("shared list adopted", "code", code, "categories", len(doc.Categories))
	return code, err
}

// Replace swaps in an imported list, keeping the current code.
func (s *Session) Replace(doc *model.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	s.doc = doc.Clone()
	return s.Save()
}

// Save writes the open list. Without an identity it does nothing. After a
// failed read it writes nothing and reports ErrStorageUnavailable.
func (s *Session) Save() error {
	if s.id == "" || s.doc == nil {
		return nil
	}
	if s.unread {
		return fmt.Errorf("%w: list %s was not loaded, changes are kept in memory only", ErrStorageUnavailable, s.id)
	}
	b, err := codec.Marshal(s.doc)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ListKeyPrefix+s.id, string(b)); err != nil {
		s.log.Warn("save list", "code", s.id, "error", err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Apply runs cmd against a copy of the list and keeps the result only if the
// command succeeds, then saves.
func (s *Session) Apply(cmd Command) error {
	if s.doc == nil {
		return ErrNoList
	}
	next := s.doc.Clone()
	if err := cmd.apply(next); err != nil {
		s.log.Debug("command rejected", "command", fmt.Sprintf("%T", cmd), "error", err)
		return err
	}
	s.doc = next
	return s.Save()
}

func (s *Session) AddItem(cat int, name, price, qty string) error {
	return s.Apply(AddItem{Category: cat, Name: name, Price: price, Qty: qty})
}

func (s *Session) ToggleItem(cat, item int) error {
	return s.Apply(ToggleItem{Category: cat, Item: item})
}

func (s *Session) SetChecked(cat, item int, checked bool) error {
	return s.Apply(SetChecked{Category: cat, Item: item, Checked: checked})
}

func (s *Session) DeleteItem(cat, item int) error {
	return s.Apply(DeleteItem{Category: cat, Item: item})
}

func (s *Session) AddCategory(name string) error {
	return s.Apply(AddCategory{Name: name})
}

func (s *Session) RenameCategory(cat int, name string) error {
	return s.Apply(RenameCategory{Category: cat, Name: name})
}

func (s *Session) RenameItem(cat, item int, name string) error {
	return s.Apply(RenameItem{Category: cat, Item: item, Name: name})
}

func (s *Session) RestoreItem(cat, index int, it model.Item) error {
	return s.Apply(RestoreItem{Category: cat, Index: index, Item: it})
}

// Forget clears the remembered list and closes the session. Stored lists stay.
func (s *Session) Forget() error {
	s.id, s.doc, s.resumed, s.unread = "", nil, false, false
	if err := s.kv.Delete(CurrentKey); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Lists returns the codes stored on this device, if the backend can enumerate.
func (s *Session) Lists() ([]string, error) {
	l, ok := s.kv.(Lister)
	if !ok {
		return nil, errors.New("backend cannot list keys")
	}
	keys, err := l.Keys(ListKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, ListKeyPrefix))
	}
	return out, nil
}
