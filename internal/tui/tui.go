// Package tui is the interactive editor: a start screen for picking a list and
// a grouped, scrollable list with inline forms for every list operation.
package tui

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/idilsaglam/shoplist/internal/codec"
	"github.com/idilsaglam/shoplist/internal/logger"
	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/resolver"
	"github.com/idilsaglam/shoplist/internal/share"
	"github.com/idilsaglam/shoplist/internal/store"
)

type Options struct {
	BaseURL string
	QR      share.QR
	// Copy puts text on the clipboard. Nil, or an error, falls back to
	// showing the text on screen.
	Copy    func(string) error
	Log     *logger.Logger
}

type screen int

const (
	screenStart screen = iota
	screenList
)

type mode int

const (
	modeBrowse mode = iota
	modeAddItem
	modeAddCategory
	modeRename
	modeConnect
	modeOpen
	modeShow
)

// row is one line of the list: a category header (item == -1) or an item.
type row struct {
	cat, item int
	name      string
	it        model.Item
	count     int
	total     string
}

func (r row) header() bool        { return r.item < 0 }
func (r row) FilterValue() string { return r.name }

type deleted struct {
	cat, index int
	it         model.Item
}

type modelTUI struct {
	sess *store.Session
	res  *resolver.Resolver
	opts Options
	log  *logger.Logger

	screen screen
	mode   mode
	list   list.Model

	// Inline forms. Add item uses all three inputs, the rest use inputs[0].
	inputs []textinput.Model
	focus  int
	target row

	status string
	errMsg string
	shown  []string

	// Undo support (single-level)
	undo *deleted

	width, height int
}

// Custom delegate to control how rows render (single line)
type rowDelegate struct{}

func (d rowDelegate) Height() int                               { return 1 }
func (d rowDelegate) Spacing() int                              { return 0 }
func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(row)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	if r.header() {
		fmt.Fprint(w, prefix+categoryStyle.Render(r.name)+" "+
			mutedStyle.Render(fmt.Sprintf("(%d)", r.count))+"  "+moneyStyle.Render(r.total))
		return
	}
	box := mutedStyle.Render(boxUnchecked)
	name := r.name
	if r.it.Checked {
		box = successStyle.Render(boxChecked)
		name = doneStyle.Render(name)
	}
	detail := mutedStyle.Render(fmt.Sprintf("%s × %s", formatQty(r.it.Qty), model.FormatMoney(decimal.NewFromFloat(r.it.Price))))
	fmt.Fprint(w, prefix+"  "+box+" "+name+"  "+detail+"  "+moneyStyle.Render(model.FormatMoney(r.it.Subtotal())))
}

// Run starts the program on whatever the resolver settled on and blocks until
// the user quits. Every change is saved as it happens.
func Run(sess *store.Session, res *resolver.Resolver, r *resolver.Resolution, opts Options) error {
	applyColorProfile()
	p := tea.NewProgram(newModel(sess, res, r, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(sess *store.Session, res *resolver.Resolver, r *resolver.Resolution, opts Options) modelTUI {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	l := list.New(nil, rowDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "

	binds := []key.Binding{
		key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "check")),
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add item")),
		key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add category")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "share")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "close")),
	}
	l.AdditionalShortHelpKeys = func() []key.Binding { return binds[:4] }
	l.AdditionalFullHelpKeys = func() []key.Binding { return binds }

	inputs := make([]textinput.Model, 3)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Prompt = "> "
		inputs[i].CharLimit = 200
	}
	inputs[1].CharLimit, inputs[2].CharLimit = 16, 8

	m := modelTUI{
		sess:   sess,
		res:    res,
		opts:   opts,
		log:    opts.Log,
		list:   l,
		inputs: inputs,
		width:  80,
		height: 24,
	}
	m.resize()

	if r != nil {
		if r.Outcome != resolver.StartScreen {
			m.screen = screenList
		}
		if r.Outcome == resolver.FromPayload {
			m.status = "shared list saved as " + r.ID
		}
		if r.DecodeErr != nil {
			m.errMsg = "The shared list could not be opened: " + r.DecodeErr.Error()
		}
		if r.Warning != nil {
			m.status = "not saved: " + r.Warning.Error()
		}
	}
	m.rebuild()
	return m
}

// rebuild refreshes rows and header from the session, keeping the cursor.
func (m *modelTUI) rebuild() {
	doc := m.sess.Document()
	if doc == nil {
		m.list.SetItems(nil)
		return
	}
	rows := make([]list.Item, 0, doc.ItemCount()+len(doc.Categories))
	for ci, c := range doc.Categories {
		rows = append(rows, row{cat: ci, item: -1, name: c.Name, count: len(c.Items), total: model.FormatMoney(c.Total())})
		for ii, it := range c.Items {
			rows = append(rows, row{cat: ci, item: ii, name: it.Name, it: it})
		}
	}
	idx := m.list.Index()
	if cmd := m.list.SetItems(rows); cmd != nil {
		// An applied filter is recomputed now so the selection stays valid.
		m.list, _ = m.list.Update(cmd())
	}
	if n := len(m.list.VisibleItems()); idx >= n {
		idx = n - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}

	code := m.sess.ID()
	if code == "" {
		code = "unsaved"
	}
	m.list.Title = fmt.Sprintf("%s %s   %s %d  %s %d  %s %s",
		titleStyle.Render("Shopping list"), accentStyle.Render(code),
		successStyle.Render("✔"), doc.CheckedCount(),
		pendingStyle.Render("•"), doc.ItemCount()-doc.CheckedCount(),
		accentStyle.Render("Total"), moneyStyle.Render(model.FormatMoney(doc.GrandTotal())),
	)
}

func (m *modelTUI) resize() {
	h := m.height - 6
	if m.mode != modeBrowse {
		h -= 4
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

// fail shows err and reports whether the change was rejected. Storage
// problems are only warnings: the list in memory already has the change.
func (m *modelTUI) fail(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, store.ErrStorageUnavailable) {
		m.status = "not saved: " + err.Error()
		m.log.Warn("change kept in memory only", "error", err)
		return false
	}
	m.errMsg = err.Error()
	return true
}

func (m *modelTUI) selected() (row, bool) {
	r, ok := m.list.SelectedItem().(row)
	return r, ok
}

func (m *modelTUI) openForm(md mode, placeholders ...string) tea.Cmd {
	m.mode, m.focus, m.errMsg = md, 0, ""
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
		if i < len(placeholders) {
			m.inputs[i].Placeholder = placeholders[i]
		}
	}
	m.resize()
	return m.inputs[0].Focus()
}

func (m *modelTUI) closeForm() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.mode = modeBrowse
	m.shown = nil
	m.resize()
}

func (m *modelTUI) show(lines ...string) {
	m.mode = modeShow
	m.shown = lines
	m.resize()
}

// Update and View implement Bubble Tea's Model on modelTUI
func (m modelTUI) Init() tea.Cmd { return nil }

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.resize()
		return m, nil
	}
	km, isKey := msg.(tea.KeyMsg)
	if isKey && km.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeAddItem, modeAddCategory, modeRename, modeConnect, modeOpen:
		return m.updateForm(msg)
	case modeShow:
		if isKey {
			m.closeForm()
		}
		return m, nil
	}

	if m.screen == screenStart {
		if isKey {
			return m.updateStart(km)
		}
		return m, nil
	}

	if isKey && m.acceptsEdits(km) {
		if next, cmd, handled := m.updateList(km); handled {
			return next, cmd
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// acceptsEdits reports whether km goes to the editor keys rather than the
// list. While a filter is applied esc clears it instead of quitting.
func (m modelTUI) acceptsEdits(km tea.KeyMsg) bool {
	switch m.list.FilterState() {
	case list.Unfiltered:
		return true
	case list.FilterApplied:
		return km.String() != "esc"
	}
	return false
}

func (m modelTUI) updateStart(km tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""
	switch km.String() {
	case "q", "esc":
		return m, tea.Quit
	case "n":
		if _, err := m.res.NewList(); m.fail(err) {
			return m, nil
		}
		m.screen = screenList
		m.rebuild()
		m.list.Select(0)
	case "c":
		cmd := m.openForm(modeConnect, "List code")
		return m, cmd
	case "o":
		cmd := m.openForm(modeOpen, "Paste a shared link")
		return m, cmd
	}
	return m, nil
}

func (m modelTUI) updateList(km tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	m.errMsg = ""
	r, hasRow := m.selected()
	switch km.String() {
	case "q", "esc":
		return m, tea.Quit, true
	case " ":
		if hasRow && !r.header() {
			m.fail(m.sess.ToggleItem(r.cat, r.item))
			m.rebuild()
		}
		return m, nil, true
	case "a":
		if !hasRow {
			m.errMsg = "Add a category first (A)"
			return m, nil, true
		}
		m.target = r
		cmd := m.openForm(modeAddItem, "Item name", "Price", "Qty")
		return m, cmd, true
	case "A":
		cmd := m.openForm(modeAddCategory, "Category name")
		return m, cmd, true
	case "r":
		if !hasRow {
			return m, nil, true
		}
		m.target = r
		cmd := m.openForm(modeRename, "New name")
		m.inputs[0].SetValue(r.name)
		m.inputs[0].CursorEnd()
		return m, cmd, true
	case "d":
		if hasRow && !r.header() {
			if !m.fail(m.sess.DeleteItem(r.cat, r.item)) {
				m.undo = &deleted{cat: r.cat, index: r.item, it: r.it}
				m.status = "deleted " + r.name + " (u to undo)"
			}
			m.rebuild()
		}
		return m, nil, true
	case "u":
		if m.undo != nil {
			u := m.undo
			if !m.fail(m.sess.RestoreItem(u.cat, u.index, u.it)) {
				m.undo = nil
				m.status = "restored " + u.it.Name
			}
			m.rebuild()
		}
		return m, nil, true
	case "s":
		m.share()
		return m, nil, true
	case "e":
		m.export()
		return m, nil, true
	case "c":
		cmd := m.openForm(modeConnect, "List code")
		return m, cmd, true
	case "o":
		cmd := m.openForm(modeOpen, "Paste a shared link")
		return m, cmd, true
	case "w":
		m.fail(m.sess.Forget())
		m.undo = nil
		m.screen = screenStart
		m.status = ""
		m.rebuild()
		return m, nil, true
	}
	return m, nil, false
}

func (m *modelTUI) share() {
	link, err := share.LinkURL(m.opts.BaseURL, m.sess.Document())
	if m.fail(err) {
		return
	}
	if m.opts.Copy != nil {
		err := m.opts.Copy(link)
		if err == nil {
			m.status = "share link copied to the clipboard"
			return
		}
		m.log.Debug("clipboard copy failed", "error", err)
	}
	lines := []string{
		titleStyle.Render("Share link") + " (copy it by hand)",
		link,
		"",
		titleStyle.Render("QR code"),
		m.opts.QR.ImageURL(link),
	}
	if code := m.sess.ID(); code != "" {
		lines = append(lines, "", titleStyle.Render("Code")+" "+accentStyle.Render(code)+
			mutedStyle.Render("  (only reopens this list on this device)"))
	}
	m.show(lines...)
}

func (m *modelTUI) export() {
	text, err := codec.ExportPlain(m.sess.Document())
	if m.fail(err) {
		return
	}
	if m.opts.Copy != nil && m.opts.Copy(text) == nil {
		m.status = "list JSON copied to the clipboard"
		return
	}
	m.show(append([]string{titleStyle.Render("Export")}, strings.Split(text, "\n")...)...)
}

func (m modelTUI) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := 1
	if m.mode == modeAddItem {
		n = 3
	}
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			m.errMsg = ""
			m.closeForm()
			return m, nil
		case "tab", "down":
			cmd := m.focusInput((m.focus+1)%n)
			return m, cmd
		case "shift+tab", "up":
			cmd := m.focusInput((m.focus+n-1)%n)
			return m, cmd
		case "enter":
			m.submit()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *modelTUI) focusInput(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m *modelTUI) submit() {
	m.errMsg = ""
	v := strings.TrimSpace(m.inputs[0].Value())
	var err error
	switch m.mode {
	case modeAddItem:
		err = m.sess.AddItem(m.target.cat, v, m.inputs[1].Value(), m.inputs[2].Value())
	case modeAddCategory:
		err = m.sess.AddCategory(v)
	case modeRename:
		if m.target.header() {
			err = m.sess.RenameCategory(m.target.cat, v)
		} else {
			err = m.sess.RenameItem(m.target.cat, m.target.item, v)
		}
	case modeConnect:
		_, err = m.res.Connect(v)
		if err == nil || errors.Is(err, store.ErrStorageUnavailable) {
			m.screen, m.undo = screenList, nil
		}
	case modeOpen:
		var r *resolver.Resolution
		r, err = m.res.OpenText(v)
		if err == nil {
			switch {
			case r.DecodeErr != nil:
				err = r.DecodeErr
			case r.Outcome == resolver.StartScreen:
				err = errors.New("nothing to open in that text")
			default:
				m.screen, m.undo = screenList, nil
				m.status = "shared list saved as " + r.ID
				err = r.Warning
			}
		}
	}
	if m.fail(err) {
		m.rebuild()
		return
	}
	m.closeForm()
	m.rebuild()
}

func (m modelTUI) View() string {
	var b strings.Builder
	if m.screen == screenStart {
		b.WriteString(titleStyle.Render("Shopping list") + "\n\n")
		b.WriteString(accentStyle.Render("n") + "  new list\n")
		b.WriteString(accentStyle.Render("c") + "  connect with a code\n")
		b.WriteString(accentStyle.Render("o") + "  open a shared link\n")
		b.WriteString(accentStyle.Render("q") + "  quit")
	} else {
		b.WriteString(m.list.View())
	}

	switch m.mode {
	case modeAddItem, modeAddCategory, modeRename, modeConnect, modeOpen:
		b.WriteString("\n" + panelString(m.formView()))
	case modeShow:
		b.WriteString("\n" + panelString(strings.Join(m.shown, "\n")+"\n"+helpStyle.Render("any key to close")))
	}
	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render("✖ "+m.errMsg))
	}
	if m.status != "" {
		b.WriteString("\n" + mutedStyle.Render(m.status))
	}
	return panelString(lipgloss.NewStyle().MaxWidth(m.width - 4).Render(b.String()))
}

func (m modelTUI) formView() string {
	switch m.mode {
	case modeAddItem:
		doc := m.sess.Document()
		title := "Add item"
		if doc != nil && m.target.cat < len(doc.Categories) {
			title += " to " + categoryStyle.Render(doc.Categories[m.target.cat].Name)
		}
		return title + "\n" + m.inputs[0].View() + "\n" + m.inputs[1].View() + "\n" + m.inputs[2].View()
	case modeAddCategory:
		return "Add category\n" + m.inputs[0].View()
	case modeRename:
		return "Rename\n" + m.inputs[0].View()
	case modeConnect:
		return "Connect with a code\n" + m.inputs[0].View()
	default:
		return "Open a shared link\n" + m.inputs[0].View()
	}
}

func formatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
