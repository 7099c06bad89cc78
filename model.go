package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kwsweep/internal/highlighter"
	"kwsweep/internal/history"
	"kwsweep/internal/replace"
	"kwsweep/internal/search"
	"kwsweep/internal/textbuf"
	"kwsweep/internal/triage"
)

type focusArea uint8

const (
	focusSearch focusArea = iota
	focusReplace
	focusResults
)

type overlayKind uint8

const (
	overlayNone overlayKind = iota
	overlayFilter
	overlayParagraph
	overlayHistory
	overlayQuick
	overlayConfirmAll
)

// eventBox collects triage events from any goroutine until the next tick.
type eventBox struct {
	mu     sync.Mutex
	events []triage.Event
}

func (b *eventBox) push(ev triage.Event) {
	b.mu.Lock()
	b.events = append(b.events, ev)
	b.mu.Unlock()
}

func (b *eventBox) drain() []triage.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.events
	b.events = nil
	return out
}

type searchResult struct {
	sess *triage.Session
	err  error
}

type model struct {
	cfg  config
	log  *slog.Logger
	path string
	lang string

	buf         *textbuf.Buffer
	engine      *replace.Engine
	coord       search.Coordinator
	ignore      *triage.IgnoreSet
	quick       *history.QuickFields
	highlighter *highlighter.Highlighter

	width  int
	height int

	searchInput  textinput.Model
	replaceInput textinput.Model
	filterInput  textinput.Model
	focus        focusArea
	overlay      overlayKind

	running *search.Session
	cancel  context.CancelFunc
	box     *eventBox
	done    <-chan searchResult
	workers int
	percent int
	found   int

	sess   *triage.Session
	stats  triage.Stats
	rows   []*triage.Group
	cursor int
	offset int

	filterCount   int
	plan          replace.Plan
	paragraph     textbuf.Paragraph
	historyCursor int
	quickCursor   int
	closeAt       time.Time
	quitArmed     bool

	watch       <-chan []fileEvent
	diskChanged bool

	status string
	errMsg string
}

type tickMsg struct{}

type editorDoneMsg struct {
	err error
}

type startSearchMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

func newInput(prompt string, limit int) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = limit
	input.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Accent))
	return input
}

func newModel(cfg config, log *slog.Logger, buf *textbuf.Buffer, hl *highlighter.Highlighter) model {
	hist := history.NewMapping(cfg.HistorySize)

	searchInput := newInput("search> ", 256)
	searchInput.Focus()
	replaceInput := newInput("replace> ", 256)
	filterInput := newInput("filter> ", 128)

	firstLine, _, _ := strings.Cut(buf.Content(), "\n")
	return model{
		cfg:          cfg,
		log:          log,
		path:         buf.Path(),
		lang:         highlighter.DetectLanguage(buf.Path(), firstLine),
		buf:          buf,
		engine:       replace.NewEngine(buf, hist, log),
		coord:        cfg.coordinator(log),
		ignore:       triage.NewIgnoreSet(),
		quick:        &history.QuickFields{},
		highlighter:  hl,
		searchInput:  searchInput,
		replaceInput: replaceInput,
		filterInput:  filterInput,
	}
}

func (m model) Init() tea.Cmd {
	if m.searchInput.Value() != "" {
		return tea.Batch(tickCmd(), func() tea.Msg { return startSearchMsg{} })
	}
	return tickCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		inputW := max(16, m.width/2-12)
		m.searchInput.Width = inputW
		m.replaceInput.Width = inputW
		m.filterInput.Width = max(16, m.width-24)
		m.ensureCursor()

	case tickMsg:
		m.drainSearch()
		m.drainEvents()
		m.drainWatch()

		if !m.closeAt.IsZero() && time.Now().After(m.closeAt) {
			m.closeResults()
		}

		m.ensureCursor()
		m.queueVisibleHighlights()
		return m, tickCmd()

	case startSearchMsg:
		m.startSearch()
		return m, nil

	case editorDoneMsg:
		if msg.err != nil {
			m.status = "editor failed: " + msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.abortSearch()
			return m, tea.Quit
		}
		if msg.String() != "esc" {
			m.quitArmed = false
		}
		if m.overlay != overlayNone {
			return m.updateOverlay(msg)
		}
		switch msg.String() {
		case "ctrl+z":
			m.undo()
			return m, nil
		case "ctrl+r":
			m.redo()
			return m, nil
		case "ctrl+s":
			m.save()
			return m, nil
		}
		if m.focus == focusResults {
			return m.updateResults(msg)
		}
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m model) updateInputs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.running != nil {
			m.abortSearch()
			return m, nil
		}
		if m.buf.Dirty() && !m.quitArmed {
			m.quitArmed = true
			m.status = "unsaved changes: ctrl+s to save, esc again to quit"
			return m, nil
		}
		return m, tea.Quit
	case "tab":
		m.cycleFocus()
		return m, nil
	case "enter":
		m.startSearch()
		return m, nil
	case "down":
		if len(m.rows) > 0 {
			m.setFocus(focusResults)
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusReplace {
		m.replaceInput, cmd = m.replaceInput.Update(msg)
	} else {
		m.searchInput, cmd = m.searchInput.Update(msg)
	}
	return m, cmd
}

func (m model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.running != nil {
			m.abortSearch()
		}
		m.setFocus(focusSearch)
	case "tab", "/":
		m.setFocus(focusSearch)
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup", "ctrl+u":
		m.moveCursor(-m.rowsPerPage())
	case "pgdown", "ctrl+d":
		m.moveCursor(m.rowsPerPage())
	case "home":
		m.cursor = 0
		m.ensureCursor()
	case "end":
		m.cursor = len(m.rows) - 1
		m.ensureCursor()
	case "enter":
		m.replaceSelected()
	case "x":
		m.ignoreSelected()
	case "ctrl+f":
		if m.sess == nil {
			return m, nil
		}
		m.filterInput.SetValue("")
		m.filterInput.Focus()
		m.filterCount = 0
		m.overlay = overlayFilter
	case "p":
		g, ok := m.selectedGroup()
		if !ok {
			return m, nil
		}
		m.paragraph = m.buf.Paragraphs(g.First().Position)
		m.overlay = overlayParagraph
	case "h":
		m.historyCursor = 0
		m.overlay = overlayHistory
	case "q":
		m.quickCursor = 0
		m.overlay = overlayQuick
	case "ctrl+a":
		m.prepareReplaceAll()
	case "y":
		g, ok := m.selectedGroup()
		if !ok {
			return m, nil
		}
		occ := g.First()
		loc := fmt.Sprintf("%s:%d:%d", m.path, occ.Line, occ.Column)
		if err := copyToClipboard(loc); err != nil {
			m.status = "copy failed: " + err.Error()
		} else {
			m.status = "copied " + loc
		}
	case "o":
		g, ok := m.selectedGroup()
		if !ok {
			return m, nil
		}
		occ := g.First()
		cmd, err := openLocation(m.path, occ.Line, occ.Column, m.cfg.EditorCmd)
		if err != nil {
			m.status = "open failed: " + err.Error()
			return m, nil
		}
		return m, cmd
	}
	return m, nil
}

func (m model) updateOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.overlay {
	case overlayFilter:
		switch key {
		case "esc":
			m.closeOverlay()
		case "enter":
			substr := strings.TrimSpace(m.filterInput.Value())
			m.closeOverlay()
			if m.sess != nil && m.sess.SecondaryFilter(substr) == 0 {
				m.status = fmt.Sprintf("no pending group matches %q", substr)
			}
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			if m.sess != nil {
				m.filterCount = m.sess.PreviewFilter(strings.TrimSpace(m.filterInput.Value()))
			}
			return m, cmd
		}

	case overlayParagraph:
		if key == "esc" || key == "p" || key == "enter" {
			m.closeOverlay()
		}

	case overlayHistory:
		records := m.engine.History().Records()
		switch key {
		case "esc", "h":
			m.closeOverlay()
		case "up", "k":
			m.historyCursor = clamp(m.historyCursor-1, 0, max(0, len(records)-1))
		case "down", "j":
			m.historyCursor = clamp(m.historyCursor+1, 0, max(0, len(records)-1))
		case "enter":
			if m.historyCursor < len(records) {
				rec := records[m.historyCursor]
				m.searchInput.SetValue(rec.From)
				m.replaceInput.SetValue(rec.To)
				m.status = fmt.Sprintf("loaded %q -> %q", rec.From, rec.To)
			}
			m.closeOverlay()
		}

	case overlayQuick:
		fields := m.quick.List()
		switch key {
		case "esc", "q":
			m.closeOverlay()
		case "up", "k":
			m.quickCursor = clamp(m.quickCursor-1, 0, max(0, len(fields)-1))
		case "down", "j":
			m.quickCursor = clamp(m.quickCursor+1, 0, max(0, len(fields)-1))
		case "a":
			if m.quick.Add(m.replaceInput.Value()) {
				m.quickCursor = len(fields)
			}
		case "d":
			if m.quick.Remove(m.quickCursor) {
				m.quickCursor = clamp(m.quickCursor, 0, max(0, len(fields)-2))
			}
		case "enter":
			if m.quickCursor < len(fields) {
				m.replaceInput.SetValue(fields[m.quickCursor])
			}
			m.closeOverlay()
		}

	case overlayConfirmAll:
		switch key {
		case "y", "Y":
			m.applyReplaceAll()
			m.closeOverlay()
		case "n", "N", "esc":
			m.status = "replace-all cancelled"
			m.closeOverlay()
		}
	}
	return m, nil
}

func (m *model) closeOverlay() {
	m.overlay = overlayNone
	m.filterInput.Blur()
}

func (m *model) cycleFocus() {
	switch m.focus {
	case focusSearch:
		m.setFocus(focusReplace)
	case focusReplace:
		if len(m.rows) > 0 {
			m.setFocus(focusResults)
		} else {
			m.setFocus(focusSearch)
		}
	default:
		m.setFocus(focusSearch)
	}
}

func (m *model) setFocus(f focusArea) {
	m.focus = f
	m.searchInput.Blur()
	m.replaceInput.Blur()
	switch f {
	case focusSearch:
		m.searchInput.Focus()
	case focusReplace:
		m.replaceInput.Focus()
	}
}

func (m *model) startSearch() {
	m.abortSearch()

	content := m.buf.Content()
	s, err := search.NewSession(m.searchInput.Value(), content)
	if err != nil {
		m.errMsg = err.Error()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	box := &eventBox{}
	done := make(chan searchResult, 1)
	coord := m.coord
	ignore := m.ignore
	opts := triage.Options{Capacity: m.cfg.RenderCap, Logger: m.log, Events: box.push}
	go func() {
		sess, err := triage.Start(ctx, coord, s, content, ignore, opts)
		done <- searchResult{sess: sess, err: err}
	}()

	m.running = s
	m.cancel = cancel
	m.box = box
	m.done = done
	m.workers = s.WorkerCount
	m.percent = 0
	m.found = 0
	m.sess = nil
	m.stats = triage.Stats{}
	m.rows = nil
	m.cursor = 0
	m.offset = 0
	m.closeAt = time.Time{}
	m.errMsg = ""
	m.status = ""
	m.setFocus(focusResults)
	m.log.Debug("search started", "session", s.ID, "keyword", s.Keyword, "workers", s.WorkerCount)
}

func (m *model) abortSearch() {
	if m.running == nil {
		return
	}
	m.running.Abort()
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *model) drainEvents() {
	if m.box == nil {
		return
	}
	for _, ev := range m.box.drain() {
		switch ev.Kind {
		case triage.EventProgress:
			if m.running != nil {
				m.percent = ev.Percent
				m.found = ev.Found
			}
		case triage.EventQueueDepth:
			m.stats.Depth = ev.Depth
		case triage.EventGroupsChanged:
			m.refreshRows()
		case triage.EventComplete:
			m.onComplete(ev)
		case triage.EventNotice:
			m.status = ev.Message
		case triage.EventError:
			m.errMsg = ev.Message
		}
	}
}

func (m *model) onComplete(ev triage.Event) {
	switch {
	case ev.Message != "":
		m.status = ev.Message
	case ev.Passive:
		m.status = "every group resolved by filter"
	default:
		m.closeAt = time.Now().Add(time.Duration(m.cfg.CloseDelayMs) * time.Millisecond)
	}
}

func (m *model) drainSearch() {
	if m.done == nil {
		return
	}
	select {
	case res := <-m.done:
		m.done = nil
		m.running = nil
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		if res.err != nil {
			m.box = nil
			m.sess = nil
			m.rows = nil
			switch {
			case errors.Is(res.err, search.ErrTimeout):
				m.errMsg = ""
				m.status = "search timed out"
			case errors.Is(res.err, search.ErrAborted):
				m.errMsg = ""
				m.status = "search cancelled"
			default:
				m.errMsg = res.err.Error()
			}
			m.setFocus(focusSearch)
			return
		}
		m.sess = res.sess
		m.percent = 100
		m.refreshRows()
		if len(m.rows) == 0 {
			m.setFocus(focusSearch)
		}
	default:
	}
}

func (m *model) drainWatch() {
	if m.watch == nil {
		return
	}
	select {
	case events, ok := <-m.watch:
		if !ok {
			m.watch = nil
			return
		}
		if len(events) == 0 {
			return
		}
		if m.diskDiffers() {
			m.diskChanged = true
			m.status = "file changed on disk"
			m.log.Info("file changed on disk", "path", m.path, "event", events[len(events)-1].Event)
		}
	default:
	}
}

func (m *model) diskDiffers() bool {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return true
	}
	return !m.buf.Matches(data)
}

func (m *model) refreshRows() {
	if m.sess == nil {
		m.rows = nil
		return
	}
	m.rows = m.sess.Displayed()
	m.stats = m.sess.Stats()
	m.ensureCursor()
}

func (m *model) closeResults() {
	m.closeAt = time.Time{}
	m.rows = nil
	m.cursor = 0
	m.offset = 0
	m.setFocus(focusSearch)
	m.status = fmt.Sprintf("done: %d replaced, %d ignored", m.stats.Replaced, m.stats.Ignored)
}

func (m *model) replaceSelected() {
	g, ok := m.selectedGroup()
	if !ok {
		return
	}
	out, err := m.engine.ReplaceGroup(m.sess, g, m.replaceInput.Value())
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	if out.Replaced == 0 {
		m.status = fmt.Sprintf("group %d is stale, search again", g.ID)
		return
	}
	m.status = fmt.Sprintf("replaced %d occurrence(s)", out.Replaced)
	if out.Stale > 0 {
		m.status += fmt.Sprintf(", %d stale", out.Stale)
	}
	m.refreshRows()
}

func (m *model) ignoreSelected() {
	g, ok := m.selectedGroup()
	if !ok {
		return
	}
	if _, err := m.sess.Ignore(g); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.status = fmt.Sprintf("ignored %q", g.Fingerprint)
	m.refreshRows()
}

func (m *model) prepareReplaceAll() {
	plan, err := m.engine.PrepareReplaceAll(m.searchInput.Value(), m.replaceInput.Value())
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	if plan.Count == 0 {
		m.status = "no matches to replace"
		return
	}
	m.plan = plan
	m.overlay = overlayConfirmAll
}

func (m *model) applyReplaceAll() {
	n, err := m.engine.ApplyReplaceAll(m.plan.Confirm())
	m.plan = replace.Plan{}
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	// Every stored position is stale after a whole-buffer rewrite.
	m.sess = nil
	m.rows = nil
	m.stats = triage.Stats{}
	m.setFocus(focusSearch)
	m.status = fmt.Sprintf("replaced %d occurrence(s) in buffer", n)
}

func (m *model) undo() {
	if err := m.buf.Undo(); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "undone"
}

func (m *model) redo() {
	if err := m.buf.Redo(); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "redone"
}

func (m *model) save() {
	if err := m.buf.Save(); err != nil {
		m.errMsg = "save failed: " + err.Error()
		return
	}
	m.diskChanged = false
	m.status = "saved " + m.path
}

func (m *model) moveCursor(delta int) {
	m.cursor += delta
	m.ensureCursor()
}

func (m *model) ensureCursor() {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	m.cursor = clamp(m.cursor, 0, len(m.rows)-1)

	page := m.rowsPerPage()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
	m.offset = clamp(m.offset, 0, max(0, len(m.rows)-page))
}

func (m model) selectedGroup() (*triage.Group, bool) {
	if m.sess == nil || m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil, false
	}
	g := m.rows[m.cursor]
	return g, g.IsPending()
}

func (m *model) queueVisibleHighlights() {
	if m.highlighter == nil || len(m.rows) == 0 {
		return
	}
	width, _ := m.listSize()
	end := min(len(m.rows), m.offset+m.rowsPerPage())
	for i := m.offset; i < end; i++ {
		text, _ := m.contextLine(m.rows[i], width)
		m.highlighter.Queue(highlighter.Request{Lang: m.lang, Text: text})
	}
}
