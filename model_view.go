package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"kwsweep/internal/highlighter"
	"kwsweep/internal/history"
	"kwsweep/internal/replace"
	"kwsweep/internal/triage"
)

const (
	headerHeight  = 2
	previewHeight = 1
	footerHeight  = 1
)

func (m model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	width, height := m.listSize()
	body := m.renderList(width, height)
	if m.overlay != overlayNone {
		body = m.renderOverlay(width, height)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderPreview(), m.renderFooter())
}

func (m model) renderHeader() string {
	inputStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Text)).Background(lipgloss.Color(appTheme.InputBG)).Padding(0, 1)
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Muted))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Error))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Number)).Bold(true)

	line1 := lipgloss.JoinHorizontal(lipgloss.Top,
		inputStyle.Render(m.searchInput.View()), " ",
		inputStyle.Render(m.replaceInput.View()))

	var status string
	switch {
	case m.running != nil:
		status = fmt.Sprintf("searching %d%% | %d worker(s) | found %d", m.percent, m.workers, m.found)
	case m.sess != nil:
		status = fmt.Sprintf("groups %d | replaced %d | ignored %d | remaining %d | queued %d",
			m.stats.Total, m.stats.Replaced, m.stats.Ignored, m.stats.Remaining, m.stats.Depth)
	default:
		status = filepath.Base(m.path)
	}
	if m.buf.Dirty() {
		status += " | modified"
	}
	if m.status != "" {
		status += " | " + m.status
	}

	line2 := statusStyle.Render(truncateText(status, m.width))
	if m.diskChanged {
		line2 += "  " + warnStyle.Render("changed on disk")
	}
	if m.errMsg != "" {
		line2 += "  " + errStyle.Render(m.errMsg)
	}
	return lipgloss.JoinVertical(lipgloss.Left, line1, line2)
}

func (m model) renderFooter() string {
	footerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Muted))

	var text string
	switch m.overlay {
	case overlayFilter:
		text = "enter ignore matching  esc cancel"
	case overlayHistory:
		text = "up/down move  enter use mapping  esc close"
	case overlayQuick:
		text = "up/down move  a add replace text  enter use  d delete  esc close"
	case overlayConfirmAll:
		text = "y confirm  n cancel"
	case overlayParagraph:
		text = "esc close"
	default:
		if m.focus == focusResults {
			text = "enter replace  x ignore  ctrl+f filter  p paragraph  h history  q quick  ctrl+a all  ctrl+z undo  ctrl+s save  y copy  o open"
		} else {
			text = "enter search  tab switch field  ctrl+z undo  ctrl+s save  esc quit"
		}
	}
	return footerStyle.Render(truncateText(text, m.width))
}

func (m model) renderList(width int, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	if len(m.rows) == 0 {
		msg := "type a keyword and press enter"
		switch {
		case m.running != nil:
			msg = "searching..."
		case m.sess != nil:
			msg = "nothing left to triage"
		}
		emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Muted)).Width(width).Height(height)
		return emptyStyle.Render(msg)
	}

	start := max(m.offset, 0)
	end := min(len(m.rows), start+m.rowsPerPage())

	lines := make([]string, 0, height)
	for i := start; i < end; i++ {
		lineA, lineB := m.renderGroupLines(m.rows[i], i == m.cursor && m.focus == focusResults, width)
		lines = append(lines, lineA)
		if len(lines) < height {
			lines = append(lines, lineB)
		}
		if len(lines) >= height {
			break
		}
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m model) renderGroupLines(g *triage.Group, selected bool, width int) (string, string) {
	occ := g.First()
	seq := m.sess.Sequence(g)
	lineA := renderLocationLine(seq, len(g.Occurrences), filepath.Base(m.path), occ.Line, occ.Column, g.Fingerprint, width, selected)

	text, emphasis := m.contextLine(g, width)
	req := highlighter.Request{Lang: m.lang, Text: text}
	spans := m.lookupHighlightSpans(req, text)
	lineB := "  " + renderTokenLine(text, spans, selected, emphasis)

	return padRightANSI(lineA, width), padRightANSI(lineB, width)
}

// contextLine is the selected occurrence's context fitted to the list width,
// with the rune positions of the keyword inside it.
func (m model) contextLine(g *triage.Group, width int) (string, []int) {
	if m.sess == nil {
		return "", nil
	}
	occ := g.First()
	return fitContext(occ.Context, occ.Anchor, len(m.sess.Keyword), width-2)
}

func (m model) renderPreview() string {
	g, ok := m.selectedGroup()
	if !ok || m.overlay != overlayNone {
		return ""
	}
	spans := replace.PreviewGroup(g, m.sess.Keyword, m.replaceInput.Value())
	return renderDiffLine(spans, m.width)
}

func (m model) renderOverlay(width int, height int) string {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Header)).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Muted))
	selStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Text)).Background(lipgloss.Color(appTheme.SelectionBG))

	var lines []string
	switch m.overlay {
	case overlayFilter:
		lines = append(lines,
			headerStyle.Render("ignore every pending group containing"),
			m.filterInput.View(),
			mutedStyle.Render(fmt.Sprintf("%d pending group(s) match", m.filterCount)))

	case overlayConfirmAll:
		lines = append(lines,
			headerStyle.Render("replace all"),
			truncateText(fmt.Sprintf("replace %d occurrence(s) of %q with %q? y/n", m.plan.Count, m.plan.Keyword, m.plan.Replacement), width))

	case overlayParagraph:
		p := m.paragraph
		num := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Dim))
		lines = append(lines, headerStyle.Render(fmt.Sprintf("paragraph at line %d", p.Line)))
		if p.Line > 1 {
			lines = append(lines, num.Render(fmt.Sprintf("%6d ", p.Line-1))+truncateText(p.Prev, width-7))
		}
		lines = append(lines, num.Render(fmt.Sprintf("%6d ", p.Line))+selStyle.Render(truncateText(p.Current, width-7)))
		lines = append(lines, num.Render(fmt.Sprintf("%6d ", p.Line+1))+truncateText(p.Next, width-7))

	case overlayHistory:
		records := m.engine.History().Records()
		lines = append(lines, headerStyle.Render("mapping history"))
		if len(records) == 0 {
			lines = append(lines, mutedStyle.Render("no replacements yet"))
		}
		now := time.Now()
		for i, rec := range records {
			row := fmt.Sprintf("  %q -> %q  x%d  %s", rec.From, rec.To, rec.Count, history.Age(rec.Timestamp, now))
			row = padRightANSI(truncateText(row, width), width)
			if i == m.historyCursor {
				row = selStyle.Render(row)
			}
			lines = append(lines, row)
		}

	case overlayQuick:
		fields := m.quick.List()
		lines = append(lines, headerStyle.Render("quick fields"))
		if len(fields) == 0 {
			lines = append(lines, mutedStyle.Render("empty: a saves the current replace text"))
		}
		for i, f := range fields {
			row := padRightANSI(truncateText("  "+f, width), width)
			if i == m.quickCursor {
				row = selStyle.Render(row)
			}
			lines = append(lines, row)
		}
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m model) lookupHighlightSpans(req highlighter.Request, text string) []highlighter.Span {
	if m.highlighter == nil {
		return nil
	}
	spans, ok := m.highlighter.Lookup(req)
	if ok {
		return spans
	}
	m.highlighter.Queue(req)
	return []highlighter.Span{{Start: 0, End: utf8RuneCount(text), Cat: highlighter.TokenPlain}}
}

func (m model) listSize() (int, int) {
	return m.width, max(m.height-headerHeight-previewHeight-footerHeight, 1)
}

func (m model) rowsPerPage() int {
	_, h := m.listSize()
	return max(1, h/2)
}
