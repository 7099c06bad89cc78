package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"kwsweep/internal/highlighter"
	"kwsweep/internal/replace"
)

func renderLocationLine(seq int, count int, file string, line int, col int, fingerprint string, width int, selected bool) string {
	if width <= 0 {
		return ""
	}

	seqStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Accent)).Bold(true)
	countStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Number))
	locStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.PathFile))
	fpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.PathMeta))
	if selected {
		bg := lipgloss.Color(appTheme.SelectionBG)
		seqStyle = seqStyle.Background(bg)
		countStyle = countStyle.Background(bg)
		locStyle = locStyle.Background(bg)
		fpStyle = fpStyle.Background(bg)
	}

	parts := []struct {
		text  string
		style lipgloss.Style
	}{
		{fmt.Sprintf("%4d ", seq), seqStyle},
		{fmt.Sprintf(" x%-3d ", count), countStyle},
		{fmt.Sprintf(" %s:%d:%d ", file, line, col), locStyle},
		{" " + flattenContext(fmt.Sprintf("%q", fingerprint)), fpStyle},
	}

	var b strings.Builder
	used := 0
	for _, p := range parts {
		text := truncateText(p.text, width-used)
		if text == "" {
			break
		}
		b.WriteString(p.style.Render(text))
		used += lipgloss.Width(text)
	}
	return b.String()
}

func renderTokenLine(text string, spans []highlighter.Span, selected bool, keyword []int) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	if len(spans) == 0 {
		spans = []highlighter.Span{{Start: 0, End: len(runes), Cat: highlighter.TokenPlain}}
	}

	emphasis := buildEmphasisMask(len(runes), keyword)

	var b strings.Builder
	for _, span := range spans {
		start := clamp(span.Start, 0, len(runes))
		end := clamp(span.End, 0, len(runes))
		if end <= start {
			continue
		}
		for i := start; i < end; {
			emph := emphasisAt(emphasis, i)
			j := i + 1
			for j < end && emphasisAt(emphasis, j) == emph {
				j++
			}
			style := tokenStyle(span.Cat, selected)
			if emph {
				style = style.Bold(true).Underline(true).Foreground(lipgloss.Color(appTheme.Accent))
			}
			b.WriteString(style.Render(string(runes[i:j])))
			i = j
		}
	}

	return b.String()
}

func tokenStyle(cat highlighter.TokenCategory, selected bool) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Text))
	if selected {
		style = style.Background(lipgloss.Color(appTheme.SelectionBG))
	}

	switch cat {
	case highlighter.TokenKeyword:
		return style.Foreground(lipgloss.Color(appTheme.Keyword))
	case highlighter.TokenType:
		return style.Foreground(lipgloss.Color(appTheme.Type))
	case highlighter.TokenFunction:
		return style.Foreground(lipgloss.Color(appTheme.Function))
	case highlighter.TokenString:
		return style.Foreground(lipgloss.Color(appTheme.String))
	case highlighter.TokenNumber:
		return style.Foreground(lipgloss.Color(appTheme.Number))
	case highlighter.TokenComment:
		return style.Foreground(lipgloss.Color(appTheme.Comment))
	case highlighter.TokenOperator:
		return style.Foreground(lipgloss.Color(appTheme.Operator)).Faint(true)
	case highlighter.TokenError:
		return style.Foreground(lipgloss.Color(appTheme.Error)).Bold(true)
	default:
		return style
	}
}

// renderDiffLine shows the replacement preview of one context: removed text
// struck through, inserted text in bold.
func renderDiffLine(spans []replace.DiffSpan, width int) string {
	if width <= 0 || len(spans) == 0 {
		return ""
	}

	plain := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Muted))
	removed := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Removed)).Strikethrough(true)
	added := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Added)).Bold(true)

	var b strings.Builder
	used := 0
	for _, s := range spans {
		text := truncateText(flattenContext(s.Text), width-used)
		if text == "" {
			break
		}
		switch s.Op {
		case replace.DiffDelete:
			b.WriteString(removed.Render(text))
		case replace.DiffInsert:
			b.WriteString(added.Render(text))
		default:
			b.WriteString(plain.Render(text))
		}
		used += lipgloss.Width(text)
	}
	return b.String()
}

func buildEmphasisMask(runeLen int, positions []int) []bool {
	if runeLen <= 0 || len(positions) == 0 {
		return nil
	}
	mask := make([]bool, runeLen)
	for _, pos := range positions {
		if pos >= 0 && pos < runeLen {
			mask[pos] = true
		}
	}
	return mask
}

func emphasisAt(mask []bool, idx int) bool {
	return idx >= 0 && idx < len(mask) && mask[idx]
}
