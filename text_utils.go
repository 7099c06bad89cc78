package main

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

func truncateText(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", "    ")

	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// flattenContext maps line breaks and tabs to single spaces, so rune
// offsets into the result match offsets into s.
func flattenContext(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t':
			return ' '
		}
		return r
	}, s)
}

// fitContext cuts ctx to width columns keeping the keyword at byte offset
// anchor visible. It returns the text and the keyword's rune positions in it.
func fitContext(ctx string, anchor int, keywordLen int, width int) (string, []int) {
	if width <= 0 {
		return "", nil
	}
	if anchor < 0 || anchor+keywordLen > len(ctx) {
		anchor, keywordLen = 0, 0
	}

	runes := []rune(flattenContext(ctx))
	start := utf8.RuneCountInString(ctx[:anchor])
	n := utf8.RuneCountInString(ctx[anchor : anchor+keywordLen])

	from := 0
	if runewidth.StringWidth(string(runes)) > width {
		from = clamp(start-width/3, 0, len(runes))
	}
	text := truncateText(string(runes[from:]), width)

	positions := make([]int, 0, n)
	for i := start; i < start+n; i++ {
		positions = append(positions, i-from)
	}
	return text, positions
}

func utf8RuneCount(s string) int {
	return utf8.RuneCountInString(s)
}

func padRightANSI(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func clamp(v int, lo int, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
