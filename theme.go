package main

import (
	"fmt"
	"slices"
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const defaultThemeName = "nord"

// palette is the set of colours the views draw with, resolved once from a
// chroma style.
type palette struct {
	Name        string
	Text        string
	InputBG     string
	SelectionBG string
	Muted       string
	Dim         string
	PathFile    string
	PathMeta    string
	Header      string
	Accent      string
	Keyword     string
	Type        string
	Function    string
	String      string
	Number      string
	Comment     string
	Operator    string
	Error       string
	Added       string
	Removed     string
}

var fallbackPalette = palette{
	Name:        "fallback",
	Text:        "#d8dee9",
	InputBG:     "#3b4252",
	SelectionBG: "#434c5e",
	Muted:       "#4c566a",
	Dim:         "#4c566a",
	PathFile:    "#81a1c1",
	PathMeta:    "#6b7280",
	Header:      "#8fbcbb",
	Accent:      "#88c0d0",
	Keyword:     "#81a1c1",
	Type:        "#8fbcbb",
	Function:    "#88c0d0",
	String:      "#a3be8c",
	Number:      "#b48ead",
	Comment:     "#616e88",
	Operator:    "#d8dee9",
	Error:       "#bf616a",
	Added:       "#a3be8c",
	Removed:     "#bf616a",
}

var themeAliases = map[string]string{
	"solarized": "solarized-dark",
	"one-dark":  "onedark",
}

var suggestedThemes = []string{"nord", "dracula", "monokai", "github", "github-dark", "solarized-dark", "gruvbox", "onedark"}

var appTheme = func() palette {
	if p, err := defaultConfig().palette(); err == nil {
		return p
	}
	return fallbackPalette
}()

func themeNames() []string {
	names := styles.Names()
	slices.Sort(names)
	return names
}

func resolveThemeName(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		n = defaultThemeName
	}
	if alias, ok := themeAliases[n]; ok {
		n = alias
	}
	if _, found := slices.BinarySearch(themeNames(), n); !found {
		return "", fmt.Errorf("unknown theme %q (try %s)", strings.TrimSpace(name), strings.Join(suggestedThemes, ", "))
	}
	return n, nil
}

// palette resolves the configured theme. Roles a style leaves unset are
// blended from its text and background colours.
func (c config) palette() (palette, error) {
	name, err := resolveThemeName(c.Theme)
	if err != nil {
		return palette{}, err
	}
	r := styleReader{styles.Get(name)}

	base := r.bg(fallbackPalette.InputBG, chroma.Background, chroma.LineHighlight)
	text := r.fg(fallbackPalette.Text, chroma.Text, chroma.Background)
	comment := r.fg(mix(text, base, 0.4), chroma.Comment)
	str := r.fg(text, chroma.LiteralString)
	errc := r.fg(fallbackPalette.Error, chroma.Error)

	return palette{
		Name:        name,
		Text:        text,
		InputBG:     mix(base, text, 0.06),
		SelectionBG: r.bg(mix(base, text, 0.14), chroma.LineHighlight),
		Muted:       r.fg(mix(text, base, 0.45), chroma.LineNumbers, chroma.Comment),
		Dim:         mix(comment, base, 0.2),
		PathFile:    r.fg(mix(text, base, 0.25), chroma.NameNamespace, chroma.Name),
		PathMeta:    mix(text, base, 0.35),
		Header:      r.fg(text, chroma.NameClass, chroma.Keyword),
		Accent:      r.fg(text, chroma.NameFunction, chroma.Keyword),
		Keyword:     r.fg(text, chroma.Keyword),
		Type:        r.fg(text, chroma.KeywordType, chroma.NameClass),
		Function:    r.fg(text, chroma.NameFunction, chroma.Name),
		String:      str,
		Number:      r.fg(text, chroma.LiteralNumber),
		Comment:     comment,
		Operator:    r.fg(text, chroma.Operator),
		Error:       errc,
		Added:       r.fg(str, chroma.GenericInserted),
		Removed:     r.fg(errc, chroma.GenericDeleted),
	}, nil
}

type styleReader struct {
	style *chroma.Style
}

func (r styleReader) fg(fallback string, types ...chroma.TokenType) string {
	for _, tt := range types {
		if e := r.style.Get(tt); e.Colour.IsSet() {
			return e.Colour.String()
		}
	}
	return fallback
}

func (r styleReader) bg(fallback string, types ...chroma.TokenType) string {
	for _, tt := range types {
		if e := r.style.Get(tt); e.Background.IsSet() {
			return e.Background.String()
		}
	}
	return fallback
}

// mix moves a toward b by t in Lab space. a is returned unchanged when
// either colour does not parse.
func mix(a string, b string, t float64) string {
	ca, err := colorful.Hex(a)
	if err != nil {
		return a
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return a
	}
	return ca.BlendLab(cb, t).Clamped().Hex()
}
