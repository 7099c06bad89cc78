package highlighter

import (
	"path/filepath"
	"sync"
	"unicode/utf8"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

const PlainLanguage = "plaintext"

// Span covers runes [Start, End) of the highlighted text.
type Span struct {
	Start int
	End   int
	Cat   TokenCategory
}

type Request struct {
	Lang string
	Text string
}

type Config struct {
	CacheSize int
	Workers   int
}

// Highlighter tokenises context snippets in the background. Queue schedules
// work, Lookup reads finished results; the UI polls Lookup on every tick.
type Highlighter struct {
	cache *spanLRU
	tasks chan Request

	pendingMu sync.Mutex
	pending   map[Request]struct{}
}

func New(cfg Config) *Highlighter {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = 2048
	}

	h := &Highlighter{
		cache:   newSpanLRU(cacheSize),
		tasks:   make(chan Request, workers*256),
		pending: make(map[Request]struct{}),
	}
	for i := 0; i < workers; i++ {
		go h.worker()
	}
	return h
}

// DetectLanguage picks a lexer name from the file name, then from the
// first line of content.
func DetectLanguage(path string, firstLine string) string {
	if l := lexers.Match(filepath.Base(path)); l != nil {
		return l.Config().Name
	}
	if firstLine != "" {
		if l := lexers.Analyse(firstLine); l != nil {
			return l.Config().Name
		}
	}
	return PlainLanguage
}

func (h *Highlighter) Lookup(req Request) ([]Span, bool) {
	return h.cache.Get(req)
}

func (h *Highlighter) Queue(req Request) {
	if req.Text == "" {
		return
	}
	if _, ok := h.cache.Get(req); ok {
		return
	}

	h.pendingMu.Lock()
	if _, ok := h.pending[req]; ok {
		h.pendingMu.Unlock()
		return
	}
	h.pending[req] = struct{}{}
	h.pendingMu.Unlock()

	select {
	case h.tasks <- req:
	default:
		h.pendingMu.Lock()
		delete(h.pending, req)
		h.pendingMu.Unlock()
	}
}

func (h *Highlighter) worker() {
	for req := range h.tasks {
		h.cache.Set(req, Highlight(req))

		h.pendingMu.Lock()
		delete(h.pending, req)
		h.pendingMu.Unlock()
	}
}

// Highlight tokenises req.Text synchronously. Unknown languages and lexer
// failures yield a single plain span.
func Highlight(req Request) []Span {
	if req.Text == "" {
		return nil
	}
	lexer := lexers.Get(req.Lang)
	if lexer == nil || req.Lang == PlainLanguage {
		return plainSpans(req.Text)
	}

	it, err := chroma.Coalesce(lexer).Tokenise(nil, req.Text)
	if err != nil {
		return plainSpans(req.Text)
	}

	runeLen := utf8.RuneCountInString(req.Text)
	spans := make([]Span, 0, 16)
	cursor := 0
	for _, tok := range it.Tokens() {
		n := utf8.RuneCountInString(tok.Value)
		if n == 0 {
			continue
		}
		spans = append(spans, Span{Start: cursor, End: cursor + n, Cat: classify(tok.Type)})
		cursor += n
	}
	return normalizeSpans(spans, runeLen)
}
