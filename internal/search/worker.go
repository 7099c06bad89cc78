package search

import (
	"context"
	"strings"
	"unicode/utf8"
)

// yieldBytes bounds how far a scan runs inside one line between hook calls.
var yieldBytes = 64 << 10

// lineHook runs before every YieldEvery-th line of a scan and every
// yieldBytes within a long line. A non-nil error stops the scan and is
// returned as is.
type lineHook func(lineIndex int, found int) error

// Find scans one chunk for every occurrence of the task keyword. Matches may
// overlap: the next probe starts one byte after the previous match.
func Find(ctx context.Context, task Task) ([]Occurrence, error) {
	return scanChunk(task, func(int, int) error {
		return ctx.Err()
	})
}

func scanChunk(task Task, hook lineHook) ([]Occurrence, error) {
	if task.Keyword == "" || task.Chunk == "" {
		return nil, nil
	}

	chunk := task.Chunk
	var out []Occurrence
	lineStart := 0
	for lineIndex := 0; ; lineIndex++ {
		if hook != nil && lineIndex%YieldEvery == 0 {
			if err := hook(lineIndex, len(out)); err != nil {
				return nil, err
			}
		}

		lineEnd := strings.IndexByte(chunk[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(chunk)
		} else {
			lineEnd += lineStart
		}

		var check func(found int) error
		if hook != nil {
			check = func(found int) error { return hook(lineIndex, found) }
		}
		var err error
		out, err = appendLineMatches(out, task, lineStart, lineEnd, task.LineNumber+lineIndex+1, check)
		if err != nil {
			return nil, err
		}

		if lineEnd >= len(chunk) {
			break
		}
		lineStart = lineEnd + 1
	}
	return out, nil
}

// appendLineMatches probes at most yieldBytes start positions per call to
// strings.Index so check can stop a scan of one very long line.
func appendLineMatches(out []Occurrence, task Task, lineStart int, lineEnd int, lineNo int, check func(found int) error) ([]Occurrence, error) {
	keyword := task.Keyword
	line := task.Chunk[lineStart:lineEnd]

	col := 1
	colAt := 0
	from := 0
	checked := 0
	for from+len(keyword) <= len(line) {
		if check != nil && from-checked >= yieldBytes {
			if err := check(len(out)); err != nil {
				return nil, err
			}
			checked = from
		}

		limit := min(len(line), from+yieldBytes+len(keyword)-1)
		idx := strings.Index(line[from:limit], keyword)
		if idx < 0 {
			if limit == len(line) {
				break
			}
			from = limit - len(keyword) + 1
			continue
		}
		idx += from

		col += utf8.RuneCountInString(line[colAt:idx])
		colAt = idx

		out = append(out, buildOccurrence(task, lineStart+idx, lineNo, col))
		from = idx + 1
	}
	return out, nil
}

func buildOccurrence(task Task, local int, lineNo int, col int) Occurrence {
	end := local + len(task.Keyword)
	head := task.Chunk[:local]
	rest := task.Chunk[end:]

	before := windowBefore(head, task.Lead, FingerprintRadius)
	after := windowAfter(rest, task.Tail, FingerprintRadius)
	ctxBefore := windowBefore(head, task.Lead, ContextRadius)
	ctxAfter := windowAfter(rest, task.Tail, ContextRadius)

	return Occurrence{
		Line:     lineNo,
		Column:   col,
		Position: task.ChunkOffset + local,
		Before:   before,
		After:    after,
		Field:    before + task.Keyword + after,
		Context:  ctxBefore + task.Keyword + ctxAfter,
		Anchor:   len(ctxBefore),
	}
}

func windowBefore(s string, lead string, n int) string {
	w, got := lastRunes(s, n)
	if got < n && lead != "" {
		extra, _ := lastRunes(lead, n-got)
		return extra + w
	}
	return w
}

func windowAfter(s string, tail string, n int) string {
	w, got := firstRunes(s, n)
	if got < n && tail != "" {
		extra, _ := firstRunes(tail, n-got)
		return w + extra
	}
	return w
}

func lastRunes(s string, n int) (string, int) {
	i := len(s)
	count := 0
	for i > 0 && count < n {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
		count++
	}
	return s[i:], count
}

func firstRunes(s string, n int) (string, int) {
	i := 0
	count := 0
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], count
}

// CountOverlapping counts keyword matches across the whole content, newlines
// included, advancing one byte after each match.
func CountOverlapping(content string, keyword string) int {
	if keyword == "" {
		return 0
	}
	count := 0
	from := 0
	for from < len(content) {
		idx := strings.Index(content[from:], keyword)
		if idx < 0 {
			break
		}
		count++
		from += idx + 1
	}
	return count
}
