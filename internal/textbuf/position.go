package textbuf

import (
	"strings"
	"unicode/utf8"
)

// PositionAt maps a byte offset to a 1-based line and rune column. Offsets
// outside the content are clamped.
func (b *Buffer) PositionAt(offset int) (line int, col int) {
	content := b.Content()
	offset = clamp(offset, 0, len(content))
	head := content[:offset]
	line = strings.Count(head, "\n") + 1
	lineStart := strings.LastIndexByte(head, '\n') + 1
	col = utf8.RuneCountInString(head[lineStart:]) + 1
	return line, col
}

// OffsetAt is the inverse of PositionAt. Columns past the end of a line
// land on the line break; lines past the end land on the end of content.
func (b *Buffer) OffsetAt(line int, col int) int {
	content := b.Content()
	if line < 1 {
		return 0
	}
	start := 0
	for l := 1; l < line; l++ {
		idx := strings.IndexByte(content[start:], '\n')
		if idx < 0 {
			return len(content)
		}
		start += idx + 1
	}
	end := strings.IndexByte(content[start:], '\n')
	if end < 0 {
		end = len(content)
	} else {
		end += start
	}
	pos := start
	for c := 1; c < col && pos < end; c++ {
		_, size := utf8.DecodeRuneInString(content[pos:end])
		pos += size
	}
	return pos
}

type Paragraph struct {
	Line    int
	Prev    string
	Current string
	Next    string
}

// Paragraphs returns the line containing offset and its neighbours.
func (b *Buffer) Paragraphs(offset int) Paragraph {
	content := b.Content()
	offset = clamp(offset, 0, len(content))
	lines := strings.Split(content, "\n")
	line := strings.Count(content[:offset], "\n")

	p := Paragraph{Line: line + 1, Current: lines[line]}
	if line > 0 {
		p.Prev = lines[line-1]
	}
	if line+1 < len(lines) {
		p.Next = lines[line+1]
	}
	return p
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
