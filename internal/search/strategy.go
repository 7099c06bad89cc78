package search

import "strings"

var (
	serialLimit     = 100 << 10
	twoWorkerLimit  = 1 << 20
	fourWorkerLimit = 5 << 20
)

func WorkerCount(size int) int {
	switch {
	case size < serialLimit:
		return 1
	case size < twoWorkerLimit:
		return 2
	case size < fourWorkerLimit:
		return 4
	default:
		return 8
	}
}

type span struct {
	start int
	end   int
	line  int
}

// partition cuts content into at most workers line-aligned ranges. Every
// range ends just past a line break (or at the end of content) and the next
// one starts there, so each line belongs to exactly one range.
func partition(content string, workers int) []span {
	if workers < 1 {
		workers = 1
	}
	size := len(content)
	chunkSize := (size + workers - 1) / workers

	spans := make([]span, 0, workers)
	start := 0
	line := 0
	for i := 0; i < workers && start < size; i++ {
		end := size
		if i < workers-1 {
			end = alignForward(content, max(start, (i+1)*chunkSize))
		}
		if end <= start {
			continue
		}
		spans = append(spans, span{start: start, end: end, line: line})
		line += strings.Count(content[start:end], "\n")
		start = end
	}
	return spans
}

func alignForward(content string, pos int) int {
	if pos >= len(content) {
		return len(content)
	}
	if pos > 0 && content[pos-1] == '\n' {
		return pos
	}
	idx := strings.IndexByte(content[pos:], '\n')
	if idx < 0 {
		return len(content)
	}
	return pos + idx + 1
}
