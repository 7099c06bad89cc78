package replace

import (
	"sort"
	"strings"
)

// suffix is the already-edited tail of the document, kept as pieces in
// reverse order so prepending is an append.
type suffix struct {
	pieces []string
	n      int
}

func (s *suffix) prepend(p string) {
	if p == "" {
		return
	}
	s.pieces = append(s.pieces, p)
	s.n += len(p)
}

func (s *suffix) drop(n int) {
	for n > 0 && len(s.pieces) > 0 {
		last := len(s.pieces) - 1
		head := s.pieces[last]
		if len(head) > n {
			s.pieces[last] = head[n:]
			s.n -= n
			return
		}
		s.pieces = s.pieces[:last]
		s.n -= len(head)
		n -= len(head)
	}
}

func (s *suffix) hasPrefix(want string) bool {
	if len(want) > s.n {
		return false
	}
	for i := len(s.pieces) - 1; i >= 0 && want != ""; i-- {
		p := s.pieces[i]
		if len(p) > len(want) {
			p = p[:len(want)]
		}
		if !strings.HasPrefix(want, p) {
			return false
		}
		want = want[len(p):]
	}
	return want == ""
}

// splice replaces keyword at each position, highest first, checking every
// position against the partially edited text. The result equals applying
// the substitutions one by one with substring splicing, in linear time.
func splice(original string, keyword string, replacement string, positions []int) (string, int, int) {
	sorted := append([]int(nil), positions...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	k := len(keyword)
	frontier := len(original)
	var tail suffix
	replaced, stale := 0, 0
	for _, p := range sorted {
		if p < 0 || p > frontier || p+k > frontier+tail.n {
			stale++
			continue
		}
		if p+k <= frontier {
			if original[p:p+k] != keyword {
				stale++
				continue
			}
			tail.prepend(original[p+k : frontier])
		} else {
			head := original[p:frontier]
			if !strings.HasPrefix(keyword, head) || !tail.hasPrefix(keyword[len(head):]) {
				stale++
				continue
			}
			tail.drop(p + k - frontier)
		}
		tail.prepend(replacement)
		frontier = p
		replaced++
	}
	if replaced == 0 {
		return original, 0, stale
	}

	var b strings.Builder
	b.Grow(frontier + tail.n)
	b.WriteString(original[:frontier])
	for i := len(tail.pieces) - 1; i >= 0; i-- {
		b.WriteString(tail.pieces[i])
	}
	return b.String(), replaced, stale
}
