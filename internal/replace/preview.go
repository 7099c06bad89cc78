package replace

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"kwsweep/internal/triage"
)

type DiffOp int8

const (
	DiffEqual DiffOp = iota
	DiffDelete
	DiffInsert
)

type DiffSpan struct {
	Op   DiffOp
	Text string
}

// PreviewGroup diffs the first occurrence's context against the same
// context with its keyword replaced.
func PreviewGroup(g *triage.Group, keyword string, replacement string) []DiffSpan {
	if g == nil || len(g.Occurrences) == 0 {
		return nil
	}
	occ := g.First()
	before := occ.Context
	if occ.Anchor < 0 || occ.Anchor+len(keyword) > len(before) {
		return []DiffSpan{{Op: DiffEqual, Text: before}}
	}
	after := before[:occ.Anchor] + replacement + before[occ.Anchor+len(keyword):]

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))

	spans := make([]DiffSpan, 0, len(diffs))
	for _, d := range diffs {
		op := DiffEqual
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = DiffDelete
		case diffmatchpatch.DiffInsert:
			op = DiffInsert
		}
		spans = append(spans, DiffSpan{Op: op, Text: d.Text})
	}
	return spans
}
