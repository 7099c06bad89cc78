package main

import (
	"io"

	"gopkg.in/yaml.v3"

	"kwsweep/internal/history"
	"kwsweep/internal/triage"
)

type report struct {
	Session string        `yaml:"session"`
	File    string        `yaml:"file"`
	Keyword string        `yaml:"keyword"`
	Workers int           `yaml:"workers"`
	Total   int           `yaml:"total"`
	Ignored []string      `yaml:"ignored,omitempty"`
	Groups  []groupReport `yaml:"groups"`
}

// replaceSummary is what replace-all prints once the buffer is written.
type replaceSummary struct {
	File        string           `yaml:"file"`
	Output      string           `yaml:"output"`
	Keyword     string           `yaml:"keyword"`
	Replacement string           `yaml:"replacement"`
	Count       int              `yaml:"count"`
	History     []history.Record `yaml:"history"`
}

type groupReport struct {
	ID          int                `yaml:"id"`
	Fingerprint string             `yaml:"fingerprint"`
	Count       int                `yaml:"count"`
	Occurrences []occurrenceReport `yaml:"occurrences"`
}

type occurrenceReport struct {
	Line     int    `yaml:"line"`
	Column   int    `yaml:"column"`
	Position int    `yaml:"position"`
	Context  string `yaml:"context"`
}

func buildReport(file string, workers int, sess *triage.Session) report {
	r := report{
		Session: sess.ID,
		File:    file,
		Keyword: sess.Keyword,
		Workers: workers,
		Ignored: sess.IgnoreSet().List(),
		Groups:  []groupReport{},
	}
	for _, g := range sess.Groups() {
		gr := groupReport{
			ID:          g.ID,
			Fingerprint: g.Fingerprint,
			Count:       len(g.Occurrences),
			Occurrences: make([]occurrenceReport, 0, len(g.Occurrences)),
		}
		for _, occ := range g.Occurrences {
			gr.Occurrences = append(gr.Occurrences, occurrenceReport{
				Line:     occ.Line,
				Column:   occ.Column,
				Position: occ.Position,
				Context:  occ.Context,
			})
		}
		r.Total += gr.Count
		r.Groups = append(r.Groups, gr)
	}
	return r
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
