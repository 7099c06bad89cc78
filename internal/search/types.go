package search

import (
	"errors"
	"fmt"
)

const (
	FingerprintRadius = 2
	ContextRadius     = 30
	YieldEvery        = 20
)

var (
	ErrEmptyKeyword = errors.New("keyword is empty")
	ErrEmptyBuffer  = errors.New("buffer is empty")
	ErrAborted      = errors.New("search aborted")
	ErrTimeout      = fmt.Errorf("%w: time limit exceeded", ErrAborted)
)

// Occurrence is one keyword hit inside a buffer snapshot. Position is a byte
// offset into the snapshot; Line and Column are 1-based, Column counts runes.
// Anchor is the byte offset of the keyword inside Context.
type Occurrence struct {
	Line     int
	Column   int
	Position int
	Before   string
	After    string
	Field    string
	Context  string
	Anchor   int
}

// Task is the message handed to one chunk worker. Lead and Tail hold the
// buffer text just outside the chunk so windows clamp at buffer edges.
type Task struct {
	Chunk       string
	ChunkOffset int
	Keyword     string
	WorkerID    int
	LineNumber  int
	Lead        string
	Tail        string
}

type Result struct {
	WorkerID    int
	Occurrences []Occurrence
	Err         error
}

type Progress struct {
	Percent int
	Found   int
	Workers int
}
