package textbuf

import (
	"errors"
	"sync"
)

const DefaultUndoDepth = 100

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrNoPath        = errors.New("buffer has no file path")
)

// Buffer is an in-memory text document edited only by whole-content
// replacement. Each ApplyAtomicEdit is one undo step.
type Buffer struct {
	mu        sync.RWMutex
	content   string
	undo      []string
	redo      []string
	undoDepth int

	path  string
	crlf  bool
	dirty bool
}

func New(content string) *Buffer {
	return &Buffer{content: content, undoDepth: DefaultUndoDepth}
}

func (b *Buffer) Content() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.content)
}

// ApplyAtomicEdit replaces the whole content. Identical content is not an
// edit and leaves the undo history alone.
func (b *Buffer) ApplyAtomicEdit(next string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if next == b.content {
		return nil
	}
	b.undo = append(b.undo, b.content)
	if len(b.undo) > b.undoDepth {
		b.undo = b.undo[len(b.undo)-b.undoDepth:]
	}
	b.redo = b.redo[:0]
	b.content = next
	b.dirty = true
	return nil
}

func (b *Buffer) Undo() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.undo) == 0 {
		return ErrNothingToUndo
	}
	prev := b.undo[len(b.undo)-1]
	b.undo = b.undo[:len(b.undo)-1]
	b.redo = append(b.redo, b.content)
	b.content = prev
	b.dirty = true
	return nil
}

func (b *Buffer) Redo() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.redo) == 0 {
		return ErrNothingToRedo
	}
	next := b.redo[len(b.redo)-1]
	b.redo = b.redo[:len(b.redo)-1]
	b.undo = append(b.undo, b.content)
	b.content = next
	b.dirty = true
	return nil
}

func (b *Buffer) SetUndoDepth(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= 0 {
		n = DefaultUndoDepth
	}
	b.undoDepth = n
	if len(b.undo) > n {
		b.undo = b.undo[len(b.undo)-n:]
	}
}

func (b *Buffer) Dirty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dirty
}

func (b *Buffer) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}
