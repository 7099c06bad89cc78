package textbuf

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Open reads path into a buffer. A file that ends every line with CRLF is
// normalised to LF and written back with CRLF; anything else is kept as is.
func Open(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text, crlf := decodeLineEndings(string(data))
	b := New(text)
	b.path = path
	b.crlf = crlf
	return b, nil
}

func decodeLineEndings(text string) (string, bool) {
	n := strings.Count(text, "\n")
	if n == 0 || strings.Count(text, "\r\n") != n {
		return text, false
	}
	return strings.ReplaceAll(text, "\r\n", "\n"), true
}

// Matches reports whether data, as read from disk, holds the buffer's
// current content.
func (b *Buffer) Matches(data []byte) bool {
	text, _ := decodeLineEndings(string(data))
	return text == b.Content()
}

func (b *Buffer) Save() error {
	path := b.Path()
	if path == "" {
		return ErrNoPath
	}
	return b.SaveAs(path)
}

// SaveAs writes the content to path through a temporary file and a rename,
// then makes path the buffer's file.
func (b *Buffer) SaveAs(path string) error {
	b.mu.RLock()
	text := b.content
	crlf := b.crlf
	b.mu.RUnlock()

	if crlf {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	if err := writeAtomic(path, text); err != nil {
		return err
	}

	b.mu.Lock()
	b.path = path
	b.dirty = false
	b.mu.Unlock()
	return nil
}

func writeAtomic(path string, text string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	writer := bufio.NewWriterSize(f, 1<<20)
	if _, err := writer.WriteString(text); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := writer.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
