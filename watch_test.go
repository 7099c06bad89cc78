package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchFileReportsWritesToTheFileOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watched.txt")
	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	events, stop, err := watchFile(path, 20*time.Millisecond)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(other, []byte("noise"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("two"), 0o644))

	var batch []fileEvent
	require.Eventually(t, func() bool {
		select {
		case batch = <-events:
			return true
		default:
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)

	require.NotEmpty(t, batch)
	for _, ev := range batch {
		assert.Equal(t, filepath.Base(path), filepath.Base(ev.Path))
		assert.NotEmpty(t, ev.Event)
	}

	stop()
	stop()
}

func TestModelFlagsExternalChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("foo\n"), 0o644))

	m := testModelAt(t, path)
	events := make(chan []fileEvent, 1)
	m.watch = events

	events <- []fileEvent{{Path: path, Event: "Write"}}
	m = tick(m)
	assert.False(t, m.diskChanged)

	require.NoError(t, os.WriteFile(path, []byte("bar\n"), 0o644))
	events <- []fileEvent{{Path: path, Event: "Write"}}
	m = tick(m)
	assert.True(t, m.diskChanged)
	assert.Equal(t, "file changed on disk", m.status)

	m = press(m, ctrlS())
	assert.False(t, m.diskChanged)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "foo\n", string(data))
}
