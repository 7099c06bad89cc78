package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/rjeczalik/notify"
)

const watchQuiet = 300 * time.Millisecond

type fileEvent struct {
	Path  string
	Event string
}

// watchFile reports changes to path in batches, one batch per quiet period.
// The parent directory is watched so replacements by rename are seen.
var watchFile = func(path string, quiet time.Duration) (<-chan []fileEvent, func(), error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, err
	}
	match := glob.MustCompile(glob.QuoteMeta(abs))

	c := make(chan notify.EventInfo, 16)
	if err := notify.Watch(filepath.Dir(abs), c, notify.All); err != nil {
		return nil, nil, fmt.Errorf("watch %s: %w", abs, err)
	}

	out := make(chan []fileEvent, 1)
	done := make(chan struct{})
	go func() {
		var pending []fileEvent
		var flush <-chan time.Time
		for {
			select {
			case <-done:
				return
			case ev := <-c:
				if !match.Match(ev.Path()) {
					continue
				}
				pending = append(pending, fileEvent{
					Path:  ev.Path(),
					Event: strings.TrimPrefix(ev.Event().String(), "notify."),
				})
				if flush == nil {
					flush = time.After(quiet)
				}
			case <-flush:
				select {
				case out <- pending:
				default:
				}
				pending = nil
				flush = nil
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			notify.Stop(c)
			close(done)
		})
	}
	return out, stop, nil
}
