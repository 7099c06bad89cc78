package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultTimeout      = 60 * time.Second
)

type WorkerFunc func(ctx context.Context, task Task) ([]Occurrence, error)

// Coordinator runs one search over an immutable snapshot. The zero value is
// usable: Find as worker, default poll interval and timeout, no logging.
type Coordinator struct {
	Worker       WorkerFunc
	PollInterval time.Duration
	Timeout      time.Duration
	Logger       *slog.Logger
	Progress     func(Progress)
}

func (c *Coordinator) Search(ctx context.Context, s *Session, content string) ([]Occurrence, error) {
	if s == nil || s.Keyword == "" {
		return nil, ErrEmptyKeyword
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyBuffer
	}

	log := c.logger().With("session", s.ID, "keyword", s.Keyword, "bytes", len(content))
	started := time.Now()

	var (
		out []Occurrence
		err error
	)
	if s.WorkerCount <= 1 {
		log.Debug("search strategy", "strategy", "serial")
		out, err = c.serial(ctx, s, content)
	} else {
		log.Debug("search strategy", "strategy", "parallel", "workers", s.WorkerCount)
		var failed error
		out, failed, err = c.parallel(ctx, s, content)
		if failed != nil {
			log.Warn("parallel search failed, falling back to serial", "err", failed)
			out, err = c.serial(ctx, s, content)
		}
	}
	if err != nil {
		log.Info("search stopped", "err", err, "elapsed", time.Since(started))
		return nil, err
	}

	log.Debug("search done", "found", len(out), "elapsed", time.Since(started))
	return out, nil
}

func (c *Coordinator) serial(ctx context.Context, s *Session, content string) ([]Occurrence, error) {
	totalLines := strings.Count(content, "\n") + 1
	task := Task{
		Chunk:   content,
		Keyword: s.Keyword,
	}
	out, err := scanChunk(task, func(lineIndex int, found int) error {
		runtime.Gosched()
		if s.Aborted() {
			return ErrAborted
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrAborted, err)
		}
		c.report(Progress{Percent: lineIndex * 100 / totalLines, Found: found, Workers: 1})
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.report(Progress{Percent: 100, Found: len(out), Workers: 1})
	return out, nil
}

// parallel returns failed when a worker broke, in which case the caller runs
// the serial path; err is reserved for abort and timeout.
func (c *Coordinator) parallel(parent context.Context, s *Session, content string) (out []Occurrence, failed error, err error) {
	spans := partition(content, s.WorkerCount)
	if len(spans) == 0 {
		return nil, nil, nil
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	worker := c.Worker
	if worker == nil {
		worker = Find
	}

	results := make(chan Result, len(spans))
	for slot, sp := range spans {
		lead, _ := lastRunes(content[:sp.start], ContextRadius)
		tail, _ := firstRunes(content[sp.end:], ContextRadius)
		task := Task{
			Chunk:       content[sp.start:sp.end],
			ChunkOffset: sp.start,
			Keyword:     s.Keyword,
			WorkerID:    slot,
			LineNumber:  sp.line,
			Lead:        lead,
			Tail:        tail,
		}
		go func(task Task) {
			defer func() {
				if r := recover(); r != nil {
					results <- Result{WorkerID: task.WorkerID, Err: fmt.Errorf("worker %d panicked: %v", task.WorkerID, r)}
				}
			}()
			occ, werr := worker(ctx, task)
			results <- Result{WorkerID: task.WorkerID, Occurrences: occ, Err: werr}
		}(task)
	}

	ticker := time.NewTicker(c.pollInterval())
	defer ticker.Stop()
	timer := time.NewTimer(c.timeout())
	defer timer.Stop()

	parts := make([][]Occurrence, len(spans))
	found := 0
	for done := 0; done < len(spans); {
		select {
		case r := <-results:
			if r.Err != nil {
				if perr := parent.Err(); perr != nil {
					return nil, nil, fmt.Errorf("%w: %w", ErrAborted, perr)
				}
				return nil, fmt.Errorf("worker %d: %w", r.WorkerID, r.Err), nil
			}
			parts[r.WorkerID] = r.Occurrences
			found += len(r.Occurrences)
			done++
			c.report(Progress{Percent: done * 100 / len(spans), Found: found, Workers: len(spans)})
		case <-ticker.C:
			if s.Aborted() {
				return nil, nil, ErrAborted
			}
		case <-timer.C:
			s.Abort()
			return nil, nil, ErrTimeout
		case <-parent.Done():
			return nil, nil, fmt.Errorf("%w: %w", ErrAborted, parent.Err())
		}
	}
	if s.Aborted() {
		return nil, nil, ErrAborted
	}
	if found == 0 {
		return nil, nil, nil
	}

	out = make([]Occurrence, 0, found)
	for _, part := range parts {
		out = append(out, part...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out, nil, nil
}

func (c *Coordinator) report(p Progress) {
	if c.Progress != nil {
		c.Progress(p)
	}
}

func (c *Coordinator) pollInterval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return DefaultPollInterval
}

func (c *Coordinator) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c *Coordinator) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
