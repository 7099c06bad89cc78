package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"

	"kwsweep/internal/highlighter"
	"kwsweep/internal/history"
	"kwsweep/internal/search"
	"kwsweep/internal/triage"
)

type config struct {
	Theme            string `toml:"theme"`
	RenderCap        int    `toml:"render_cap"`
	HistorySize      int    `toml:"history_size"`
	UndoDepth        int    `toml:"undo_depth"`
	PollIntervalMs   int    `toml:"poll_interval_ms"`
	TimeoutSec       int    `toml:"timeout_s"`
	HighlightCache   int    `toml:"highlight_cache"`
	HighlightWorkers int    `toml:"highlight_workers"`
	EditorCmd        string `toml:"editor_cmd"`
	CloseDelayMs     int    `toml:"close_delay_ms"`
}

func defaultConfig() config {
	return config{
		Theme:            "nord",
		RenderCap:        triage.DefaultCapacity,
		HistorySize:      history.DefaultCapacity,
		UndoDepth:        100,
		PollIntervalMs:   int(search.DefaultPollInterval / time.Millisecond),
		TimeoutSec:       int(search.DefaultTimeout / time.Second),
		HighlightCache:   2048,
		HighlightWorkers: max(1, runtime.GOMAXPROCS(0)/2),
		CloseDelayMs:     600,
	}
}

// loadConfig reads path over the defaults. A missing file is only an error
// when the path was given explicitly.
func loadConfig(path string, explicit bool) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg.sanitized(), nil
}

func defaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "kwsweep", "config.toml")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "kwsweep", "config.toml")
}

func (c config) sanitized() config {
	def := defaultConfig()
	if c.RenderCap <= 0 {
		c.RenderCap = def.RenderCap
	}
	if c.HistorySize <= 0 {
		c.HistorySize = def.HistorySize
	}
	if c.UndoDepth <= 0 {
		c.UndoDepth = def.UndoDepth
	}
	if c.PollIntervalMs <= 0 {
		c.PollIntervalMs = def.PollIntervalMs
	}
	if c.TimeoutSec <= 0 {
		c.TimeoutSec = def.TimeoutSec
	}
	if c.HighlightCache <= 0 {
		c.HighlightCache = def.HighlightCache
	}
	if c.HighlightWorkers <= 0 {
		c.HighlightWorkers = def.HighlightWorkers
	}
	if c.CloseDelayMs < 0 {
		c.CloseDelayMs = 0
	}
	return c
}

func (c config) withOverrides(g *globalOptions) config {
	if g.Theme != "" {
		c.Theme = g.Theme
	}
	if g.RenderCap > 0 {
		c.RenderCap = g.RenderCap
	}
	if g.EditorCmd != "" {
		c.EditorCmd = g.EditorCmd
	}
	return c
}

func (c config) coordinator(log *slog.Logger) search.Coordinator {
	return search.Coordinator{
		PollInterval: time.Duration(c.PollIntervalMs) * time.Millisecond,
		Timeout:      time.Duration(c.TimeoutSec) * time.Second,
		Logger:       log,
	}
}

func (c config) highlighter() highlighter.Config {
	return highlighter.Config{CacheSize: c.HighlightCache, Workers: c.HighlightWorkers}
}
