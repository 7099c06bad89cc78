package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jessevdk/go-flags"

	"kwsweep/internal/highlighter"
	"kwsweep/internal/history"
	"kwsweep/internal/logging"
	"kwsweep/internal/replace"
	"kwsweep/internal/search"
	"kwsweep/internal/textbuf"
	"kwsweep/internal/triage"
)

type globalOptions struct {
	Config    string `long:"config" description:"TOML config file (default $XDG_CONFIG_HOME/kwsweep/config.toml)"`
	Theme     string `long:"theme" description:"color theme, any chroma style (see: kwsweep themes)"`
	RenderCap int    `long:"render-cap" description:"groups displayed at once"`
	EditorCmd string `long:"editor-cmd" description:"open command, supports {file} {line} {col} {target}"`
}

type fileArg struct {
	File string `positional-arg-name:"FILE" required:"yes"`
}

// Options is the root command. The struct tags are read by go-flags.
type Options struct {
	Global globalOptions `group:"Global Options"`

	Triage     triageCmd     `command:"triage" description:"Search a file and triage the hits interactively"`
	List       listCmd       `command:"list" description:"Print the grouped hits of a keyword as YAML"`
	ReplaceAll replaceAllCmd `command:"replace-all" description:"Replace every occurrence of a keyword and save"`
	Themes     themesCmd     `command:"themes" description:"List available color themes"`
}

// app carries what every command needs besides its own flags.
type app struct {
	global *globalOptions
	log    *slog.Logger
	stdin  io.Reader
	stdout io.Writer
}

func (a *app) settings() (config, error) {
	path, explicit := a.global.Config, a.global.Config != ""
	if !explicit {
		path = defaultConfigPath()
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return cfg, err
	}
	cfg = cfg.withOverrides(a.global)
	p, err := cfg.palette()
	if err != nil {
		return cfg, fmt.Errorf("invalid theme: %w", err)
	}
	appTheme = p
	return cfg, nil
}

type triageCmd struct {
	Keyword string  `short:"k" long:"keyword" description:"start searching for this keyword right away"`
	Args    fileArg `positional-args:"yes"`

	app *app
}

func (c *triageCmd) Execute([]string) error {
	cfg, err := c.app.settings()
	if err != nil {
		return err
	}
	buf, err := textbuf.Open(c.Args.File)
	if err != nil {
		return err
	}
	buf.SetUndoDepth(cfg.UndoDepth)

	hl := highlighter.New(cfg.highlighter())
	m := newModel(cfg, c.app.log, buf, hl)
	m.searchInput.SetValue(c.Keyword)

	events, stop, err := watchFile(c.Args.File, watchQuiet)
	if err != nil {
		c.app.log.Warn("file watch unavailable", "path", c.Args.File, "err", err)
	} else {
		defer stop()
		m.watch = events
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

type listCmd struct {
	Keyword string   `short:"k" long:"keyword" required:"yes" description:"keyword to search for"`
	Ignore  []string `long:"ignore" description:"fingerprint to leave out, repeatable"`
	Args    fileArg  `positional-args:"yes"`

	app *app
}

func (c *listCmd) Execute([]string) error {
	cfg, err := c.app.settings()
	if err != nil {
		return err
	}
	buf, err := textbuf.Open(c.Args.File)
	if err != nil {
		return err
	}

	ignore := triage.NewIgnoreSet()
	for _, fp := range c.Ignore {
		ignore.Add(fp)
	}

	content := buf.Content()
	s, err := search.NewSession(c.Keyword, content)
	if err != nil {
		return err
	}
	sess, err := triage.Start(context.Background(), cfg.coordinator(c.app.log), s, content, ignore,
		triage.Options{Capacity: cfg.RenderCap, Logger: c.app.log})
	if err != nil {
		return err
	}
	return writeYAML(c.app.stdout, buildReport(c.Args.File, s.WorkerCount, sess))
}

type replaceAllCmd struct {
	Keyword     string  `short:"k" long:"keyword" required:"yes" description:"keyword to replace"`
	Replacement string  `short:"r" long:"replacement" required:"yes" description:"replacement text"`
	Yes         bool    `short:"y" long:"yes" description:"do not ask for confirmation"`
	Output      string  `short:"o" long:"output" description:"write the result here instead of FILE"`
	Args        fileArg `positional-args:"yes"`

	app *app
}

func (c *replaceAllCmd) Execute([]string) error {
	cfg, err := c.app.settings()
	if err != nil {
		return err
	}
	buf, err := textbuf.Open(c.Args.File)
	if err != nil {
		return err
	}

	engine := replace.NewEngine(buf, history.NewMapping(cfg.HistorySize), c.app.log)
	plan, err := engine.PrepareReplaceAll(c.Keyword, c.Replacement)
	if err != nil {
		return err
	}
	if plan.Count == 0 {
		fmt.Fprintf(c.app.stdout, "no occurrences of %q in %s\n", plan.Keyword, c.Args.File)
		return nil
	}

	if !c.Yes {
		ok, err := confirm(c.app.stdin, c.app.stdout,
			fmt.Sprintf("replace %d occurrence(s) of %q with %q in %s? [y/N] ", plan.Count, plan.Keyword, plan.Replacement, c.Args.File))
		if err != nil {
			return err
		}
		if !ok {
			return replace.ErrNotConfirmed
		}
	}

	n, err := engine.ApplyReplaceAll(plan.Confirm())
	if err != nil {
		return err
	}

	out := c.Args.File
	if c.Output != "" {
		out = c.Output
	}
	if err := buf.SaveAs(out); err != nil {
		return fmt.Errorf("save %s: %w", out, err)
	}

	return writeYAML(c.app.stdout, replaceSummary{
		File:        c.Args.File,
		Output:      out,
		Keyword:     plan.Keyword,
		Replacement: plan.Replacement,
		Count:       n,
		History:     engine.History().Records(),
	})
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

type themesCmd struct {
	app *app
}

func (c *themesCmd) Execute([]string) error {
	if _, err := c.app.settings(); err != nil {
		return err
	}
	for _, name := range themeNames() {
		marker := " "
		if name == appTheme.Name {
			marker = "*"
		}
		fmt.Fprintf(c.app.stdout, "%s %s\n", marker, name)
	}
	return nil
}

func newParser(a *app) (*flags.Parser, *Options) {
	opts := &Options{}
	a.global = &opts.Global
	opts.Triage.app = a
	opts.List.app = a
	opts.ReplaceAll.app = a
	opts.Themes.app = a

	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "kwsweep"
	return parser, opts
}

func run(args []string, stdin io.Reader, stdout io.Writer, log *slog.Logger) error {
	parser, _ := newParser(&app{log: log, stdin: stdin, stdout: stdout})
	_, err := parser.ParseArgs(args)
	return err
}

func main() {
	log, closer, err := logging.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file: %v\n", err)
	}
	defer closer.Close()

	err = run(os.Args[1:], os.Stdin, os.Stdout, log)
	if err == nil {
		return
	}
	var ferr *flags.Error
	if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
		fmt.Fprintln(os.Stdout, ferr.Message)
		return
	}
	log.Error("command failed", "err", err)
	fmt.Fprintf(os.Stderr, "kwsweep: %v\n", err)
	closer.Close()
	os.Exit(1)
}
