package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const terminalEditorTemplate = "+{line} {file}"

// openLocation opens file at line:col. An explicit editor command is started
// detached; $VISUAL or $EDITOR takes over the terminal until it exits; the
// system opener is the last resort.
func openLocation(path string, line int, col int, editorCmd string) (tea.Cmd, error) {
	target := fmt.Sprintf("%s:%d:%d", path, line, col)

	if strings.TrimSpace(editorCmd) != "" {
		name, args, err := buildEditorCommand(editorCmd, path, line, col, target)
		if err != nil {
			return nil, err
		}
		if _, err := exec.LookPath(name); err != nil {
			return nil, fmt.Errorf("editor command not found: %s", name)
		}
		return nil, exec.Command(name, args...).Start()
	}

	if editor := terminalEditor(); editor != "" {
		name, args, err := buildEditorCommand(editor+" "+terminalEditorTemplate, path, line, col, target)
		if err != nil {
			return nil, err
		}
		return tea.ExecProcess(exec.Command(name, args...), func(err error) tea.Msg {
			return editorDoneMsg{err: err}
		}), nil
	}

	commands, unavailable := openFileCommands(path)
	if found, err := runFirstAvailableCommand(commands, runCommandStart); found {
		return nil, err
	}
	return nil, unavailable
}

func terminalEditor() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	return ""
}

func buildEditorCommand(template string, file string, line int, col int, target string) (string, []string, error) {
	parts, err := splitCommandLine(strings.TrimSpace(template))
	if err != nil {
		return "", nil, err
	}
	if len(parts) == 0 {
		return "", nil, fmt.Errorf("editor command is empty")
	}

	repl := strings.NewReplacer(
		"{file}", file,
		"{line}", fmt.Sprintf("%d", line),
		"{col}", fmt.Sprintf("%d", col),
		"{target}", target,
	)
	for i := range parts {
		parts[i] = repl.Replace(parts[i])
	}

	return parts[0], parts[1:], nil
}

func splitCommandLine(input string) ([]string, error) {
	var parts []string
	var current strings.Builder

	tokenActive := false
	inSingle := false
	inDouble := false

	flush := func() {
		if !tokenActive {
			return
		}
		parts = append(parts, current.String())
		current.Reset()
		tokenActive = false
	}

	for _, r := range input {
		switch r {
		case '\'':
			if inDouble {
				current.WriteRune(r)
				tokenActive = true
				continue
			}
			inSingle = !inSingle
			tokenActive = true
		case '"':
			if inSingle {
				current.WriteRune(r)
				tokenActive = true
				continue
			}
			inDouble = !inDouble
			tokenActive = true
		case ' ', '\t', '\n', '\r':
			if inSingle || inDouble {
				current.WriteRune(r)
				tokenActive = true
				continue
			}
			flush()
		default:
			current.WriteRune(r)
			tokenActive = true
		}
	}

	if inSingle || inDouble {
		return nil, fmt.Errorf("editor command has unclosed quote")
	}

	flush()
	return parts, nil
}

func copyToClipboard(s string) error {
	switch runtime.GOOS {
	case "darwin":
		return pipeStringToCommand(s, "pbcopy")
	case "linux":
		if found, err := runFirstAvailableCommand([][]string{
			{"wl-copy"},
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		}, func(name string, args []string) error {
			return pipeStringToCommand(s, name, args...)
		}); found {
			return err
		}
		return fmt.Errorf("no clipboard utility found (install wl-copy, xclip, or xsel)")
	case "windows":
		return pipeStringToCommand(s, "clip")
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

func openFileCommands(path string) ([][]string, error) {
	switch runtime.GOOS {
	case "darwin":
		return [][]string{{"open", path}}, fmt.Errorf("open is unavailable")
	case "linux":
		return [][]string{{"xdg-open", path}}, fmt.Errorf("xdg-open is unavailable, set $EDITOR or --editor-cmd")
	case "windows":
		return [][]string{{"explorer.exe", path}, {"cmd", "/C", "start", "", path}}, fmt.Errorf("explorer is unavailable")
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

func runCommandStart(name string, args []string) error {
	return exec.Command(name, args...).Start()
}

func runFirstAvailableCommand(candidates [][]string, run func(name string, args []string) error) (bool, error) {
	for _, candidate := range candidates {
		if len(candidate) == 0 {
			continue
		}
		if _, err := exec.LookPath(candidate[0]); err != nil {
			continue
		}
		return true, run(candidate[0], candidate[1:])
	}
	return false, nil
}

func pipeStringToCommand(input string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	in, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	if _, err := io.WriteString(in, input); err != nil {
		_ = in.Close()
		_ = cmd.Wait()
		return err
	}
	if err := in.Close(); err != nil {
		_ = cmd.Wait()
		return err
	}
	return cmd.Wait()
}
