package emitter

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"fortio.org/log"

	"github.com/gubarz/snipgen/internal/config"
	"github.com/gubarz/snipgen/internal/snippet"
)

// ============================================================================
// Clipboard Interface
// ============================================================================

// Clipboard defines the interface for clipboard operations
type Clipboard interface {
	Copy(text string) error
}

// systemClipboard implements Clipboard using system commands
type systemClipboard struct {
	fallback io.Writer
}

// Copy copies text to the system clipboard
func (c *systemClipboard) Copy(text string) error {
	cmd := c.findClipboardCommand()
	if cmd == nil {
		// No clipboard tool found, just print
		_, err := fmt.Fprintln(c.fallback, text)
		return err
	}
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// findClipboardCommand returns the appropriate clipboard command for the system
func (c *systemClipboard) findClipboardCommand() *exec.Cmd {
	switch {
	case commandExists("wl-copy"):
		return exec.Command("wl-copy")
	case commandExists("xclip"):
		return exec.Command("xclip", "-selection", "clipboard")
	case commandExists("xsel"):
		return exec.Command("xsel", "--clipboard", "--input")
	case commandExists("pbcopy"):
		return exec.Command("pbcopy")
	default:
		return nil
	}
}

// commandExists checks if a command is available in PATH
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ============================================================================
// Output Modes
// ============================================================================

// OutputMode represents where formatted snippets go
type OutputMode string

const (
	OutputFile  OutputMode = "file"
	OutputPrint OutputMode = "print"
	OutputCopy  OutputMode = "copy"
)

// ParseOutputMode validates a mode name
func ParseOutputMode(s string) (OutputMode, error) {
	switch mode := OutputMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case OutputFile, OutputPrint, OutputCopy:
		return mode, nil
	case "":
		return OutputFile, nil
	default:
		return "", fmt.Errorf("unsupported output mode: %s (supported: file, print, copy)", s)
	}
}

// ============================================================================
// Emitter
// ============================================================================

// Emitter writes a finished collection
type Emitter struct {
	output      string
	debugOutput string
	mode        OutputMode
	stdout      io.Writer
	clipboard   Clipboard
}

// NewEmitter creates an emitter from the current configuration
func NewEmitter() (*Emitter, error) {
	mode, err := ParseOutputMode(config.GetOutputMode())
	if err != nil {
		return nil, err
	}
	return &Emitter{
		output:      config.GetOutput(),
		debugOutput: config.GetDebugOutput(),
		mode:        mode,
		stdout:      os.Stdout,
		clipboard:   &systemClipboard{fallback: os.Stdout},
	}, nil
}

// WithClipboard sets a custom clipboard implementation (useful for testing)
func (e *Emitter) WithClipboard(c Clipboard) *Emitter {
	e.clipboard = c
	return e
}

// WithStdout redirects print mode output
func (e *Emitter) WithStdout(w io.Writer) *Emitter {
	e.stdout = w
	return e
}

// WithPaths overrides the output and fallback paths
func (e *Emitter) WithPaths(output, debugOutput string) *Emitter {
	e.output = output
	e.debugOutput = debugOutput
	return e
}

// WithMode overrides the output mode
func (e *Emitter) WithMode(mode OutputMode) *Emitter {
	e.mode = mode
	return e
}

// Emit writes c if it is free of errors.
// When the assembled text does not parse, the raw text goes to the fallback
// path instead and ErrMalformedJSON is returned.
func (e *Emitter) Emit(c *snippet.Collection) error {
	if err := c.Err(); err != nil {
		return fmt.Errorf("refusing to write %s: %w", e.output, err)
	}

	raw := c.Literal()
	formatted, err := Format([]byte(raw))
	if err != nil {
		if werr := writeFile(e.debugOutput, []byte(raw)); werr != nil {
			return fmt.Errorf("%w; writing %s: %v", err, e.debugOutput, werr)
		}
		return fmt.Errorf("%w, raw output written to %s", err, e.debugOutput)
	}

	if err := e.Output(string(formatted)); err != nil {
		return err
	}
	log.Infof("Emitted %d snippets (%s)", len(c.Entries), e.describe())
	return nil
}

// EmitEntry outputs a single entry as a formatted JSON object.
// File mode has no sensible target for one entry, so it prints instead.
func (e *Emitter) EmitEntry(entry *snippet.Entry) error {
	formatted, err := Format([]byte("{" + entry.Literal() + "}"))
	if err != nil {
		return err
	}
	mode := e.mode
	if mode == OutputFile {
		mode = OutputPrint
	}
	return e.OutputWithMode(string(formatted), mode)
}

// Output handles text based on the configured mode
func (e *Emitter) Output(text string) error {
	return e.OutputWithMode(text, e.mode)
}

// OutputWithMode handles text with an explicit mode
func (e *Emitter) OutputWithMode(text string, mode OutputMode) error {
	switch mode {
	case OutputCopy:
		return e.clipboard.Copy(text)
	case OutputPrint:
		_, err := fmt.Fprintln(e.stdout, text)
		return err
	default: // file
		return writeFile(e.output, []byte(text))
	}
}

func (e *Emitter) describe() string {
	if e.mode == OutputFile {
		return e.output
	}
	return string(e.mode)
}

// writeFile writes data to path, creating the parent directory if needed
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
