// Package xfile manages the text files a program opens with OPENFILE.
//
// A file is addressed by its name and has at most one open handle at a time.
// READ and RANDOM handles load the whole file as lines; WRITE and APPEND
// handles write one line per call.
package xfile

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Mode is the access mode of an open file.
type Mode int

const (
	READ Mode = iota
	WRITE
	APPEND
	RANDOM
)

func (m Mode) String() string {
	switch m {
	case READ:
		return "READ"
	case WRITE:
		return "WRITE"
	case APPEND:
		return "APPEND"
	case RANDOM:
		return "RANDOM"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a mode keyword, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(s) {
	case "READ":
		return READ, nil
	case "WRITE":
		return WRITE, nil
	case "APPEND":
		return APPEND, nil
	case "RANDOM":
		return RANDOM, nil
	}
	return 0, fmt.Errorf("unknown file mode %q", s)
}

var (
	ErrAlreadyOpen  = errors.New("file is already open")
	ErrNotOpen      = errors.New("file is not open")
	ErrModeMismatch = errors.New("file is not open in the required mode")
	ErrEndOfFile    = errors.New("read past the end of the file")
)

// XFile is one open handle.
type XFile struct {
	Name    string
	Mode    Mode
	path    string
	content []string
	cursor  int
	w       *os.File
}

// Manager owns every open handle of one interpreter.
type Manager struct {
	dir     string
	handles map[string]*XFile
	logger  *slog.Logger
}

// NewManager creates a manager resolving relative names against dir
// (the process working directory when dir is empty).
func NewManager(dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{dir: dir, handles: make(map[string]*XFile), logger: logger}
}

func (m *Manager) resolve(name string) string {
	if filepath.IsAbs(name) || m.dir == "" {
		return name
	}
	return filepath.Join(m.dir, name)
}

// Open opens name in the given mode.
func (m *Manager) Open(name string, mode Mode) error {
	if _, ok := m.handles[name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyOpen, name)
	}
	f := &XFile{Name: name, Mode: mode, path: m.resolve(name)}
	switch mode {
	case READ:
		lines, err := readLines(f.path)
		if err != nil {
			return err
		}
		f.content = lines
	case RANDOM:
		lines, err := readLines(f.path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		f.content = lines
	case WRITE:
		w, err := os.Create(f.path)
		if err != nil {
			return err
		}
		f.w = w
	case APPEND:
		w, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		f.w = w
	}
	m.handles[name] = f
	m.logger.Debug("file opened", "file", name, "mode", mode)
	return nil
}

func readLines(path string) ([]string, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	var lines []string
	scanner := bufio.NewScanner(fp)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}

// handle returns the open handle of name, which must be in one of modes.
func (m *Manager) handle(name string, modes ...Mode) (*XFile, error) {
	f, ok := m.handles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotOpen, name)
	}
	for _, mode := range modes {
		if f.Mode == mode {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s is open for %s", ErrModeMismatch, name, f.Mode)
}

// Close closes name. RANDOM content is written back to disk.
func (m *Manager) Close(name string) error {
	f, ok := m.handles[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotOpen, name)
	}
	delete(m.handles, name)
	m.logger.Debug("file closed", "file", name, "mode", f.Mode)
	return f.close()
}

func (f *XFile) close() error {
	switch f.Mode {
	case WRITE, APPEND:
		return f.w.Close()
	case RANDOM:
		var b strings.Builder
		for _, line := range f.content {
			b.WriteString(line)
			b.WriteString("\n")
		}
		return os.WriteFile(f.path, []byte(b.String()), 0o644)
	}
	return nil
}

// CloseAll closes every open handle, in name order, and reports the first error.
func (m *Manager) CloseAll() error {
	names := make([]string, 0, len(m.handles))
	for name := range m.handles {
		names = append(names, name)
	}
	sort.Strings(names)

	var first error
	for _, name := range names {
		if err := m.Close(name); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// IsOpen reports whether name has an open handle.
func (m *Manager) IsOpen(name string) bool {
	_, ok := m.handles[name]
	return ok
}

// ReadLine returns the line under the cursor of a READ handle and advances.
func (m *Manager) ReadLine(name string) (string, error) {
	f, err := m.handle(name, READ)
	if err != nil {
		return "", err
	}
	if f.cursor >= len(f.content) {
		return "", fmt.Errorf("%w: %s", ErrEndOfFile, name)
	}
	line := f.content[f.cursor]
	f.cursor++
	return line, nil
}

// EOF reports whether the cursor of a READ handle is past the last line.
func (m *Manager) EOF(name string) (bool, error) {
	f, err := m.handle(name, READ)
	if err != nil {
		return false, err
	}
	return f.cursor >= len(f.content), nil
}

// WriteLine writes text and a line terminator to a WRITE or APPEND handle.
func (m *Manager) WriteLine(name, text string) error {
	f, err := m.handle(name, WRITE, APPEND)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f.w, text)
	return err
}

// Seek moves the cursor of a RANDOM handle to a 1-based record address.
func (m *Manager) Seek(name string, address int64) error {
	f, err := m.handle(name, RANDOM)
	if err != nil {
		return err
	}
	if address < 1 {
		return fmt.Errorf("record address %d is out of range", address)
	}
	f.cursor = int(address - 1)
	return nil
}

// GetRecord returns the record under the cursor of a RANDOM handle.
// Records that were never written read as empty.
func (m *Manager) GetRecord(name string) (string, error) {
	f, err := m.handle(name, RANDOM)
	if err != nil {
		return "", err
	}
	if f.cursor >= len(f.content) {
		return "", nil
	}
	return f.content[f.cursor], nil
}

// PutRecord replaces the record under the cursor of a RANDOM handle,
// padding with empty records as needed.
func (m *Manager) PutRecord(name, text string) error {
	f, err := m.handle(name, RANDOM)
	if err != nil {
		return err
	}
	for len(f.content) <= f.cursor {
		f.content = append(f.content, "")
	}
	f.content[f.cursor] = text
	return nil
}
