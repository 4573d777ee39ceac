// Package clipboard connects the table to the system clipboard.
package clipboard

import (
	"sync"

	"github.com/atotto/clipboard"
	"github.com/muesli/termenv"

	"github.com/zjrosen/tabula/internal/datatable"
	"github.com/zjrosen/tabula/internal/log"
)

var (
	_ datatable.Clipboard = (*System)(nil)
	_ datatable.Clipboard = (*Memory)(nil)
)

// System reads and writes the OS clipboard. Where no clipboard utility is
// available, writes go to the terminal as an OSC 52 sequence and reads return
// the last text written by this process.
type System struct {
	mu       sync.Mutex
	last     string
	out      *termenv.Output
	readAll  func() (string, error)
	writeAll func(string) error
}

// NewSystem returns the system clipboard.
func NewSystem() *System {
	return &System{
		out:      termenv.DefaultOutput(),
		readAll:  clipboard.ReadAll,
		writeAll: clipboard.WriteAll,
	}
}

// Supported reports whether a native clipboard utility was found.
func (s *System) Supported() bool { return !clipboard.Unsupported }

// ReadText implements datatable.Clipboard.
func (s *System) ReadText() (string, error) {
	if !s.Supported() {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.last, nil
	}
	text, err := s.readAll()
	if err != nil {
		log.ErrorErr(log.CatClipboard, "Failed to read clipboard", err)
		return "", err
	}
	return text, nil
}

// WriteText implements datatable.Clipboard.
func (s *System) WriteText(text string) error {
	s.mu.Lock()
	s.last = text
	s.mu.Unlock()
	if !s.Supported() {
		s.out.Copy(text)
		log.Debug(log.CatClipboard, "wrote clipboard via OSC 52", "bytes", len(text))
		return nil
	}
	if err := s.writeAll(text); err != nil {
		log.ErrorErr(log.CatClipboard, "Failed to write clipboard", err)
		return err
	}
	return nil
}

// Memory is an in-process clipboard used when the system clipboard is
// disabled and in tests.
type Memory struct {
	mu   sync.Mutex
	text string
	// ReadErr, when set, is returned by ReadText.
	ReadErr error
}

// ReadText implements datatable.Clipboard.
func (m *Memory) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return "", m.ReadErr
	}
	return m.text, nil
}

// WriteText implements datatable.Clipboard.
func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	return nil
}
