// Package notify surfaces user-visible success and error messages.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Sink receives user-facing messages.
type Sink interface {
	Success(msg string)
	Error(msg string)
}

const (
	ColorSuccess = "success"
	ColorError   = "error"
)

// Message is the last thing shown to the user.
type Message struct {
	Text  string
	Color string
	Shown bool
}

// Snackbar remembers the most recent message. Safe for concurrent use.
type Snackbar struct {
	mu   sync.Mutex
	last Message
}

func (s *Snackbar) Success(msg string) { s.show(msg, ColorSuccess) }
func (s *Snackbar) Error(msg string)   { s.show(msg, ColorError) }

func (s *Snackbar) show(msg, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = Message{Text: msg, Color: color, Shown: true}
}

// Last returns the most recent message.
func (s *Snackbar) Last() Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Dismiss hides the current message.
func (s *Snackbar) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last.Shown = false
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3FB950")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F85149")).Bold(true)
)

// Printer writes one styled line per message to w.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Success(msg string) { p.print(successStyle.Render("✓ " + msg)) }
func (p *Printer) Error(msg string)   { p.print(errorStyle.Render("✗ " + msg)) }

func (p *Printer) print(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, line)
}

// Multi fans a message out to several sinks.
type Multi []Sink

func (m Multi) Success(msg string) {
	for _, s := range m {
		s.Success(msg)
	}
}

func (m Multi) Error(msg string) {
	for _, s := range m {
		s.Error(msg)
	}
}
