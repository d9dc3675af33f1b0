package ui

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// Spinner shows progress on stderr. It does nothing when stderr is not a
// terminal.
type Spinner struct {
	s *spinner.Spinner
}

func NewSpinner(suffix string) *Spinner {
	return newSpinner(os.Stderr, suffix, term.IsTerminal(int(os.Stderr.Fd())))
}

func newSpinner(w io.Writer, suffix string, enabled bool) *Spinner {
	if !enabled {
		return &Spinner{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + suffix
	return &Spinner{s: s}
}

func (sp *Spinner) Start() {
	if sp.s != nil {
		sp.s.Start()
	}
}

func (sp *Spinner) Stop() {
	if sp.s != nil {
		sp.s.Stop()
	}
}

// Update replaces the message shown next to the spinner.
func (sp *Spinner) Update(suffix string) {
	if sp.s != nil {
		sp.s.Lock()
		sp.s.Suffix = " " + suffix
		sp.s.Unlock()
	}
}
