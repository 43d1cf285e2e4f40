package ui

import (
	"fmt"
	"os"
	"sync"
	"time"
)

var frames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// StatusLine renders a single live line on stderr showing the latest
// capture progress message while the watcher runs.
type StatusLine struct {
	mu   sync.Mutex
	msg  string
	done chan struct{}
}

func NewStatusLine() *StatusLine {
	return &StatusLine{}
}

// Start begins rendering with the given message.
func (s *StatusLine) Start(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.run()
}

// Update replaces the displayed message. Safe to call from the capture
// goroutines.
func (s *StatusLine) Update(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// Stop halts rendering and clears the line.
func (s *StatusLine) Stop() {
	s.mu.Lock()
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	s.mu.Unlock()

	fmt.Fprintf(os.Stderr, "\r\033[K")
}

func (s *StatusLine) run() {
	tick := time.NewTicker(120 * time.Millisecond)
	defer tick.Stop()

	i := 0
	for {
		select {
		case <-s.done:
			return
		case <-tick.C:
			s.mu.Lock()
			msg := s.msg
			s.mu.Unlock()
			fmt.Fprintf(os.Stderr, "\r\033[K%c %s", frames[i%len(frames)], msg)
			i++
		}
	}
}
