package renderer

import (
	"github.com/charmbracelet/log"
)

type release struct {
	name string
	fn   func()
}

// releaseStack records how to destroy every created object. unwind runs the entries in reverse creation order,
// so each object goes before whatever it was created from.
type releaseStack struct {
	entries []release
	log     *log.Logger
}

func (s *releaseStack) push(name string, fn func()) {
	s.entries = append(s.entries, release{name: name, fn: fn})
}

func (s *releaseStack) len() int {
	return len(s.entries)
}

// unwind empties the stack. Calling it again is a no-op.
func (s *releaseStack) unwind() {
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if s.log != nil {
			s.log.Debug("release", "object", e.name)
		}
		e.fn()
	}
	s.entries = nil
}
