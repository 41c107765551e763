// Package logging holds the package-level loggers of the bridge packages.
package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var nop = zap.NewNop()

// Slot is a replaceable package logger. The zero value logs nothing and is
// safe for concurrent Get and Set.
type Slot struct {
	p atomic.Pointer[zap.Logger]
}

// Get returns the installed logger, or a no-op logger.
func (s *Slot) Get() *zap.Logger {
	if l := s.p.Load(); l != nil {
		return l
	}
	return nop
}

// Set installs l. Nil restores the no-op logger.
func (s *Slot) Set(l *zap.Logger) {
	s.p.Store(l)
}
