package services

import "sync"

// OperationGuard serializes the mutating operations (commit, undo). Only one
// may be in flight at a time; a second attempt is rejected immediately rather
// than queued, mirroring the single in-progress flag the operators rely on.
type OperationGuard struct {
	mu         sync.Mutex
	inProgress bool
}

// NewOperationGuard creates a guard shared between the committer and the undo engine.
func NewOperationGuard() *OperationGuard {
	return &OperationGuard{}
}

// TryBegin marks an operation as in flight. It returns false without blocking
// when another operation already holds the guard.
func (g *OperationGuard) TryBegin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inProgress {
		return false
	}
	g.inProgress = true
	return true
}

// End releases the guard. Always called via defer so errors cannot leave the
// flag stuck.
func (g *OperationGuard) End() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inProgress = false
}

// InProgress reports whether an operation currently holds the guard.
func (g *OperationGuard) InProgress() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inProgress
}
