package logger

import (
	"sync"
)

// Registry hands out component loggers derived from one root logger and
// caches them by name.
type Registry struct {
	mu      sync.RWMutex
	root    *Logger
	loggers map[string]*Logger
}

// NewRegistry creates a registry rooted at root.
func NewRegistry(root *Logger) *Registry {
	if root == nil {
		root = Nop()
	}
	return &Registry{root: root, loggers: make(map[string]*Logger)}
}

// Register stores a named logger.
func (r *Registry) Register(name string, l *Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggers[name] = l
}

// Get returns the named logger, deriving and caching a component logger
// from the root when none is registered.
func (r *Registry) Get(name string) *Logger {
	r.mu.RLock()
	l, ok := r.loggers[name]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.loggers[name]; ok {
		return l
	}
	l = r.root.WithComponent(name)
	r.loggers[name] = l
	return l
}

// Root returns the root logger.
func (r *Registry) Root() *Logger { return r.root }
