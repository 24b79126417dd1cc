package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
)

// Hook is a shutdown callback registered while building the App.
type Hook func(ctx context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// OnClose registers a hook that runs during Close. Hooks run in reverse
// registration order.
func (a *App) OnClose(name string, hook Hook) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onClose = append(a.onClose, namedHook{name: name, fn: hook})
}

// runHooks runs every hook, last first, and joins their errors.
func runHooks(ctx context.Context, hooks []namedHook) error {
	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i].fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hooks[i].name, err))
		}
	}
	return stderrors.Join(errs...)
}
