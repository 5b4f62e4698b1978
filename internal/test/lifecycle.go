package test

import (
	"go.uber.org/fx"
)

// LifecycleRecorder collects fx hooks so tests can run them directly instead
// of spinning up a full fx app.
type LifecycleRecorder struct {
	Hooks []fx.Hook
}

// Append stores the hook for later invocation.
func (l *LifecycleRecorder) Append(h fx.Hook) {
	l.Hooks = append(l.Hooks, h)
}
