package logger

import "sync"

// components caches one logger per component name. Entries are derived from
// the global logger on first use, or set explicitly with Register. Both are
// dropped when the global logger changes.
var components sync.Map // map[string]*Logger

// Register pins the logger returned by Get for a component.
func Register(component string, l *Logger) {
	components.Store(component, l)
}

// Get returns the logger for a component, deriving and caching it from the
// global logger the first time the component is asked for.
func Get(component string) *Logger {
	if l, ok := components.Load(component); ok {
		return l.(*Logger)
	}
	l, _ := components.LoadOrStore(component, GetGlobalLogger().WithComponent(component))
	return l.(*Logger)
}

func resetRegistry() {
	components.Clear()
}
