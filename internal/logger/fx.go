package logger

import (
	"go.uber.org/fx/fxevent"
)

// FxEventLogger routes the dependency graph lifecycle events through our
// logger instead of fx's default stderr printer
func (l *Logger) FxEventLogger() fxevent.Logger {
	return &fxevent.ZapLogger{Logger: l.Desugar().Named("fx")}
}
