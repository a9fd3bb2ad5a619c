package xlog

import (
	"go.uber.org/zap"
)

// AntsXLogger adapts XLogger to the ants pool logger, ants only logs the
// recovered task panics.
type AntsXLogger struct {
	logger *zap.SugaredLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Errorf(format, args...)
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	return &AntsXLogger{
		logger: componentLogger(logger, "Ants").zap().Sugar(),
	}
}
