package xlog

import (
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FxXLogger prints the fx application lifecycle events.
type FxXLogger struct {
	logger XLogger
}

func NewFxXLogger(logger XLogger) *FxXLogger {
	return &FxXLogger{
		logger: componentLogger(logger, "Fx"),
	}
}

// fxRecord is one event rendered for the log. A non nil err always logs
// at error level.
type fxRecord struct {
	lvl    zapcore.Level
	msg    string
	err    error
	fields []zap.Field
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}
	for _, rec := range describeFxEvent(event) {
		switch {
		case rec.err != nil:
			l.logger.Error(rec.err, rec.msg+" failed", rec.fields...)
		case rec.lvl == zapcore.InfoLevel:
			l.logger.Info(rec.msg, rec.fields...)
		case rec.lvl == zapcore.WarnLevel:
			l.logger.Warn(rec.msg, rec.fields...)
		default:
			l.logger.Debug(rec.msg, rec.fields...)
		}
	}
}

func describeFxEvent(event fxevent.Event) []fxRecord {
	debug := func(msg string, err error, fields ...zap.Field) []fxRecord {
		return []fxRecord{{lvl: zapcore.DebugLevel, msg: msg, err: err, fields: fields}}
	}
	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		return debug("hook start", nil, hookFields(e.FunctionName, e.CallerName, 0)...)
	case *fxevent.OnStartExecuted:
		return debug("hook start", e.Err, hookFields(e.FunctionName, e.CallerName, e.Runtime.Seconds())...)
	case *fxevent.OnStopExecuting:
		return debug("hook stop", nil, hookFields(e.FunctionName, e.CallerName, 0)...)
	case *fxevent.OnStopExecuted:
		return debug("hook stop", e.Err, hookFields(e.FunctionName, e.CallerName, e.Runtime.Seconds())...)
	case *fxevent.Supplied:
		return debug("supply", e.Err, zap.String("type", e.TypeName), moduleField(e.ModuleName))
	case *fxevent.Provided:
		return outputRecords("provide", e.OutputTypeNames, e.Err,
			zap.String("constructor", e.ConstructorName),
			zap.Bool("private", e.Private),
			moduleField(e.ModuleName),
		)
	case *fxevent.Decorated:
		return outputRecords("decorate", e.OutputTypeNames, e.Err,
			zap.String("decorator", e.DecoratorName),
			moduleField(e.ModuleName),
		)
	case *fxevent.Invoking:
		return debug("invoke", nil, zap.String("function", e.FunctionName), moduleField(e.ModuleName))
	case *fxevent.Invoked:
		if e.Err == nil {
			return nil
		}
		return debug("invoke", e.Err, zap.String("function", e.FunctionName), zap.String("trace", e.Trace))
	case *fxevent.Stopping:
		return []fxRecord{{lvl: zapcore.InfoLevel, msg: "stopping", fields: []zap.Field{zap.Stringer("signal", e.Signal)}}}
	case *fxevent.Stopped:
		return debug("stopped", e.Err)
	case *fxevent.RollingBack:
		return []fxRecord{{lvl: zapcore.WarnLevel, msg: "start failed, rolling back", fields: []zap.Field{zap.NamedError("cause", e.StartErr)}}}
	case *fxevent.RolledBack:
		return debug("rolled back", e.Err)
	case *fxevent.Started:
		return debug("started", e.Err)
	case *fxevent.LoggerInitialized:
		return debug("logger initialized", e.Err, zap.String("constructor", e.ConstructorName))
	default:
	}
	return nil
}

// outputRecords logs one record per provided type, or the error alone.
func outputRecords(msg string, types []string, err error, fields ...zap.Field) []fxRecord {
	if err != nil {
		return []fxRecord{{msg: msg, err: err, fields: fields}}
	}
	recs := make([]fxRecord, 0, len(types))
	for _, typ := range types {
		recs = append(recs, fxRecord{
			lvl:    zapcore.DebugLevel,
			msg:    msg,
			fields: append([]zap.Field{zap.String("type", typ)}, fields...),
		})
	}
	return recs
}

func hookFields(fn, caller string, seconds float64) []zap.Field {
	fields := []zap.Field{
		zap.String("function", fn),
		zap.String("caller", caller),
	}
	if seconds > 0 {
		fields = append(fields, zap.Float64("seconds", seconds))
	}
	return fields
}

func moduleField(name string) zap.Field {
	if len(name) == 0 {
		return zap.Skip()
	}
	return zap.String("module", name)
}
