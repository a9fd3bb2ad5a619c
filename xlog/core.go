package xlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const keyIgnored = ""

// xCore keeps the parts it was built from, so the same stream can be
// encoded again with another layout.
type xCore struct {
	zapcore.Core
	enabler zapcore.LevelEnabler
	ws      zapcore.WriteSyncer
	newEnc  func(zapcore.EncoderConfig) zapcore.Encoder
}

func newXCore(
	enabler zapcore.LevelEnabler,
	newEnc func(zapcore.EncoderConfig) zapcore.Encoder,
	ws zapcore.WriteSyncer,
) *xCore {
	c := &xCore{enabler: enabler, ws: ws, newEnc: newEnc}
	c.Core = zapcore.NewCore(newEnc(appLayout()), ws, enabler)
	return c
}

func (c *xCore) With(fields []zap.Field) zapcore.Core {
	clone := *c
	clone.Core = c.Core.With(fields)
	return &clone
}

func (c *xCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// relayout shares the writer and the level of c.
func (c *xCore) relayout(layout zapcore.EncoderConfig) *xCore {
	return &xCore{
		Core:    zapcore.NewCore(c.newEnc(layout), c.ws, c.enabler),
		enabler: c.enabler,
		ws:      c.ws,
		newEnc:  c.newEnc,
	}
}

func appLayout() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "lvl",
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		TimeKey:       "ts",
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		CallerKey:     "callAt",
		EncodeCaller:  zapcore.ShortCallerEncoder,
		FunctionKey:   "fn",
		NameKey:       "component",
		EncodeName:    zapcore.FullNameEncoder,
		StacktraceKey: keyIgnored,
	}
}

// componentLayout drops the caller, fx and ants callers are their own
// internals.
func componentLayout() zapcore.EncoderConfig {
	layout := appLayout()
	layout.CallerKey = keyIgnored
	layout.FunctionKey = keyIgnored
	return layout
}

// bannerLayout prints the message only.
func bannerLayout() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:    "banner",
		LevelKey:      keyIgnored,
		TimeKey:       keyIgnored,
		CallerKey:     keyIgnored,
		StacktraceKey: keyIgnored,
	}
}

// componentLogger derives a named logger printed by the component layout.
func componentLogger(logger XLogger, name string) *xLogger {
	l := &xLogger{
		logger: logger.zap().Named(name).WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			if xc, ok := core.(*xCore); ok {
				return xc.relayout(componentLayout())
			}
			return core
		})),
	}
	if parent, ok := logger.(*xLogger); ok {
		l.ctxKeys, l.encoder, l.rootCore = parent.ctxKeys, parent.encoder, parent.rootCore
	}
	return l
}
