package xlog

import (
	"context"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xrbtree/lib/infra"
)

var printBanner = sync.Once{}

// xLogger is wrapper logger of Uber zap logger.
type xLogger struct {
	logger   *zap.Logger
	ctxKeys  []string // sorted, read only after built
	encoder  LogEncoderType
	rootCore *xCore
}

func (l *xLogger) zap() *zap.Logger {
	return l.logger
}

func (l *xLogger) Sync() error {
	return l.logger.Sync()
}

// Banner is printed once per process, without level, time or caller.
func (l *xLogger) Banner(banner Banner) {
	if l.rootCore == nil || banner == nil {
		return
	}
	printBanner.Do(func() {
		core := zapcore.NewCore(l.rootCore.newEnc(bannerLayout()), l.rootCore.ws, zapcore.InfoLevel)
		text := banner.JSON()
		if l.encoder == PlainText {
			text = banner.PlainText()
		}
		zap.New(core).Info(text)
	})
}

func (l *xLogger) Debug(msg string, fields ...zap.Field) {
	l.logger.Debug(msg, fields...)
}

func (l *xLogger) Info(msg string, fields ...zap.Field) {
	l.logger.Info(msg, fields...)
}

func (l *xLogger) Warn(msg string, fields ...zap.Field) {
	l.logger.Warn(msg, fields...)
}

func (l *xLogger) Error(err error, msg string, fields ...zap.Field) {
	if err != nil {
		fields = append([]zap.Field{zap.String("error", err.Error())}, fields...)
	}
	l.logger.Error(msg, fields...)
}

func (l *xLogger) DebugContext(ctx context.Context, msg string, fields ...zap.Field) {
	if ce := l.logger.Check(zapcore.DebugLevel, msg); ce != nil {
		ce.Write(append(l.contextFields(ctx), fields...)...)
	}
}

func (l *xLogger) InfoContext(ctx context.Context, msg string, fields ...zap.Field) {
	if ce := l.logger.Check(zapcore.InfoLevel, msg); ce != nil {
		ce.Write(append(l.contextFields(ctx), fields...)...)
	}
}

func (l *xLogger) ErrorStackContext(ctx context.Context, err error, msg string, fields ...zap.Field) {
	if ce := l.logger.Check(zapcore.ErrorLevel, msg); ce != nil {
		newFields := append(l.contextFields(ctx), errorStackField(err))
		ce.Write(append(newFields, fields...)...)
	}
}

// contextFields reads the configured keys in order. Absent values are
// left out.
func (l *xLogger) contextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, len(l.ctxKeys)+2)
	if ctx == nil {
		return fields
	}
	for _, key := range l.ctxKeys {
		if v := ctx.Value(ContextKey(key)); v != nil {
			fields = append(fields, zap.Any(key, v))
		}
	}
	return fields
}

// errorStackField inlines the frames of an infra.ErrorStack. Other errors,
// wrapped stacks included, are logged by their message only.
func errorStackField(err error) zap.Field {
	if err == nil {
		return zap.Skip()
	}
	if es, ok := err.(infra.ErrorStack); ok && es != nil {
		return zap.Inline(es)
	}
	return zap.String("error", err.Error())
}

type loggerCfg struct {
	ws      zapcore.WriteSyncer
	encoder LogEncoderType
	level   *zapcore.Level
	ctxKeys []string
}

type XLoggerOption func(*loggerCfg) error

// NewXLogger panics on an invalid option. Without WithXLoggerLevel the
// level is read from XLOG_LVL.
func NewXLogger(opts ...XLoggerOption) XLogger {
	cfg := &loggerCfg{encoder: JSON}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(cfg); err != nil {
			panic(err)
		}
	}
	if cfg.ws == nil {
		cfg.ws = zapcore.Lock(os.Stdout)
	}
	lvl := ParseLogLevel(os.Getenv("XLOG_LVL")).zapLevel()
	if cfg.level != nil {
		lvl = *cfg.level
	}
	keys := lo.Uniq(cfg.ctxKeys)
	slices.Sort(keys)

	core := newXCore(zap.NewAtomicLevelAt(lvl), cfg.encoder.newEncoder(), cfg.ws)
	return &xLogger{
		// Skip the wrapper frame, the caller is the one calling xLogger.
		logger:   zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)),
		ctxKeys:  keys,
		encoder:  cfg.encoder,
		rootCore: core,
	}
}

// WithXLoggerStdOutWriter buffers the writes to stdout. Call Sync before
// the process exits.
func WithXLoggerStdOutWriter() XLoggerOption {
	return func(cfg *loggerCfg) error {
		cfg.ws = &zapcore.BufferedWriteSyncer{
			WS:            zapcore.AddSync(os.Stdout),
			Size:          256 * 1024,
			FlushInterval: 5 * time.Second,
		}
		return nil
	}
}

func WithXLoggerEncoder(logEnc LogEncoderType) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if logEnc >= _encMax {
			return infra.NewErrorStack("[XLogger] unknown encoder")
		}
		cfg.encoder = logEnc
		return nil
	}
}

func WithXLoggerLevel(lvl LogLevel) XLoggerOption {
	return func(cfg *loggerCfg) error {
		zl := lvl.zapLevel()
		cfg.level = &zl
		return nil
	}
}

// WithXLoggerContextFields logs the context values stored under
// ContextKey(key) by the *Context methods, keyed by key.
func WithXLoggerContextFields(keys ...string) XLoggerOption {
	return func(cfg *loggerCfg) error {
		for _, key := range keys {
			if len(key) == 0 {
				return infra.NewErrorStack("[XLogger] empty context field")
			}
			cfg.ctxKeys = append(cfg.ctxKeys, key)
		}
		return nil
	}
}
