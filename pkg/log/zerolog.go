package log

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	irerr "github.com/yotsuba-lab/iristree/pkg/errors"
)

// ZerologProvider is the production LoggerProvider, backed by rs/zerolog.
type ZerologProvider struct {
	mu    sync.RWMutex
	root  zerolog.Logger
	level Level
}

// NewZerologProvider creates a provider writing JSON to stderr at the given
// minimum level. It also routes the errors package's warning channel into
// zerolog so typed warnings appear as structured events.
func NewZerologProvider(level Level) *ZerologProvider {
	zl := zerolog.New(os.Stderr).Level(toZerologLevel(level)).With().Timestamp().Logger()
	p := &ZerologProvider{root: zl, level: level}

	irerr.SetZerologWarnFunc(func(warning error) {
		logger := p.rootLogger()
		ev := logger.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev.EmbedObject(obj).Msg(warning.Error())
			return
		}
		ev.Err(warning).Msg("warning")
	})

	return p
}

func (p *ZerologProvider) rootLogger() zerolog.Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.root
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	return &zerologLogger{logger: p.rootLogger()}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{logger: p.rootLogger().With().Str(ComponentKey, name).Logger()}
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	p.root = p.root.Level(toZerologLevel(level))
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	logger zerolog.Logger
}

func (z *zerologLogger) Debug(msg string, fields ...any) {
	z.emit(z.logger.Debug(), msg, fields)
}

func (z *zerologLogger) Info(msg string, fields ...any) {
	z.emit(z.logger.Info(), msg, fields)
}

func (z *zerologLogger) Warn(msg string, fields ...any) {
	z.emit(z.logger.Warn(), msg, fields)
}

func (z *zerologLogger) Error(msg string, fields ...any) {
	z.emit(z.logger.Error(), msg, fields)
}

func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		ctx = ctx.Interface(fmt.Sprintf("%v", fields[i]), fields[i+1])
	}
	return &zerologLogger{logger: ctx.Logger()}
}

func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= z.logger.GetLevel()
}

func (z *zerologLogger) emit(ev *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		value := fields[i+1]
		if err, ok := value.(error); ok {
			ev = ev.AnErr(key, err)
			continue
		}
		ev = ev.Interface(key, value)
	}
	ev.Msg(msg)
}
