package utilities

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/antonio-alexander/go-employee-client/internal"

	"github.com/rs/zerolog"
)

type logger struct {
	zl     zerolog.Logger
	writer io.Writer
	config struct {
		Level  Level
		Pretty bool
	}
}

type Level int

const (
	Error Level = 1
	Warn  Level = 2
	Info  Level = 3
	Debug Level = 4
	Trace Level = 5
)

func (l Level) String() string {
	switch l {
	default:
		return ""
	case Error:
		return "error"
	case Warn:
		return "warn"
	case Info:
		return "info"
	case Debug:
		return "debug"
	case Trace:
		return "trace"
	}
}

func (l Level) zerologLevel() zerolog.Level {
	switch l {
	default:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	case Info:
		return zerolog.InfoLevel
	case Debug:
		return zerolog.DebugLevel
	case Trace:
		return zerolog.TraceLevel
	}
}

type Logger interface {
	Error(ctx context.Context, format string, v ...any)
	Warn(ctx context.Context, format string, v ...any)
	Info(ctx context.Context, format string, v ...any)
	Debug(ctx context.Context, format string, v ...any)
	Trace(ctx context.Context, format string, v ...any)
}

func atoLogLevel(a string) Level {
	switch strings.ToLower(a) {
	default:
		return Error
	case "warn":
		return Warn
	case "info":
		return Info
	case "debug":
		return Debug
	case "trace":
		return Trace
	}
}

// NewLogger creates a zerolog backed logger, by default it writes json to
// stdout at the error level; an io.Writer or Level can be provided as a
// parameter
func NewLogger(parameters ...any) interface {
	internal.Configurer
	Logger
} {
	l := &logger{writer: os.Stdout}
	l.config.Level = Error
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case io.Writer:
			l.writer = p
		case Level:
			l.config.Level = p
		}
	}
	l.build()
	return l
}

func (l *logger) build() {
	writer := l.writer
	if l.config.Pretty {
		writer = zerolog.ConsoleWriter{
			Out:        l.writer,
			NoColor:    true,
			TimeFormat: time.RFC3339,
		}
	}
	l.zl = zerolog.New(writer).With().Timestamp().Logger().
		Level(l.config.Level.zerologLevel())
}

func (l *logger) Configure(envs map[string]string) error {
	if logLevel, ok := envs["LOG_LEVEL"]; ok {
		l.config.Level = atoLogLevel(logLevel)
	}
	if pretty, ok := envs["LOG_PRETTY"]; ok && pretty != "" {
		p, err := strconv.ParseBool(pretty)
		if err != nil {
			return err
		}
		l.config.Pretty = p
	}
	l.build()
	return nil
}

func (l *logger) log(ctx context.Context, level Level, format string, v ...any) {
	event := l.zl.WithLevel(level.zerologLevel())
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		event = event.Str("correlation_id", correlationId)
	}
	event.Msgf(format, v...)
}

func (l *logger) Error(ctx context.Context, format string, v ...any) {
	l.log(ctx, Error, format, v...)
}

func (l *logger) Warn(ctx context.Context, format string, v ...any) {
	l.log(ctx, Warn, format, v...)
}

func (l *logger) Info(ctx context.Context, format string, v ...any) {
	l.log(ctx, Info, format, v...)
}

func (l *logger) Debug(ctx context.Context, format string, v ...any) {
	l.log(ctx, Debug, format, v...)
}

func (l *logger) Trace(ctx context.Context, format string, v ...any) {
	l.log(ctx, Trace, format, v...)
}
