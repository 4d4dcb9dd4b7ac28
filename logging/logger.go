package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crytic/ethpm/logging/colors"
	"github.com/rs/zerolog"
)

// GlobalLogger describes a Logger that is disabled by default and is replaced by the CLI once the log level is
// known. Each package should create its own sub-logger from it.
var GlobalLogger = NewLogger(zerolog.Disabled, false)

// Logger describes a logging object that sends events to console, with specialized formatting and coloring, and to
// any number of additional writers.
type Logger struct {
	// level describes the log level
	level zerolog.Level

	// writerLogger outputs logs to the additional writers, in either structured or unstructured format.
	writerLogger zerolog.Logger

	// consoleLogger outputs colorized, unstructured logs to stdout.
	consoleLogger zerolog.Logger

	// writers describes the additional io.Writer objects log output is sent to.
	writers []io.Writer

	// context describes the key-value pairs attached by NewSubLogger, reapplied when writers change.
	context [][2]string
}

// LogFormat describes what format to log in
type LogFormat string

const (
	// STRUCTURED describes that logging should be done in structured JSON format
	STRUCTURED LogFormat = "structured"
	// UNSTRUCTURED describes that logging should be done in an unstructured format
	UNSTRUCTURED LogFormat = "unstructured"
)

// StructuredLogInfo describes a key-value mapping that can be used to log structured data
type StructuredLogInfo map[string]any

// These constants identify the packages which log, used as the value of the "module" key of sub-loggers.
const (
	// MANIFEST_SERVICE identifies the manifest package
	MANIFEST_SERVICE = "manifest"
	// CACHE_SERVICE identifies the cache package
	CACHE_SERVICE = "cache"
	// CLI_SERVICE identifies the cmd package
	CLI_SERVICE = "cli"
)

// NewLogger creates a Logger with the given level. Console output is only produced if consoleEnabled is set.
func NewLogger(level zerolog.Level, consoleEnabled bool, writers ...io.Writer) *Logger {
	l := &Logger{
		level:         level,
		consoleLogger: zerolog.New(os.Stdout).Level(zerolog.Disabled),
		writers:       writers,
	}
	if consoleEnabled {
		consoleWriter := setupDefaultFormatting(zerolog.ConsoleWriter{Out: os.Stdout}, level)
		l.consoleLogger = zerolog.New(consoleWriter).Level(level)
	}
	l.rebuildWriterLogger()
	return l
}

// NewSubLogger creates a Logger which annotates every event with the given key-value pair, so that output of a
// single package can be filtered.
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	context := append(append([][2]string{}, l.context...), [2]string{key, value})
	return &Logger{
		level:         l.level,
		writerLogger:  l.writerLogger.With().Str(key, value).Logger(),
		consoleLogger: l.consoleLogger.With().Str(key, value).Logger(),
		writers:       append([]io.Writer{}, l.writers...),
		context:       context,
	}
}

// AddWriter adds a writer log output will be sent to. Adding the same writer twice is a no-op.
func (l *Logger) AddWriter(writer io.Writer, format LogFormat) {
	for _, w := range l.writers {
		if sameWriter(w, writer) {
			return
		}
	}

	// Unstructured output is rendered without ANSI coloring.
	if format == UNSTRUCTURED {
		writer = zerolog.ConsoleWriter{Out: writer, NoColor: true}
	}
	l.writers = append(l.writers, writer)
	l.rebuildWriterLogger()
}

// RemoveWriter removes a writer previously added with AddWriter. If the writer does not exist, this is a no-op.
func (l *Logger) RemoveWriter(writer io.Writer) {
	for i, w := range l.writers {
		if sameWriter(w, writer) {
			l.writers = append(l.writers[:i], l.writers[i+1:]...)
			l.rebuildWriterLogger()
			return
		}
	}
}

// sameWriter reports whether w is target, or an unstructured wrapper around it.
func sameWriter(w io.Writer, target io.Writer) bool {
	// ConsoleWriter holds func fields and cannot be compared directly.
	if consoleWriter, ok := w.(zerolog.ConsoleWriter); ok {
		return consoleWriter.Out == target
	}
	if _, ok := target.(zerolog.ConsoleWriter); ok {
		return false
	}
	return w == target
}

// rebuildWriterLogger recreates the writer logger from the current writer list and context.
func (l *Logger) rebuildWriterLogger() {
	if len(l.writers) == 0 {
		l.writerLogger = zerolog.New(io.Discard).Level(zerolog.Disabled)
		return
	}
	ctx := zerolog.New(zerolog.MultiLevelWriter(l.writers...)).Level(l.level).With().Timestamp()
	for _, kv := range l.context {
		ctx = ctx.Str(kv[0], kv[1])
	}
	l.writerLogger = ctx.Logger()
}

// Level returns the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel updates the log level of the Logger
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.writerLogger = l.writerLogger.Level(level)
	l.consoleLogger = l.consoleLogger.Level(level)
}

// Trace logs a trace event
func (l *Logger) Trace(args ...any) {
	l.log(zerolog.TraceLevel, args...)
}

// Debug logs a debug event
func (l *Logger) Debug(args ...any) {
	l.log(zerolog.DebugLevel, args...)
}

// Info logs an info event
func (l *Logger) Info(args ...any) {
	l.log(zerolog.InfoLevel, args...)
}

// Warn logs a warning event
func (l *Logger) Warn(args ...any) {
	l.log(zerolog.WarnLevel, args...)
}

// Error logs an error event
func (l *Logger) Error(args ...any) {
	l.log(zerolog.ErrorLevel, args...)
}

// Panic logs a panic event and then panics
func (l *Logger) Panic(args ...any) {
	l.log(zerolog.PanicLevel, args...)
}

// log sends a single event at the given level to both the console and writer loggers. Arguments may be plain
// values, colors.ColorFunc values that switch the color of subsequent console text, one error, and one
// StructuredLogInfo.
func (l *Logger) log(level zerolog.Level, args ...any) {
	consoleMsg, writerMsg, err, info := buildMsgs(args...)

	consoleEvent := l.consoleLogger.WithLevel(level)
	writerEvent := l.writerLogger.WithLevel(level)

	// Stack traces are only attached in debug mode, or for panics.
	withStack := level == zerolog.PanicLevel || l.level <= zerolog.DebugLevel
	for _, event := range []*zerolog.Event{consoleEvent, writerEvent} {
		event.Err(err)
		if withStack && err != nil {
			event.Stack()
		}
		if info != nil {
			event.Any("info", info)
		}
	}

	// The writer event is sent last so a panic still reaches every writer.
	defer func() {
		writerEvent.Msg(writerMsg)
		if level == zerolog.PanicLevel {
			panic(writerMsg)
		}
	}()
	consoleEvent.Msg(consoleMsg)
}

// buildMsgs takes a variadic list of arguments and returns a colorized message for console output and a plain one
// for other writers, along with any error and StructuredLogInfo among the arguments.
func buildMsgs(args ...any) (string, string, error, StructuredLogInfo) {
	colorCtx := colors.Reset
	consoleOutput := make([]string, 0, len(args))
	writerOutput := make([]string, 0, len(args))
	var info StructuredLogInfo
	var err error

	for _, arg := range args {
		switch t := arg.(type) {
		case colors.ColorFunc:
			colorCtx = t
		case StructuredLogInfo:
			info = t
		case error:
			err = t
		default:
			consoleOutput = append(consoleOutput, colorCtx(t))
			writerOutput = append(writerOutput, fmt.Sprintf("%v", t))
		}
	}
	return strings.Join(consoleOutput, ""), strings.Join(writerOutput, ""), err, info
}

// setupDefaultFormatting applies the console formatting: no timestamps, colored level markers, and no module key
// unless debugging.
func setupDefaultFormatting(writer zerolog.ConsoleWriter, level zerolog.Level) zerolog.ConsoleWriter {
	writer.FormatTimestamp = func(i any) string {
		return ""
	}

	writer.FormatLevel = func(i any) string {
		levelString, _ := i.(string)
		parsed, err := zerolog.ParseLevel(levelString)
		if err != nil {
			return levelString
		}

		switch parsed {
		case zerolog.TraceLevel:
			return colors.CyanBold(zerolog.LevelTraceValue)
		case zerolog.DebugLevel:
			return colors.BlueBold(zerolog.LevelDebugValue)
		case zerolog.InfoLevel:
			return colors.GreenBold(colors.LEFT_ARROW)
		case zerolog.WarnLevel:
			return colors.YellowBold(zerolog.LevelWarnValue)
		case zerolog.ErrorLevel:
			return colors.RedBold(zerolog.LevelErrorValue)
		case zerolog.FatalLevel:
			return colors.RedBold(zerolog.LevelFatalValue)
		case zerolog.PanicLevel:
			return colors.RedBold(zerolog.LevelPanicValue)
		default:
			return levelString
		}
	}

	if level > zerolog.DebugLevel {
		writer.FieldsExclude = []string{"module"}
	}
	return writer
}
