package logger

import (
	"fmt"
	"io"
	"log"
)

type logger struct {
	errorLogger *log.Logger
	warnLogger  *log.Logger
	infoLogger  *log.Logger
	debugLogger *log.Logger
	traceLogger *log.Logger
}

// NewLogger returns a logger writing to out. Levels above the given Level
// stay nil and their methods are no-ops.
func NewLogger(level Level, out io.Writer) *logger {
	l := &logger{}
	flag := log.LstdFlags | log.Lshortfile

	if level >= LevelError {
		l.errorLogger = log.New(out, "ERROR:", flag)
	}
	if level >= LevelWarn {
		l.warnLogger = log.New(out, "WARN :", flag)
	}
	if level >= LevelInfo {
		l.infoLogger = log.New(out, "INFO :", flag)
	}
	if level >= LevelDebug {
		l.debugLogger = log.New(out, "DEBUG:", flag)
	}
	if level >= LevelTrace {
		l.traceLogger = log.New(out, "TRACE:", flag)
	}
	return l
}

func (l *logger) Error(v ...any) {
	if l.errorLogger != nil {
		_ = l.errorLogger.Output(2, fmt.Sprintln(v...))
	}
}

func (l *logger) Warn(v ...any) {
	if l.warnLogger != nil {
		_ = l.warnLogger.Output(2, fmt.Sprintln(v...))
	}
}

func (l *logger) Info(v ...any) {
	if l.infoLogger != nil {
		_ = l.infoLogger.Output(2, fmt.Sprintln(v...))
	}
}

func (l *logger) Debug(v ...any) {
	if l.debugLogger != nil {
		_ = l.debugLogger.Output(2, fmt.Sprintln(v...))
	}
}

func (l *logger) Trace(v ...any) {
	if l.traceLogger != nil {
		_ = l.traceLogger.Output(2, fmt.Sprintln(v...))
	}
}

func (l *logger) Errorf(format string, v ...any) {
	if l.errorLogger != nil {
		_ = l.errorLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *logger) Warnf(format string, v ...any) {
	if l.warnLogger != nil {
		_ = l.warnLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *logger) Infof(format string, v ...any) {
	if l.infoLogger != nil {
		_ = l.infoLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *logger) Debugf(format string, v ...any) {
	if l.debugLogger != nil {
		_ = l.debugLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *logger) Tracef(format string, v ...any) {
	if l.traceLogger != nil {
		_ = l.traceLogger.Output(2, fmt.Sprintf(format, v...))
	}
}
