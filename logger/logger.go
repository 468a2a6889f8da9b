/*
 * MIT License
 *
 * Copyright (c) 2026 Axion Dark Matter Experiment Collaboration
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package logger is a small structured-logging facade over logrus, giving
// every component of the daemon the same field-carrying Logger interface
// without each one reaching for logrus directly.
package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level mirrors logrus' severity ordering so callers never import logrus
// themselves just to pick a threshold.
type Level uint8

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

func (l Level) toLogrus() logrus.Level {
	switch l {
	case PanicLevel:
		return logrus.PanicLevel
	case FatalLevel:
		return logrus.FatalLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case WarnLevel:
		return logrus.WarnLevel
	case InfoLevel:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// Fields attaches structured key/value context to a log entry.
type Fields map[string]interface{}

// Logger is the interface every component of the daemon logs through.
type Logger interface {
	SetLevel(lvl Level)
	GetLevel() Level

	WithField(key string, value interface{}) Logger
	WithFields(f Fields) Logger

	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type logg struct {
	mu  sync.Mutex
	lvl Level
	e   *logrus.Entry
}

// New builds a Logger writing to out in text format, suitable for the
// daemon's own stdout/file sink; callers who need JSON or syslog pick
// their formatter/hook on the underlying *logrus.Logger via NewFromLogrus.
func New(out io.Writer) Logger {
	l := logrus.New()
	l.SetOutput(out)
	return NewFromLogrus(l)
}

// NewFromLogrus wraps an already-configured *logrus.Logger, letting the
// caller install hooks (syslog, file rotation, ...) before handing it here.
func NewFromLogrus(l *logrus.Logger) Logger {
	return &logg{lvl: InfoLevel, e: logrus.NewEntry(l)}
}

func (g *logg) SetLevel(lvl Level) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lvl = lvl
	g.e.Logger.SetLevel(lvl.toLogrus())
}

func (g *logg) GetLevel() Level {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lvl
}

func (g *logg) WithField(key string, value interface{}) Logger {
	return &logg{lvl: g.GetLevel(), e: g.e.WithField(key, value)}
}

func (g *logg) WithFields(f Fields) Logger {
	return &logg{lvl: g.GetLevel(), e: g.e.WithFields(logrus.Fields(f))}
}

func (g *logg) Debug(args ...interface{}) { g.e.Debug(args...) }
func (g *logg) Info(args ...interface{})  { g.e.Info(args...) }
func (g *logg) Warn(args ...interface{})  { g.e.Warn(args...) }
func (g *logg) Error(args ...interface{}) { g.e.Error(args...) }

func (g *logg) Debugf(format string, args ...interface{}) { g.e.Debugf(format, args...) }
func (g *logg) Infof(format string, args ...interface{})  { g.e.Infof(format, args...) }
func (g *logg) Warnf(format string, args ...interface{})  { g.e.Warnf(format, args...) }
func (g *logg) Errorf(format string, args ...interface{}) { g.e.Errorf(format, args...) }

var (
	defMu  sync.Mutex
	defLog Logger = New(io.Discard)
)

// SetDefault installs the process-wide default logger, used by components
// that receive no explicit Logger (mirrors the teacher's GetDefault/SetDefault
// convention for dependency-free call sites).
func SetDefault(l Logger) {
	defMu.Lock()
	defer defMu.Unlock()
	defLog = l
}

// GetDefault returns the process-wide default logger.
func GetDefault() Logger {
	defMu.Lock()
	defer defMu.Unlock()
	return defLog
}
