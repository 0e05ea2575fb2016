// Package logger configures logrus and bridges it to echo.
package logger

import (
	"io"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/sirupsen/logrus"
)

// ComponentField names the subsystem that logged an entry.
const ComponentField = "component"

// New returns an echo logger writing to the standard logrus logger.
func New() echo.Logger {
	return NewWithLogger(logrus.StandardLogger())
}

// NewWithLogger returns an echo logger writing to l. Entries are tagged with the echo prefix
// as their component, and the JSON variants log the object's keys as logrus fields.
func NewWithLogger(l *logrus.Logger) echo.Logger {
	return &logger{entry: logrus.NewEntry(l)}
}

type logger struct {
	entry  *logrus.Entry
	prefix string
}

func (l *logger) fields(j log.JSON) *logrus.Entry {
	return l.entry.WithFields(logrus.Fields(j))
}

// SetLevel is ignored; the level follows the logrus logger so echo cannot diverge from it.
func (l *logger) SetLevel(log.Lvl) {}

func (l *logger) Level() log.Lvl {
	switch l.entry.Logger.GetLevel() {
	case logrus.TraceLevel, logrus.DebugLevel:
		return log.DEBUG
	case logrus.InfoLevel:
		return log.INFO
	case logrus.WarnLevel:
		return log.WARN
	default:
		return log.ERROR
	}
}

func (l *logger) SetOutput(w io.Writer) { l.entry.Logger.SetOutput(w) }
func (l *logger) Output() io.Writer     { return l.entry.Logger.Out }

func (l *logger) SetPrefix(p string) {
	l.prefix = p
	l.entry = logrus.NewEntry(l.entry.Logger)
	if p != "" {
		l.entry = l.entry.WithField(ComponentField, p)
	}
}
func (l *logger) Prefix() string { return l.prefix }

// SetHeader is ignored; the logrus formatter owns the line layout.
func (l *logger) SetHeader(string) {}

func (l *logger) Print(i ...interface{})                    { l.entry.Print(i...) }
func (l *logger) Printf(format string, args ...interface{}) { l.entry.Printf(format, args...) }
func (l *logger) Printj(j log.JSON)                         { l.fields(j).Print() }
func (l *logger) Debug(i ...interface{})                    { l.entry.Debug(i...) }
func (l *logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logger) Debugj(j log.JSON)                         { l.fields(j).Debug() }
func (l *logger) Info(i ...interface{})                     { l.entry.Info(i...) }
func (l *logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logger) Infoj(j log.JSON)                          { l.fields(j).Info() }
func (l *logger) Warn(i ...interface{})                     { l.entry.Warn(i...) }
func (l *logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logger) Warnj(j log.JSON)                          { l.fields(j).Warn() }
func (l *logger) Error(i ...interface{})                    { l.entry.Error(i...) }
func (l *logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *logger) Errorj(j log.JSON)                         { l.fields(j).Error() }
func (l *logger) Fatal(i ...interface{})                    { l.entry.Fatal(i...) }
func (l *logger) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }
func (l *logger) Fatalj(j log.JSON)                         { l.fields(j).Fatal() }
func (l *logger) Panic(i ...interface{})                    { l.entry.Panic(i...) }
func (l *logger) Panicf(format string, args ...interface{}) { l.entry.Panicf(format, args...) }
func (l *logger) Panicj(j log.JSON)                         { l.fields(j).Panic() }
