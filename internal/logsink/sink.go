// Package logsink provides the injected logging interface the dump
// splitter reports warn/info/debug events through. The FRM decoder does
// not log.
package logsink

import "github.com/sirupsen/logrus"

// Sink is the logging surface the dump splitter depends on. It is
// injected rather than reached for as a package-level global,
// so a caller embedding this module can route events anywhere.
type Sink interface {
	Warn(format string, args ...interface{})
	Info(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// LogrusSink backs Sink with a *logrus.Logger.
type LogrusSink struct {
	log *logrus.Logger
}

// NewLogrusSink wraps log (pass logrus.StandardLogger() for the default
// logger) as a Sink.
func NewLogrusSink(log *logrus.Logger) *LogrusSink {
	return &LogrusSink{log: log}
}

func (s *LogrusSink) Warn(format string, args ...interface{})  { s.log.Warnf(format, args...) }
func (s *LogrusSink) Info(format string, args ...interface{})  { s.log.Infof(format, args...) }
func (s *LogrusSink) Debug(format string, args ...interface{}) { s.log.Debugf(format, args...) }

// Nop is a Sink that discards every event, useful in tests that don't
// care about log output.
type Nop struct{}

func (Nop) Warn(string, ...interface{})  {}
func (Nop) Info(string, ...interface{})  {}
func (Nop) Debug(string, ...interface{}) {}
