// Package logging defines the minimal seam every resgov collaborator
// takes by constructor injection instead of importing a concrete logging
// backend. zaplog supplies the real implementation; tests substitute
// NewLogger with their own funcs.
package logging

// LogFunc is one level's log function: printf-style message plus args.
type LogFunc func(format string, args ...interface{})

// Logger is the interface every collaborator depends on.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// LogFuncs supplies one LogFunc per level to NewLogger. A nil entry makes
// that level a silent no-op.
type LogFuncs struct {
	Debugf LogFunc
	Infof  LogFunc
	Warnf  LogFunc
	Errorf LogFunc
}

type logger struct {
	prefix string
	funcs  LogFuncs
}

// NewLogger returns a Logger that prepends prefix to every message before
// dispatching to funcs.
func NewLogger(prefix string, funcs LogFuncs) Logger {
	return &logger{prefix: prefix, funcs: funcs}
}

func (l *logger) call(f LogFunc, format string, args ...interface{}) {
	if f == nil {
		return
	}
	if l.prefix != "" {
		format = l.prefix + format
	}
	f(format, args...)
}

func (l *logger) Debugf(format string, args ...interface{}) { l.call(l.funcs.Debugf, format, args...) }
func (l *logger) Infof(format string, args ...interface{})  { l.call(l.funcs.Infof, format, args...) }
func (l *logger) Warnf(format string, args ...interface{})  { l.call(l.funcs.Warnf, format, args...) }
func (l *logger) Errorf(format string, args ...interface{}) { l.call(l.funcs.Errorf, format, args...) }
