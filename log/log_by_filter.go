package log

import (
	"sync/atomic"

	"golang.org/x/exp/slog"
)

// LoggerFilter decides whether a filtered log call is emitted.
type LoggerFilter interface {
	check() bool
}

// EveryN lets through one out of every N calls. A nil or zero EveryN lets
// everything through.
type EveryN struct {
	N       uint32
	counter uint32
}

func (e *EveryN) check() bool {
	if e == nil || e.N == 0 {
		return true
	}
	c := atomic.AddUint32(&e.counter, 1)
	return c%e.N == 1 || e.N == 1
}

var _ LoggerFilter = &EveryN{}

type ifCondition struct {
	Condition bool
}

func (i *ifCondition) check() bool {
	return i == nil || i.Condition
}

var _ LoggerFilter = &ifCondition{}

// WriteBy emits the record on l when the filter allows it.
func WriteBy(l Logger, filter LoggerFilter, level slog.Level, msg string, ctx ...interface{}) {
	if filter == nil || filter.check() {
		l.Write(level, msg, ctx...)
	}
}

func TraceBy(filter LoggerFilter, msg string, ctx ...interface{}) {
	WriteBy(Root(), filter, LevelTrace, msg, ctx...)
}

func DebugBy(filter LoggerFilter, msg string, ctx ...interface{}) {
	WriteBy(Root(), filter, slog.LevelDebug, msg, ctx...)
}

func InfoBy(filter LoggerFilter, msg string, ctx ...interface{}) {
	WriteBy(Root(), filter, slog.LevelInfo, msg, ctx...)
}

func WarnBy(filter LoggerFilter, msg string, ctx ...interface{}) {
	WriteBy(Root(), filter, slog.LevelWarn, msg, ctx...)
}

func ErrorBy(filter LoggerFilter, msg string, ctx ...interface{}) {
	WriteBy(Root(), filter, slog.LevelError, msg, ctx...)
}

func TraceIf(condition bool, msg string, ctx ...interface{}) {
	TraceBy(&ifCondition{condition}, msg, ctx...)
}

func DebugIf(condition bool, msg string, ctx ...interface{}) {
	DebugBy(&ifCondition{condition}, msg, ctx...)
}

func InfoIf(condition bool, msg string, ctx ...interface{}) {
	InfoBy(&ifCondition{condition}, msg, ctx...)
}

func WarnIf(condition bool, msg string, ctx ...interface{}) {
	WarnBy(&ifCondition{condition}, msg, ctx...)
}

func ErrorIf(condition bool, msg string, ctx ...interface{}) {
	ErrorBy(&ifCondition{condition}, msg, ctx...)
}
