package fanlog

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const failurePrefix = "Error writing log entry to transport "

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// diagnostics serializes failure lines onto a single writer. It is the
// terminal sink for transport failures and never routes back through a
// Logger.
type diagnostics struct {
	mu sync.Mutex
	w  io.Writer
}

func (d *diagnostics) report(id string, value any, panicStack []byte) {
	line := formatFailure(id, value, panicStack)
	defer func() { _ = recover() }()
	d.mu.Lock()
	defer d.mu.Unlock()
	_, _ = io.WriteString(d.w, line)
}

// formatFailure renders one diagnostic line for a failed write. value is a
// returned error, a recovered panic value, or an asynchronous failure.
func formatFailure(id string, value any, panicStack []byte) string {
	if rej, ok := value.(*Rejection); ok {
		value = rej.Value
	}

	var b strings.Builder
	b.WriteString(failurePrefix)
	b.WriteString(id)

	if isAbsent(value) {
		b.WriteByte('\n')
		return b.String()
	}

	err, ok := value.(error)
	if !ok {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprint(Acyclic(value)))
		b.WriteByte('\n')
		return b.String()
	}

	b.WriteByte(' ')
	b.WriteString(errorName(err))
	b.WriteString(": ")
	b.WriteString(err.Error())
	b.WriteByte('\n')
	b.WriteString(errorStack(err, panicStack))
	b.WriteByte('\n')
	return b.String()
}

func isAbsent(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case *runtime.PanicNilError:
		return true
	}
	return false
}

// errorName prefers an explicit Name method and falls back to the dynamic
// type of the root cause.
func errorName(err error) string {
	var named interface{ Name() string }
	if errors.As(err, &named) {
		if name := named.Name(); name != "" {
			return name
		}
	}
	return fmt.Sprintf("%T", errors.Cause(err))
}

// errorStack returns the stack carried by err, the stack of the recovered
// panic, or the current stack, in that order.
func errorStack(err error, panicStack []byte) string {
	var tracer stackTracer
	if !errors.As(err, &tracer) {
		if len(panicStack) > 0 {
			return strings.TrimRight(string(panicStack), "\n")
		}
		tracer = errors.WithStack(err).(stackTracer)
	}
	return strings.TrimPrefix(fmt.Sprintf("%+v", tracer.StackTrace()), "\n")
}
