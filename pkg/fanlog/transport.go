package fanlog

import "fmt"

// Transport receives every record a Logger emits.
//
// ID names the transport in failure diagnostics. Write delivers the record
// synchronously; a returned error or a panic counts as a failed write.
type Transport interface {
	ID() string
	Write(rec Record) error
}

// AsyncTransport is implemented by transports whose writes complete later.
// When a transport implements it, the Logger calls WriteAsync instead of
// Write and does not wait for the outcome.
//
// WriteAsync must return promptly. The channel delivers at most one value:
// nil (or closing the channel) means the write succeeded, a non-nil error
// means it failed. A nil channel means nothing is pending.
type AsyncTransport interface {
	Transport
	WriteAsync(rec Record) <-chan error
}

type funcTransport struct {
	id string
	fn func(Record) error
}

// TransportFunc adapts fn to a synchronous Transport named id.
func TransportFunc(id string, fn func(Record) error) Transport {
	return funcTransport{id: id, fn: fn}
}

func (t funcTransport) ID() string { return t.id }

func (t funcTransport) Write(rec Record) error {
	if t.fn == nil {
		return nil
	}
	return t.fn(rec)
}

// Rejection is a failure whose payload is not an error: a bare value, or
// nothing at all. Diagnostics print the value instead of an error name and
// stack.
type Rejection struct {
	Value any
}

// Reject wraps value as a write failure. Reject(nil) and Reject("") report a
// failure without a payload.
func Reject(value any) error {
	return &Rejection{Value: value}
}

func (r *Rejection) Error() string {
	if isAbsent(r.Value) {
		return "rejected"
	}
	return fmt.Sprint(Acyclic(r.Value))
}

// Unwrap exposes an error payload to errors.Is and errors.As.
func (r *Rejection) Unwrap() error {
	if err, ok := r.Value.(error); ok {
		return err
	}
	return nil
}
