// Package fanlogtest provides transport doubles for tests that exercise
// fanlog.Logger.
package fanlogtest

import (
	"sync"

	"fanlog/pkg/fanlog"
)

// Recorder keeps every record it receives.
type Recorder struct {
	id      string
	mu      sync.Mutex
	records []fanlog.Record
}

// NewRecorder returns an empty recording transport.
func NewRecorder(id string) *Recorder {
	return &Recorder{id: id}
}

func (r *Recorder) ID() string { return r.id }

func (r *Recorder) Write(rec fanlog.Record) error {
	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
	return nil
}

// Records returns a copy of the received records in arrival order.
func (r *Recorder) Records() []fanlog.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]fanlog.Record, len(r.records))
	copy(out, r.records)
	return out
}

// Len reports how many records were received.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Last returns the most recent record.
func (r *Recorder) Last() (fanlog.Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) == 0 {
		return fanlog.Record{}, false
	}
	return r.records[len(r.records)-1], true
}

// Failing returns a transport whose Write always returns err.
func Failing(id string, err error) fanlog.Transport {
	return fanlog.TransportFunc(id, func(fanlog.Record) error { return err })
}

// Panicking returns a transport whose Write panics with value.
func Panicking(id string, value any) fanlog.Transport {
	return fanlog.TransportFunc(id, func(fanlog.Record) error { panic(value) })
}

// Sequence records the order in which transports were called. Each
// transport returned by Step appends its id.
type Sequence struct {
	mu  sync.Mutex
	ids []string
}

// Step returns a transport that appends id to the sequence.
func (s *Sequence) Step(id string) fanlog.Transport {
	return fanlog.TransportFunc(id, func(fanlog.Record) error {
		s.mu.Lock()
		s.ids = append(s.ids, id)
		s.mu.Unlock()
		return nil
	})
}

// IDs returns the recorded call order.
func (s *Sequence) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Deferred is an asynchronous transport whose writes stay pending until
// Settle is called.
type Deferred struct {
	id      string
	mu      sync.Mutex
	pending []chan error
}

// NewDeferred returns an asynchronous transport with no pending writes.
func NewDeferred(id string) *Deferred {
	return &Deferred{id: id}
}

func (d *Deferred) ID() string { return d.id }

// Write settles immediately with success; the Logger uses WriteAsync.
func (d *Deferred) Write(fanlog.Record) error { return nil }

func (d *Deferred) WriteAsync(fanlog.Record) <-chan error {
	ch := make(chan error, 1)
	d.mu.Lock()
	d.pending = append(d.pending, ch)
	d.mu.Unlock()
	return ch
}

// Pending reports how many writes have not been settled.
func (d *Deferred) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Settle completes the oldest pending write with err (nil for success).
// It reports false when nothing is pending.
func (d *Deferred) Settle(err error) bool {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return false
	}
	ch := d.pending[0]
	d.pending = d.pending[1:]
	d.mu.Unlock()
	ch <- err
	close(ch)
	return true
}
