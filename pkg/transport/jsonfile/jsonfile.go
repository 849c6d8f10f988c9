// Package jsonfile appends fanlog records to a file as JSON lines.
//
// Writes take an advisory lock on a sibling ".lock" file so several
// processes can append to the same log without interleaving lines. Records
// whose data cannot be encoded as JSON fail the write; the Logger reports
// them like any other failure.
package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"fanlog/pkg/fanlog"
)

// DefaultID names the transport when Options.ID is empty.
const DefaultID = "jsonfile"

// Options configures a JSON-lines transport.
type Options struct {
	ID   string
	Path string
}

// Transport appends one JSON object per record.
type Transport struct {
	id   string
	path string

	mu   sync.Mutex
	file *os.File
	lock *flock.Flock
}

// Open creates (or appends to) the file at opts.Path.
func Open(opts Options) (*Transport, error) {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, errors.New("jsonfile: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "ensure log dir for %s", path)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open log file %s", path)
	}

	id := strings.TrimSpace(opts.ID)
	if id == "" {
		id = DefaultID
	}
	return &Transport{
		id:   id,
		path: path,
		file: file,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (t *Transport) ID() string { return t.id }

// Path returns the file being appended to.
func (t *Transport) Path() string { return t.path }

func (t *Transport) Write(rec fanlog.Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encode record")
	}
	line = append(line, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return errors.Errorf("write %s: transport closed", t.path)
	}
	if err := t.lock.Lock(); err != nil {
		return errors.Wrapf(err, "lock %s", t.path)
	}
	defer func() { _ = t.lock.Unlock() }()

	if _, err := t.file.Write(line); err != nil {
		return errors.Wrapf(err, "append %s", t.path)
	}
	return nil
}

// Close releases the file handle. Later writes fail.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	_ = t.lock.Close()
	return err
}
