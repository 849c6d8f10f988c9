// Package httpsink posts fanlog records to an HTTP collector.
//
// The transport is asynchronous: the Logger hands it a record and moves on,
// and a failed POST (network error or non-2xx status) is reported later on
// the Logger's diagnostic writer. Each record is sent as its own request;
// batching is left to the collector.
package httpsink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"fanlog/pkg/fanlog"
)

// DefaultID names the transport when Options.ID is empty.
const DefaultID = "http"

const (
	defaultTimeout  = 5 * time.Second
	maxErrorBody    = 4 << 10
	instanceHeader  = "X-Instance-ID"
	contentTypeJSON = "application/json"
)

// ErrStatus marks responses outside the 2xx range. StatusError wraps it.
var ErrStatus = errors.New("unexpected collector status")

// StatusError is returned when the collector answers outside the 2xx range.
type StatusError struct {
	URL    string
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("post %s: HTTP %d", e.URL, e.Code)
	}
	return fmt.Sprintf("post %s: HTTP %d: %s", e.URL, e.Code, e.Detail)
}

// Name labels the failure in Logger diagnostics.
func (e *StatusError) Name() string { return "CollectorStatusError" }

func (e *StatusError) Unwrap() error { return ErrStatus }

// Options configures the HTTP transport.
type Options struct {
	ID    string
	URL   string
	Token string
	// Timeout bounds each request. Zero means five seconds.
	Timeout time.Duration
	// Gzip compresses request bodies.
	Gzip bool
	// InstanceID identifies this process to the collector. A random UUID is
	// used when empty.
	InstanceID string
	// Client overrides the HTTP client; its Timeout is left untouched.
	Client *http.Client
}

// Transport sends one POST per record.
type Transport struct {
	id         string
	url        string
	token      string
	gzip       bool
	instanceID string
	client     *http.Client

	ctx    context.Context
	cancel context.CancelFunc
}

// New validates opts and builds a transport.
func New(opts Options) (*Transport, error) {
	target := strings.TrimSpace(opts.URL)
	if target == "" {
		return nil, errors.New("httpsink: url is required")
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return nil, errors.Errorf("httpsink: url %q must use http or https", target)
	}

	id := strings.TrimSpace(opts.ID)
	if id == "" {
		id = DefaultID
	}
	instanceID := strings.TrimSpace(opts.InstanceID)
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Transport{
		id:         id,
		url:        target,
		token:      strings.TrimSpace(opts.Token),
		gzip:       opts.Gzip,
		instanceID: instanceID,
		client:     client,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

func (t *Transport) ID() string { return t.id }

// InstanceID returns the identifier sent with every request.
func (t *Transport) InstanceID() string { return t.instanceID }

// Write posts the record and waits for the response.
func (t *Transport) Write(rec fanlog.Record) error {
	return t.post(rec)
}

// WriteAsync posts the record on its own goroutine.
func (t *Transport) WriteAsync(rec fanlog.Record) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		if err := t.post(rec); err != nil {
			done <- err
		}
	}()
	return done
}

// Close aborts requests still in flight.
func (t *Transport) Close() error {
	t.cancel()
	return nil
}

func (t *Transport) post(rec fanlog.Record) error {
	body, err := t.encode(rec)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(t.ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build collector request")
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set(instanceHeader, t.instanceID)
	if t.gzip {
		req.Header.Set("Content-Encoding", "gzip")
	}
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "post %s", t.url)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return errors.WithStack(&StatusError{URL: t.url, Code: resp.StatusCode, Detail: responseDetail(resp.Body)})
}

func (t *Transport) encode(rec fanlog.Record) ([]byte, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(err, "encode record")
	}
	if !t.gzip {
		return payload, nil
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, errors.Wrap(err, "compress record")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "compress record")
	}
	return buf.Bytes(), nil
}

// responseDetail pulls a short explanation out of an error response. JSON
// bodies with an "error" or "message" string are preferred; other bodies are
// returned trimmed.
func responseDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return ""
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var p fastjson.Parser
	if v, err := p.ParseBytes(raw); err == nil {
		for _, key := range []string{"error", "message"} {
			if field := v.Get(key); field != nil && field.Type() == fastjson.TypeString {
				return string(field.GetStringBytes())
			}
		}
		if v.Type() == fastjson.TypeObject {
			return ""
		}
	}
	return fmt.Sprintf("%.200s", string(raw))
}
