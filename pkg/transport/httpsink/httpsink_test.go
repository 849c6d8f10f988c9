package httpsink

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"fanlog/pkg/fanlog"
)

type collector struct {
	mu      sync.Mutex
	records []fanlog.Record
	headers []http.Header
	status  int
	body    string
	release chan struct{}
}

func newCollector(status int, body string) *collector {
	return &collector{status: status, body: body}
}

func (c *collector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if c.release != nil {
		<-c.release
	}
	var reader io.Reader = r.Body
	if r.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer zr.Close()
		reader = zr
	}
	var rec fanlog.Record
	if err := json.NewDecoder(reader).Decode(&rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.mu.Lock()
	c.records = append(c.records, rec)
	c.headers = append(c.headers, r.Header.Clone())
	c.mu.Unlock()

	w.WriteHeader(c.status)
	_, _ = io.WriteString(w, c.body)
}

func waitLogger(t *testing.T, logger *fanlog.Logger) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := logger.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestWriteAsyncDeliversRecord(t *testing.T) {
	col := newCollector(http.StatusAccepted, "")
	srv := httptest.NewServer(col)
	defer srv.Close()

	tr, err := New(Options{URL: srv.URL, Token: "secret", Gzip: true, InstanceID: "inst-1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tr.Close()

	var diag bytes.Buffer
	logger := fanlog.New(fanlog.Options{App: "svc", Transports: []fanlog.Transport{tr}, Diagnostics: &diag})
	logger.Info("shipped", fanlog.Fields{"bytes": 10}, nil)
	waitLogger(t, logger)

	col.mu.Lock()
	defer col.mu.Unlock()
	if len(col.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(col.records))
	}
	if col.records[0].Message != "shipped" || col.records[0].App != "svc" {
		t.Fatalf("unexpected record %#v", col.records[0])
	}
	h := col.headers[0]
	if h.Get("Authorization") != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", h.Get("Authorization"))
	}
	if h.Get(instanceHeader) != "inst-1" {
		t.Fatalf("unexpected instance header %q", h.Get(instanceHeader))
	}
	if diag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %q", diag.String())
	}
}

func TestFailedPostReportedWithoutBlocking(t *testing.T) {
	col := newCollector(http.StatusServiceUnavailable, `{"error":"collector overloaded"}`)
	col.release = make(chan struct{})
	srv := httptest.NewServer(col)
	defer srv.Close()

	tr, err := New(Options{ID: "collector", URL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tr.Close()

	var diag bytes.Buffer
	logger := fanlog.New(fanlog.Options{Transports: []fanlog.Transport{tr}, Diagnostics: &diag})

	returned := make(chan struct{})
	go func() {
		logger.Error("boom", nil, nil)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("log call blocked on the pending request")
	}

	close(col.release)
	waitLogger(t, logger)

	out := diag.String()
	if !strings.HasPrefix(out, "Error writing log entry to transport collector ") {
		t.Fatalf("unexpected diagnostic %q", out)
	}
	if !strings.Contains(out, " CollectorStatusError: post "+srv.URL+": HTTP 503: collector overloaded\n") {
		t.Fatalf("expected named status error in diagnostic, got %q", out)
	}
}

func TestWriteReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(newCollector(http.StatusUnauthorized, "denied"))
	defer srv.Close()

	tr, err := New(Options{URL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = tr.Write(fanlog.Record{Data: fanlog.Fields{}, Context: fanlog.Fields{}})
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized || statusErr.Detail != "denied" {
		t.Fatalf("expected StatusError with code and detail, got %#v", err)
	}
	if !strings.Contains(err.Error(), "HTTP 401: denied") {
		t.Fatalf("unexpected error text %q", err.Error())
	}
}

func TestNewValidatesURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com"} {
		if _, err := New(Options{URL: raw}); err == nil {
			t.Fatalf("expected error for url %q", raw)
		}
	}
	tr, err := New(Options{URL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.ID() != DefaultID || tr.InstanceID() == "" {
		t.Fatalf("unexpected defaults id=%q instance=%q", tr.ID(), tr.InstanceID())
	}
}

func TestResponseDetail(t *testing.T) {
	cases := map[string]string{
		`{"error":"nope"}`:     "nope",
		`{"message":"slow"}`:   "slow",
		`{"code":7}`:           "",
		"plain text failure\n": "plain text failure",
		"":                     "",
	}
	for body, want := range cases {
		if got := responseDetail(strings.NewReader(body)); got != want {
			t.Errorf("responseDetail(%q) got %q want %q", body, got, want)
		}
	}
}
