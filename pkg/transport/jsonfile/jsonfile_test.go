package jsonfile_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fanlog/pkg/fanlog"
	"fanlog/pkg/transport/jsonfile"
)

func readLines(t *testing.T, path string) []fanlog.Record {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()

	var records []fanlog.Record
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec fanlog.Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("decode line %q: %v", scanner.Text(), err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return records
}

func TestAppendsOneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.jsonl")
	tr, err := jsonfile.Open(jsonfile.Options{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tr.Close()

	logger := fanlog.New(fanlog.Options{App: "svc", Transports: []fanlog.Transport{tr}})
	logger.Info("first", fanlog.Fields{"n": 1}, nil)
	logger.Error("second", nil, fanlog.Fields{"request_id": "abc"})

	records := readLines(t, path)
	if len(records) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(records))
	}
	if records[0].App != "svc" || records[0].Level != fanlog.Info || records[0].Data["n"] != float64(1) {
		t.Fatalf("unexpected first record %#v", records[0])
	}
	if records[1].Level != fanlog.Error || records[1].Context["request_id"] != "abc" {
		t.Fatalf("unexpected second record %#v", records[1])
	}
	if tr.ID() != jsonfile.DefaultID {
		t.Fatalf("unexpected id %q", tr.ID())
	}
}

func TestReopenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.jsonl")
	for i := 0; i < 2; i++ {
		tr, err := jsonfile.Open(jsonfile.Options{ID: "audit", Path: path})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if err := tr.Write(fanlog.Record{Level: fanlog.Warn, Message: "line", Data: fanlog.Fields{}, Context: fanlog.Fields{}}); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := tr.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
	if got := len(readLines(t, path)); got != 2 {
		t.Fatalf("expected 2 records after reopen, got %d", got)
	}
}

func TestUnencodableRecordIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.jsonl")
	tr, err := jsonfile.Open(jsonfile.Options{ID: "audit", Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tr.Close()

	var diag bytes.Buffer
	logger := fanlog.New(fanlog.Options{Transports: []fanlog.Transport{tr}, Diagnostics: &diag})
	logger.Info("bad", fanlog.Fields{"fn": func() {}}, nil)

	if !strings.HasPrefix(diag.String(), "Error writing log entry to transport audit ") {
		t.Fatalf("unexpected diagnostic %q", diag.String())
	}
	if !strings.Contains(diag.String(), "encode record") {
		t.Fatalf("expected encode error in diagnostic, got %q", diag.String())
	}
	if got := len(readLines(t, path)); got != 0 {
		t.Fatalf("expected no lines written, got %d", got)
	}
}

func TestWriteAfterCloseFails(t *testing.T) {
	tr, err := jsonfile.Open(jsonfile.Options{Path: filepath.Join(t.TempDir(), "app.jsonl")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := tr.Write(fanlog.Record{Data: fanlog.Fields{}, Context: fanlog.Fields{}}); err == nil {
		t.Fatal("expected write after close to fail")
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := jsonfile.Open(jsonfile.Options{Path: "  "}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
