package testsupport

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"

	"fanlog/pkg/fanlog"
)

// ReadRecords decodes a JSON-lines file written by the jsonfile transport.
// A missing file yields no records.
func ReadRecords(t testing.TB, path string) []fanlog.Record {
	t.Helper()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	var records []fanlog.Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec fanlog.Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("decode %s line %q: %v", path, scanner.Text(), err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan %s: %v", path, err)
	}
	return records
}
