package services

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"testing"
	"time"
)

func archiveFixture() []archiveEntry {
	base := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	return []archiveEntry{
		{
			ID:         1,
			UserID:     3,
			Username:   "admin",
			Action:     "CREATE",
			Resource:   "students",
			ResourceID: 42,
			IPAddress:  "10.0.0.1",
			CreatedAt:  base,
		},
		{
			ID:        2,
			UserID:    3,
			Username:  "admin",
			Action:    "DELETE",
			Resource:  "invoices",
			Details:   map[string]any{"reason": "duplicate, \"voided\""},
			IPAddress: "10.0.0.1",
			CreatedAt: base.Add(time.Hour),
		},
	}
}

func TestBuildArchive(t *testing.T) {
	buf, err := buildArchive(archiveFixture(), "activity_logs_2026-01-10.zip")
	if err != nil {
		t.Fatalf("buildArchive error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("archive is not a valid zip: %v", err)
	}

	want := map[string]bool{
		"activity_logs.json": false,
		"activity_logs.csv":  false,
		"metadata.json":      false,
	}
	for _, f := range zr.File {
		if _, ok := want[f.Name]; !ok {
			t.Errorf("unexpected file in archive: %s", f.Name)
			continue
		}
		want[f.Name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("archive missing %s", name)
		}
	}
}

func TestWriteEntriesCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := writeEntriesCSV(&buf, archiveFixture()); err != nil {
		t.Fatalf("writeEntriesCSV error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}
	if records[0][0] != "id" {
		t.Errorf("header starts with %q, want id", records[0][0])
	}
	if records[1][3] != "CREATE" || records[2][3] != "DELETE" {
		t.Errorf("action columns = %q, %q", records[1][3], records[2][3])
	}
	// details with embedded quotes must survive the round trip
	if records[2][9] == "" {
		t.Error("details column empty, want JSON payload")
	}
}
