package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReportFinalize(t *testing.T) {
	tmpDir := t.TempDir()

	conf := &ReporterConfig{Destination: filepath.Join(tmpDir, "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	pagePath := filepath.Join(tmpDir, "page.html")
	if err := os.WriteFile(pagePath, []byte("<p>chapter</p>"), 0644); err != nil {
		t.Fatalf("failed to write page file: %v", err)
	}

	r.Store("page-1-2.html", pagePath)
	r.StoreData("index.txt", []byte("1. Gestation"))

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error = %v", err)
	}

	zr, err := zip.OpenReader(conf.Destination)
	if err != nil {
		t.Fatalf("failed to open report archive: %v", err)
	}
	defer zr.Close()

	found := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open archive entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read archive entry %s: %v", f.Name, err)
		}
		found[f.Name] = string(data)
	}

	if _, ok := found["MANIFEST"]; !ok {
		t.Fatal("Expected MANIFEST in report archive")
	}
	if got, ok := found["page-1-2.html"]; !ok || got != "<p>chapter</p>" {
		t.Errorf("page-1-2.html = %q, want stored file content", got)
	}
	if got, ok := found["index.txt"]; !ok || got != "1. Gestation" {
		t.Errorf("index.txt = %q, want stored data", got)
	}

	if !strings.Contains(found["MANIFEST"], "page-1-2.html") {
		t.Error("Expected MANIFEST to list stored entries")
	}
}

func TestReportManifestOrder(t *testing.T) {
	entries := map[string]entry{
		"page-1-10.html": {data: []byte("a")},
		"page-1-2.html":  {data: []byte("b")},
		"page-1-1.html":  {data: []byte("c")},
	}

	names, _ := prepareManifest(entries)
	want := []string{"page-1-1.html", "page-1-2.html", "page-1-10.html"}
	if len(names) != len(want) {
		t.Fatalf("names length = %d, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestReportStoreOverwritePanics(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.Store("name", "path-one")

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on overwrite with different path")
		}
	}()
	r.Store("name", "path-two")
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}

func TestReportStore_NilSafe(t *testing.T) {
	var r *Report
	r.Store("x", "y")
	r.StoreData("x", []byte("y"))
	if err := r.StoreCopy("x", "y"); err != nil {
		t.Errorf("StoreCopy on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Error("Name on nil report should be empty")
	}
}
