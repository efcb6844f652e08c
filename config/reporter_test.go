package config

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newTestReport(t *testing.T) (*Report, string) {
	t.Helper()
	reportFile, err := os.CreateTemp(t.TempDir(), "test-report-*.zip")
	if err != nil {
		t.Fatalf("failed to create temp report file: %v", err)
	}
	return &Report{entries: make(map[string]entry), file: reportFile}, reportFile.Name()
}

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer zr.Close()

	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestReportClose_RemovesCopies(t *testing.T) {
	r, name := newTestReport(t)

	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "index.html"), []byte("<p>x</p>"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if err := r.StoreCopy("source", src); err != nil {
		t.Fatalf("StoreCopy() error: %v", err)
	}
	if len(r.copies) != 1 {
		t.Fatalf("expected one temporary copy, got %d", len(r.copies))
	}
	copied := r.copies[0]

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error: %v", err)
	}
	if _, err := os.Stat(copied); !os.IsNotExist(err) {
		os.RemoveAll(copied)
		t.Errorf("expected temporary copy to be removed")
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("original directory should not be removed: %v", err)
	}

	files := readArchive(t, name)
	if files["source/index.html"] != "<p>x</p>" {
		t.Errorf("copied file missing from report: %v", files)
	}
}

func TestReport_StoreDataVersionsNames(t *testing.T) {
	r, name := newTestReport(t)

	r.StoreData("page", []byte("first"))
	r.StoreData("page", []byte("second"))

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error: %v", err)
	}

	files := readArchive(t, name)
	if files["page"] != "first" {
		t.Errorf("page = %q, want first", files["page"])
	}
	var versioned int
	for n, data := range files {
		if strings.HasPrefix(n, "page-") && data == "second" {
			versioned++
		}
	}
	if versioned != 1 {
		t.Errorf("expected one versioned entry, archive has %v", files)
	}
}

func TestReport_ConcurrentStore(t *testing.T) {
	r, name := newTestReport(t)

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Go(func() {
			r.StoreData(fmt.Sprintf("item-%d", i), []byte("data"))
		})
	}
	wg.Wait()

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error: %v", err)
	}
	// 32 items plus manifest
	if files := readArchive(t, name); len(files) != 33 {
		t.Errorf("archive has %d files, want 33", len(files))
	}
}

func TestPrepareManifest_NaturalOrder(t *testing.T) {
	entries := map[string]entry{
		"page-10": {data: []byte("x")},
		"page-2":  {data: []byte("x")},
		"page-1":  {data: []byte("x")},
	}
	names, buf := prepareManifest(entries)

	if got, want := strings.Join(names, ","), "page-1,page-2,page-10"; got != want {
		t.Errorf("manifest order = %s, want %s", got, want)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 3 {
		t.Errorf("manifest has %d lines, want 3", lines)
	}
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	// must not panic
	r.Store("a", "b")
	r.StoreData("a", nil)
	if err := r.StoreCopy("a", "b"); err != nil {
		t.Errorf("StoreCopy on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name of nil report should be empty")
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}
