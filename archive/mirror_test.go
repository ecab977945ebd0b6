package archive

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestEntryName(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "chapter",
			url:  "https://parahumans.wordpress.com/2011/06/11/1-1/",
			want: "parahumans.wordpress.com/2011/06/11/1-1.html",
		},
		{
			name: "no_trailing_slash",
			url:  "https://parahumans.wordpress.com/2011/06/11/1-1",
			want: "parahumans.wordpress.com/2011/06/11/1-1.html",
		},
		{
			name: "site_root",
			url:  "https://parahumans.wordpress.com/",
			want: "parahumans.wordpress.com/index.html",
		},
		{
			name: "hostless",
			url:  "not a url at all",
			want: "not-a-url-at-all.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EntryName(tt.url); got != tt.want {
				t.Errorf("EntryName(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestMirrorRoundTrip(t *testing.T) {
	log := zaptest.NewLogger(t)
	mirrorPath := filepath.Join(t.TempDir(), "mirror.zip")

	const (
		chapterURL = "https://parahumans.wordpress.com/2011/06/11/1-1/"
		indexPage  = "<html><body>contents</body></html>"
		chapter    = "<html><body>Gestation 1.1</body></html>"
	)

	w, err := NewWriter(mirrorPath, log)
	if err != nil {
		t.Fatalf("NewWriter() error: %v", err)
	}
	if err := w.StoreIndex([]byte(indexPage)); err != nil {
		t.Fatalf("StoreIndex() error: %v", err)
	}
	if err := w.StoreChapter(chapterURL, []byte(chapter)); err != nil {
		t.Fatalf("StoreChapter() error: %v", err)
	}
	// repeated pages keep the first copy
	if err := w.StoreChapter(chapterURL, []byte("second copy")); err != nil {
		t.Fatalf("StoreChapter() repeat error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	if _, err := os.Stat(mirrorPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary mirror file was not removed")
	}

	m, err := OpenMirror(mirrorPath, log)
	if err != nil {
		t.Fatalf("OpenMirror() error: %v", err)
	}
	defer m.Close()

	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}

	ctx := context.Background()

	got, err := m.Index(ctx)
	if err != nil {
		t.Fatalf("Index() error: %v", err)
	}
	if string(got) != indexPage {
		t.Errorf("Index() = %q, want %q", got, indexPage)
	}

	got, err = m.Chapter(ctx, chapterURL)
	if err != nil {
		t.Fatalf("Chapter() error: %v", err)
	}
	if string(got) != chapter {
		t.Errorf("Chapter() = %q, want %q", got, chapter)
	}

	if _, err := m.Chapter(ctx, "https://parahumans.wordpress.com/2011/06/14/1-2/"); err == nil {
		t.Error("Chapter() on a page that was never stored should fail")
	}
}

func TestMirrorNoDataDescriptors(t *testing.T) {
	mirrorPath := filepath.Join(t.TempDir(), "mirror.zip")

	w, err := NewWriter(mirrorPath, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewWriter() error: %v", err)
	}
	if err := w.StoreIndex([]byte("<html></html>")); err != nil {
		t.Fatalf("StoreIndex() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	rc, err := zip.OpenReader(mirrorPath)
	if err != nil {
		t.Fatalf("unable to reopen mirror: %v", err)
	}
	defer rc.Close()

	for _, f := range rc.File {
		if f.Flags&0x8 != 0 {
			t.Errorf("entry %q still has the data descriptor flag set", f.Name)
		}
	}
}

func TestMirrorContextCanceled(t *testing.T) {
	mirrorPath := filepath.Join(t.TempDir(), "mirror.zip")

	w, err := NewWriter(mirrorPath, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewWriter() error: %v", err)
	}
	if err := w.StoreIndex([]byte("<html></html>")); err != nil {
		t.Fatalf("StoreIndex() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	m, err := OpenMirror(mirrorPath, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("OpenMirror() error: %v", err)
	}
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Index(ctx); err == nil {
		t.Error("Index() with canceled context should fail")
	}
}

func TestOpenMirrorUnsafeEntry(t *testing.T) {
	mirrorPath := filepath.Join(t.TempDir(), "evil.zip")

	f, err := os.Create(mirrorPath)
	if err != nil {
		t.Fatalf("unable to create archive: %v", err)
	}
	zw := zip.NewWriter(f)
	out, err := zw.CreateHeader(&zip.FileHeader{Name: "../escape.html"})
	if err != nil {
		t.Fatalf("unable to create entry: %v", err)
	}
	if _, err := out.Write([]byte("<html></html>")); err != nil {
		t.Fatalf("unable to write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("unable to close archive: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("unable to close file: %v", err)
	}

	if _, err := OpenMirror(mirrorPath, zaptest.NewLogger(t)); err == nil {
		t.Error("OpenMirror() should reject entries with path traversal")
	}
}

func TestMirrorString(t *testing.T) {
	mirrorPath := filepath.Join(t.TempDir(), "mirror.zip")

	w, err := NewWriter(mirrorPath, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewWriter() error: %v", err)
	}
	if err := w.StoreChapter("https://example.com/ch/10", []byte("ten")); err != nil {
		t.Fatalf("StoreChapter() error: %v", err)
	}
	if err := w.StoreChapter("https://example.com/ch/2", []byte("two")); err != nil {
		t.Fatalf("StoreChapter() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	m, err := OpenMirror(mirrorPath, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("OpenMirror() error: %v", err)
	}
	defer m.Close()

	dump := m.String()
	if !strings.Contains(dump, "example.com/ch/2.html") || !strings.Contains(dump, "example.com/ch/10.html") {
		t.Fatalf("String() is missing entries:\n%s", dump)
	}
	// entries are listed in natural order, 2 before 10
	if strings.Index(dump, "ch/2.html") > strings.Index(dump, "ch/10.html") {
		t.Errorf("String() entries are not naturally ordered:\n%s", dump)
	}
}
