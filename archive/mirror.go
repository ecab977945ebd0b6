// Package archive stores fetched serial pages in a zip mirror so later
// runs can convert without touching the network.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"maps"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"github.com/h2non/filetype"
	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pervade/utils/debug"
)

// indexEntry is the fixed archive name for the table of contents page.
const indexEntry = "index.html"

// EntryName derives the archive entry name for a chapter URL. The name
// depends only on the URL, so a mirror written by one run resolves the
// same pages for any later run.
func EntryName(chapterURL string) string {
	u, err := url.Parse(chapterURL)
	if err != nil || u.Host == "" {
		return slug.Make(chapterURL) + ".html"
	}
	p := strings.Trim(u.Path, "/")
	if p == "" {
		return path.Join(u.Host, indexEntry)
	}
	return path.Join(u.Host, p) + ".html"
}

// Writer accumulates pages into a mirror archive as a run fetches them.
// Pages stream into a temporary file next to the target path; Close
// finalizes the mirror.
type Writer struct {
	log     *zap.Logger
	path    string
	tmpName string
	f       *os.File
	zw      *zip.Writer
	seen    map[string]bool
}

// NewWriter creates a mirror archive writer for the given target path.
func NewWriter(mirrorPath string, log *zap.Logger) (*Writer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(mirrorPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("unable to create mirror directory: %w", err)
		}
	}

	tmpName := mirrorPath + ".tmp"
	f, err := os.Create(tmpName)
	if err != nil {
		return nil, fmt.Errorf("unable to create mirror file: %w", err)
	}
	return &Writer{
		log:     log,
		path:    mirrorPath,
		tmpName: tmpName,
		f:       f,
		zw:      zip.NewWriter(f),
		seen:    make(map[string]bool),
	}, nil
}

// StoreIndex saves the table of contents page under its fixed name.
func (w *Writer) StoreIndex(data []byte) error {
	return w.store(indexEntry, data)
}

// StoreChapter saves a chapter page under its URL-derived name.
func (w *Writer) StoreChapter(chapterURL string, data []byte) error {
	return w.store(EntryName(chapterURL), data)
}

func (w *Writer) store(name string, data []byte) error {
	if w.seen[name] {
		w.log.Debug("Mirror entry already stored", zap.String("entry", name))
		return nil
	}
	w.seen[name] = true

	out, err := w.zw.Create(name)
	if err != nil {
		return fmt.Errorf("unable to create mirror entry (%s): %w", name, err)
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("unable to write mirror entry (%s): %w", name, err)
	}
	w.log.Debug("Stored mirror entry", zap.String("entry", name), zap.Int("size", len(data)))
	return nil
}

// Close flushes the archive and rewrites it into its final location
// without data descriptors, so picky zip readers accept the result.
func (w *Writer) Close() (err error) {
	if err = w.zw.Close(); err != nil {
		err = fmt.Errorf("unable to close mirror archive: %w", err)
	}
	if e := w.f.Close(); e != nil {
		err = multierr.Append(err, fmt.Errorf("unable to finalize mirror file: %w", e))
	}
	if err != nil {
		return err
	}
	defer os.Remove(w.tmpName)

	if err := copyZipWithoutDataDescriptors(w.tmpName, w.path); err != nil {
		return err
	}
	w.log.Info("Saved pages mirror", zap.String("path", w.path), zap.Int("pages", len(w.seen)))
	return nil
}

// Mirror reads pages back from a previously saved archive. It serves
// the same requests a live source would, resolving them to entries
// instead of URLs.
type Mirror struct {
	log     *zap.Logger
	path    string
	rc      *zip.ReadCloser
	entries map[string]*zip.File
}

// OpenMirror opens a mirror archive for reading.
func OpenMirror(mirrorPath string, log *zap.Logger) (*Mirror, error) {
	if log == nil {
		log = zap.NewNop()
	}

	rc, err := zip.OpenReader(mirrorPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open mirror (%s): %w", mirrorPath, err)
	}

	entries := make(map[string]*zip.File)
	for _, f := range rc.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			rc.Close()
			return nil, fmt.Errorf("mirror entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		entries[name] = f
	}
	return &Mirror{log: log, path: mirrorPath, rc: rc, entries: entries}, nil
}

// Index returns the stored table of contents page.
func (m *Mirror) Index(ctx context.Context) ([]byte, error) {
	return m.page(ctx, indexEntry)
}

// Chapter returns the stored page for a chapter URL.
func (m *Mirror) Chapter(ctx context.Context, chapterURL string) ([]byte, error) {
	return m.page(ctx, EntryName(chapterURL))
}

func (m *Mirror) page(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, ok := m.entries[name]
	if !ok {
		return nil, fmt.Errorf("page %q is not in the mirror (%s)", name, m.path)
	}

	in, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open mirror entry (%s): %w", name, err)
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("unable to read mirror entry (%s): %w", name, err)
	}

	// Pages are text. A recognized binary signature means the mirror
	// holds something other than what was fetched.
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		m.log.Warn("Mirror entry does not look like a page",
			zap.String("entry", name),
			zap.String("type", kind.MIME.Value))
	}

	m.log.Debug("Read mirror entry", zap.String("entry", name), zap.Int("size", len(data)))
	return data, nil
}

// Len returns the number of stored pages.
func (m *Mirror) Len() int {
	return len(m.entries)
}

// Close releases the underlying archive.
func (m *Mirror) Close() error {
	return m.rc.Close()
}

func (m *Mirror) String() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "Mirror: %s", m.path)

	names := slices.Collect(maps.Keys(m.entries))
	sort.Sort(natural.StringSlice(names))
	for _, name := range names {
		tw.Line(1, "%s: %d bytes", name, m.entries[name].UncompressedSize64)
	}
	return tw.String()
}
