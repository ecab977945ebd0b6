package archive

import (
	"fmt"
	"os"
	"path"
	"strings"

	fixzip "github.com/hidez8891/zip"
)

// copyZipWithoutDataDescriptors rewrites an archive entry by entry with
// the data descriptor flag cleared, producing the streamable-free layout
// some zip readers insist on.
func copyZipWithoutDataDescriptors(from, to string) error {

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	return nil
}

// isSafePath returns false for entry names that could escape the
// mirror's namespace: absolute paths and those containing ".."
// components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
