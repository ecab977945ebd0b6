// Package dumputil provides output helpers for the rtfdump debug tool. It
// renders parsed group trees into dump text and extracts embedded pictures.
package dumputil

import (
	"archive/zip"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"pervade/rtf"
	"pervade/utils/debug"
)

const textPreviewLen = 60

// DumpTreeTxt writes the parsed group tree to <stem>-dump.txt.
func DumpTreeTxt(g *rtf.Group, inPath, outDir string, overwrite bool) error {
	tw := debug.NewTreeWriter()
	renderGroup(tw, 0, g)
	return WriteOutput(inPath, outDir, "-dump.txt", []byte(tw.String()), overwrite)
}

// DumpTextTxt writes the flattened document text to <stem>-text.txt.
func DumpTextTxt(g *rtf.Group, inPath, outDir string, overwrite bool) error {
	return WriteOutput(inPath, outDir, "-text.txt", []byte(g.Text()), overwrite)
}

// renderGroup prints children in document order, consecutive controls
// collapsed into a single line, text quoted and truncated, picture data
// summarized instead of printed.
func renderGroup(tw *debug.TreeWriter, depth int, g *rtf.Group) {
	pict := hasControl(g, "pict")

	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			tw.Line(depth+1, "%s", run.String())
			run.Reset()
		}
	}

	tw.Line(depth, "group")
	for _, child := range g.Children {
		switch v := child.(type) {
		case rtf.Control:
			run.WriteString(renderControl(v))
		case string:
			flush()
			if pict {
				if data, err := hex.DecodeString(v); err == nil {
					tw.Line(depth+1, "picture %d bytes, %s", len(data), strings.TrimPrefix(ExtFromFiletype(data), "."))
				} else {
					tw.Line(depth+1, "picture data is not hex encoded")
				}
				continue
			}
			tw.TextBlock(depth+1, "text", truncate(v))
		case *rtf.Group:
			flush()
			renderGroup(tw, depth+1, v)
		}
	}
	flush()
}

func renderControl(c rtf.Control) string {
	if c.HasParam {
		return fmt.Sprintf("\\%s%d", c.Word, c.Param)
	}
	return "\\" + c.Word
}

func truncate(s string) string {
	if len(s) <= textPreviewLen {
		return s
	}
	return s[:textPreviewLen] + "..."
}

// DumpPictures writes every embedded picture into <stem>-pictures.zip with
// entry extensions detected from the decoded bytes.
func DumpPictures(g *rtf.Group, inPath, outDir string, overwrite bool) (retErr error) {
	pictures := collectPictures(g)

	base := filepath.Base(inPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	dir := filepath.Dir(inPath)
	if outDir != "" {
		dir = outDir
	}
	outPath := filepath.Join(dir, stem+"-pictures.zip")
	if _, err := os.Stat(outPath); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s (use -overwrite)", outPath)
		}
		if err := os.Remove(outPath); err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer func() { retErr = errors.Join(retErr, f.Close()) }()

	zw := zip.NewWriter(f)
	defer func() { retErr = errors.Join(retErr, zw.Close()) }()

	for i, data := range pictures {
		entryName := fmt.Sprintf("picture-%02d%s", i+1, ExtFromFiletype(data))
		w, err := zw.Create(entryName)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintf(os.Stderr, "pictures: wrote %d file(s) into %s\n", len(pictures), outPath)
	return nil
}

// collectPictures gathers decoded picture payloads in document order.
func collectPictures(g *rtf.Group) [][]byte {
	var out [][]byte
	if hasControl(g, "pict") {
		for _, child := range g.Children {
			if s, ok := child.(string); ok {
				if data, err := hex.DecodeString(s); err == nil && len(data) > 0 {
					out = append(out, data)
				}
			}
		}
	}
	for _, child := range g.Children {
		if sub, ok := child.(*rtf.Group); ok {
			out = append(out, collectPictures(sub)...)
		}
	}
	return out
}

func hasControl(g *rtf.Group, word string) bool {
	for _, child := range g.Children {
		if c, ok := child.(rtf.Control); ok && c.Word == word {
			return true
		}
	}
	return false
}

// WriteOutput writes data to <stem><suffix> in either the input file's directory or outDir.
func WriteOutput(inPath, outDir, suffix string, data []byte, overwrite bool) error {
	base := filepath.Base(inPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	dir := filepath.Dir(inPath)
	if outDir != "" {
		dir = outDir
	}
	outPath := filepath.Join(dir, stem+suffix)

	if _, err := os.Stat(outPath); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s (use -overwrite)", outPath)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
	return nil
}

// ExtFromFiletype detects the file extension from magic bytes.
func ExtFromFiletype(b []byte) string {
	kind, err := filetype.Match(b)
	if err == nil && kind != filetype.Unknown && kind.Extension != "" {
		return "." + kind.Extension
	}
	return ".bin"
}
