// rtfdump reads RTF files produced by pervade, parses the group structure
// back and writes text dumps suitable for comparing runs. Pictures embedded
// into the front matter can be extracted into a separate archive.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"pervade/cmd/debug/internal/dumputil"
	"pervade/rtf"
)

func main() {
	all := flag.Bool("all", false, "enable all dump flags (-dump, -text, -pictures)")
	dump := flag.Bool("dump", false, "dump group tree into <file>-dump.txt")
	text := flag.Bool("text", false, "dump flattened document text into <file>-text.txt")
	pictures := flag.Bool("pictures", false, "extract embedded pictures into <file>-pictures.zip")
	overwrite := flag.Bool("overwrite", false, "overwrite existing output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: rtfdump [-all] [-dump] [-text] [-pictures] [-overwrite] <file.rtf> [outdir]\n\n")
		fmt.Fprintf(os.Stderr, "Reads RTF files produced by pervade and dumps their structure.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}

	if *all {
		*dump = true
		*text = true
		*pictures = true
	}

	if !*dump && !*text && !*pictures {
		flag.Usage()
		os.Exit(2)
	}

	defer func(startedAt time.Time) {
		fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", time.Since(startedAt))
	}(time.Now())

	inPath := flag.Arg(0)
	outDir := ""
	if flag.NArg() == 2 {
		outDir = flag.Arg(1)
	}

	b, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", inPath, err)
		os.Exit(1)
	}

	g, err := rtf.Parse(b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse %s: %v\n", inPath, err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "%s: %d paragraph(s), %d section break(s), %d picture(s)\n",
		inPath, g.Count("par"), g.Count("sect"), g.Count("pict"))

	if *dump {
		if err := dumputil.DumpTreeTxt(g, inPath, outDir, *overwrite); err != nil {
			fmt.Fprintf(os.Stderr, "dump: %v\n", err)
			os.Exit(1)
		}
	}

	if *text {
		if err := dumputil.DumpTextTxt(g, inPath, outDir, *overwrite); err != nil {
			fmt.Fprintf(os.Stderr, "dump text: %v\n", err)
			os.Exit(1)
		}
	}

	if *pictures {
		if err := dumputil.DumpPictures(g, inPath, outDir, *overwrite); err != nil {
			fmt.Fprintf(os.Stderr, "dump pictures: %v\n", err)
			os.Exit(1)
		}
	}
}
