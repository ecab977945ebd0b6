// Package convert turns fetched serial pages into rich text documents.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pervade/archive"
	"pervade/common"
	"pervade/content"
	"pervade/content/text"
	"pervade/fetch"
	"pervade/rtf"
	"pervade/serial"
	"pervade/state"
	imgutil "pervade/utils/images"
)

// Run converts the selected arcs and chapters. Selection arguments name
// whole arcs ("3") or single chapters ("3.2"), no arguments select the
// whole serial. Chapters are processed strictly in index order, one
// finished before the next begins.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	if cmd.Bool("join") {
		env.Cfg.Output.Mode = common.OutputModeArcs
	}
	if cmd.Bool("original-titles") {
		env.Cfg.Source.OriginalTitles = true
	}
	env.WithCover = cmd.Bool("cover")
	env.MirrorPath = cmd.String("mirror")
	env.SaveMirrorPath = cmd.String("save-mirror")

	if dst := cmd.String("output"); len(dst) > 0 {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
		env.Cfg.Output.DestinationPath = dst
	}

	log.Info("Processing starting",
		zap.String("source", sourceName(env)),
		zap.Stringer("mode", env.Cfg.Output.Mode),
		zap.Strings("selection", cmd.Args().Slice()))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	src, closeSrc, err := openSource(env, log)
	if err != nil {
		return err
	}
	defer closeSrc()

	var saver *archive.Writer
	if len(env.SaveMirrorPath) > 0 {
		if saver, err = archive.NewWriter(env.SaveMirrorPath, log); err != nil {
			return fmt.Errorf("unable to prepare pages mirror: %w", err)
		}
		// pages stored before a failure still make the mirror
		defer func() {
			if e := saver.Close(); e != nil {
				err = multierr.Append(err, fmt.Errorf("unable to save pages mirror: %w", e))
			}
		}()
	}

	assets, err := loadAssets(env, log)
	if err != nil {
		return err
	}

	index, err := buildIndex(ctx, env, src, saver, log)
	if err != nil {
		return err
	}

	plan, selErr := buildPlan(index, cmd.Args().Slice())
	var errs error
	if selErr != nil {
		if len(plan) == 0 {
			return selErr
		}
		log.Error("Ignoring selections missing from the index", zap.Strings("selection", selErr.Invalid))
		errs = multierr.Append(errs, selErr)
	}
	if len(plan) == 0 {
		return errors.New("nothing to convert")
	}

	conv, err := newConverter(env, src, saver, assets, log)
	if err != nil {
		return err
	}

	for _, item := range plan {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		if err := conv.chapter(ctx, item); err != nil {
			log.Error("Unable to convert chapter",
				zap.String("chapter", item.chapter.Title), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// List prints the arc and chapter table parsed from the contents page.
func List(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("list")

	if cmd.Bool("original-titles") {
		env.Cfg.Source.OriginalTitles = true
	}
	env.MirrorPath = cmd.String("mirror")

	src, closeSrc, err := openSource(env, log)
	if err != nil {
		return err
	}
	defer closeSrc()

	index, err := buildIndex(ctx, env, src, nil, log)
	if err != nil {
		return err
	}

	for _, arcNum := range index.Numbers() {
		arc := index.Arc(arcNum)
		fmt.Fprintf(os.Stdout, "%d. %s\n", arc.Number, arc.Title)
		for _, ch := range arc.Chapters {
			fmt.Fprintf(os.Stdout, "    %d. %s ... %s\n", ch.Number, ch.Title, ch.URL)
		}
	}
	return nil
}

func sourceName(env *state.LocalEnv) string {
	if len(env.MirrorPath) > 0 {
		return env.MirrorPath
	}
	return env.Cfg.Source.IndexURL
}

// openSource decides where pages come from for this run, the live site or
// a previously saved mirror.
func openSource(env *state.LocalEnv, log *zap.Logger) (fetch.Source, func(), error) {
	if len(env.MirrorPath) == 0 {
		return fetch.NewClient(&env.Cfg.Source, log), func() {}, nil
	}

	m, err := archive.OpenMirror(env.MirrorPath, log)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Reading pages from mirror", zap.String("path", env.MirrorPath), zap.Int("pages", m.Len()))
	if env.Rpt != nil {
		env.Rpt.StoreData("mirror.txt", []byte(m.String()))
	}
	return m, func() { m.Close() }, nil
}

func buildIndex(ctx context.Context, env *state.LocalEnv, src fetch.Source, saver *archive.Writer, log *zap.Logger) (*serial.Index, error) {
	data, err := src.Index(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch the table of contents: %w", err)
	}
	if saver != nil {
		if err := saver.StoreIndex(data); err != nil {
			return nil, err
		}
	}

	parser, err := serial.NewParser(&env.Cfg.Source, log)
	if err != nil {
		return nil, err
	}
	index, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if env.Rpt != nil {
		env.Rpt.StoreData("index.txt", []byte(index.String()))
	}
	return index, nil
}

// assets holds the front matter material shared by every produced file.
type assets struct {
	coverArt    []string
	frontMatter []string
	cover       *imgutil.Cover // nil when no cover image was requested
}

// loadAssets reads configured asset files, falling back to the built-in
// defaults. A configured path that cannot be read fails the run before
// any output is produced.
func loadAssets(env *state.LocalEnv, log *zap.Logger) (*assets, error) {
	art, err := assetLines(env.Cfg.Assets.CoverArtPath, env.DefaultCoverArt)
	if err != nil {
		return nil, fmt.Errorf("unable to read cover art from %q: %w", env.Cfg.Assets.CoverArtPath, err)
	}
	matter, err := assetLines(env.Cfg.Assets.FrontMatterPath, env.DefaultFrontMatter)
	if err != nil {
		return nil, fmt.Errorf("unable to read front matter from %q: %w", env.Cfg.Assets.FrontMatterPath, err)
	}
	a := &assets{coverArt: art, frontMatter: matter}

	if env.WithCover {
		data := env.DefaultCoverImage
		if len(env.Cfg.Assets.CoverImagePath) > 0 {
			if data, err = os.ReadFile(env.Cfg.Assets.CoverImagePath); err != nil {
				return nil, fmt.Errorf("unable to read cover image from %q: %w", env.Cfg.Assets.CoverImagePath, err)
			}
		}
		if a.cover, err = imgutil.PrepareCover(data, &env.Cfg.Assets, log); err != nil {
			return nil, fmt.Errorf("unable to prepare cover image: %w", err)
		}
	}
	return a, nil
}

func assetLines(path string, fallback []byte) ([]string, error) {
	data := fallback
	if len(path) > 0 {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}
	lines := strings.Split(strings.TrimRight(string(data), "\r\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines, nil
}

// converter carries everything the per-chapter loop needs.
type converter struct {
	env       *state.LocalEnv
	log       *zap.Logger
	src       fetch.Source
	saver     *archive.Writer
	extractor *content.Extractor
	formatter *Formatter
	counter   *text.Counter
	assets    *assets
}

func newConverter(env *state.LocalEnv, src fetch.Source, saver *archive.Writer, a *assets, log *zap.Logger) (*converter, error) {
	extractor, err := content.NewExtractor(&env.Cfg.Source, log)
	if err != nil {
		return nil, err
	}
	return &converter{
		env:       env,
		log:       log,
		src:       src,
		saver:     saver,
		extractor: extractor,
		formatter: NewFormatter(env.Cfg, log),
		counter:   text.NewCounter(log),
		assets:    a,
	}, nil
}

// chapter fetches, transcodes and writes a single chapter. In joined mode
// the arc file is created by the first selected chapter and appended to
// by the rest, the handle is released after every chapter.
func (c *converter) chapter(ctx context.Context, item planItem) (rerr error) {
	id := fmt.Sprintf("%02d-%02d", item.chapter.Arc, item.chapter.Number)

	var outputName string
	c.log.Info("Conversion starting",
		zap.String("chapter", id), zap.String("title", item.chapter.Title), zap.String("url", item.chapter.URL))
	defer func(start time.Time) {
		// NOTE: when multiple chapters are being processed a bad page
		// should not stop the batch.
		if r := recover(); r != nil {
			c.log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else {
			c.log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	data, err := c.src.Chapter(ctx, item.chapter.URL)
	if err != nil {
		return fmt.Errorf("unable to fetch chapter page: %w", err)
	}
	if c.saver != nil {
		if err := c.saver.StoreChapter(item.chapter.URL, data); err != nil {
			return err
		}
	}

	chapter, err := c.extractor.Extract(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if c.env.Rpt != nil {
		c.env.Rpt.StoreData("chapter-"+id+".txt", []byte(chapter.String()))
	}

	outputName = buildOutputPath(item, c.env)

	joined := c.env.Cfg.Output.Mode.Joined()
	f, err := openOutput(outputName, joined && !item.first)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); e != nil {
			rerr = multierr.Append(rerr, fmt.Errorf("unable to finalize output file: %w", e))
		}
	}()

	w := rtf.NewWriter(f, &c.env.Cfg.Document)
	if !joined || item.first {
		if err := w.Header(); err != nil {
			return err
		}
	}
	if item.first {
		if err := w.FrontMatter(c.coverFor(item.arc)); err != nil {
			return err
		}
	}
	if err := w.BeginChapter(item.arc.Title, item.chapter.Title); err != nil {
		return err
	}

	var st text.Stats
	for _, p := range chapter.Paragraphs {
		body := Transcode(c.log, p.Markup)
		if len(body) == 0 {
			continue
		}
		style := c.formatter.Style(item.chapter.Arc, item.chapter.Number, p.Markup)
		if err := w.Paragraph(style, body); err != nil {
			return err
		}
		c.counter.Observe(&st, p.Text)
	}
	c.log.Debug("Chapter written", zap.String("chapter", id),
		zap.Int("paragraphs", st.Paragraphs), zap.Int("sentences", st.Sentences), zap.Int("words", st.Words))

	switch {
	case !joined:
		if err := w.End(); err != nil {
			return err
		}
	case item.last:
		if err := w.ArcEnd(c.arcEndLabel(item.arc)); err != nil {
			return err
		}
	}

	if c.env.Rpt != nil && (!joined || item.last) {
		c.env.Rpt.Store("result-"+filepath.Base(outputName), outputName)
	}
	return nil
}

// coverFor builds the front matter for an arc's first chapter. Per-chapter
// files open with the same arc cover the joined file would.
func (c *converter) coverFor(arc *serial.ArcEntry) *rtf.Cover {
	cover := &rtf.Cover{
		Title:       arc.Title,
		Author:      c.env.Cfg.Document.Author,
		PenName:     c.env.Cfg.Document.PenName,
		Art:         c.assets.coverArt,
		FrontMatter: c.assets.frontMatter,
	}
	if c.assets.cover != nil {
		cover.Image = c.assets.cover.Data
		cover.ImageWidth = c.assets.cover.Width
		cover.ImageHeight = c.assets.cover.Height
	}
	return cover
}

// arcEndLabel picks the end of story marker text. The epilogue arc closes
// the whole serial and carries the document title instead of its number.
func (c *converter) arcEndLabel(arc *serial.ArcEntry) string {
	if arc.Number == c.env.Cfg.Source.EpilogueArc {
		return c.env.Cfg.Document.Title
	}
	return fmt.Sprintf("Arc %d", arc.Number)
}

func openOutput(name string, appendToArc bool) (*os.File, error) {
	if appendToArc {
		return os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	}
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("unable to create output directory: %w", err)
		}
	}
	return os.Create(name)
}
