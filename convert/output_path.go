package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"pervade/config"
	"pervade/state"
)

const rtfExt = ".rtf"

// buildOutputPath returns the output file path for a plan item. It uses
// either the default naming scheme or a user-defined template, cleaning
// and optionally transliterating every path segment.
func buildOutputPath(item planItem, env *state.LocalEnv) string {
	outDir := env.Cfg.Output.DestinationPath
	defaultFile := buildDefaultFileName(item, env)

	if env.Cfg.Output.OutputNameTemplate == "" {
		return filepath.Join(outDir, defaultFile)
	}

	expandedName := expandOutputNameTemplate(item, env)
	if expandedName == "" {
		// fallback to default name if template expansion failed
		return filepath.Join(outDir, defaultFile)
	}

	return assemblePathWithSubdirs(outDir, expandedName, env)
}

// buildDefaultFileName names per-chapter files with zero-padded arc and
// chapter numbers followed by the chapter title. Joined arc files carry
// the arc title with colons replaced, those do not survive on every
// filesystem.
func buildDefaultFileName(item planItem, env *state.LocalEnv) string {
	var base string
	if env.Cfg.Output.Mode.Joined() {
		base = strings.ReplaceAll(item.arc.Title, ":", " -")
	} else {
		base = fmt.Sprintf("%02d-%02d %s", item.arc.Number, item.chapter.Number, item.chapter.Title)
	}
	return cleanPathSegment(base, env) + rtfExt
}

func expandOutputNameTemplate(item planItem, env *state.LocalEnv) string {
	values := buildTemplateValues(config.OutputNameTemplateFieldName, item, env.Cfg)
	expandedName, err := expandTemplate(config.OutputNameTemplateFieldName, env.Cfg.Output.OutputNameTemplate, values)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return filepath.FromSlash(expandedName)
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output
// path, cleaning and transliterating segments as needed.
func assemblePathWithSubdirs(outDir, expandedName string, env *state.LocalEnv) string {
	pathSegments := splitAndCleanPath(expandedName)

	if len(pathSegments) == 0 {
		return outDir
	}

	fileName := cleanPathSegment(pathSegments[len(pathSegments)-1], env) + rtfExt
	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)

	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}

	dirParts = append(dirParts, fileName)
	return filepath.Join(dirParts...)
}

func splitAndCleanPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
		path = head
	}

	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Output.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
