package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"pervade/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	FontsConfig struct {
		Roman string `yaml:"roman" validate:"required"` // \f0
		Sans  string `yaml:"sans" validate:"required"`  // \f1
		Mono  string `yaml:"mono" validate:"required"`  // \f2
	}

	// All margin and spacing values are in twips, matching what ends up in
	// the output verbatim.
	PageConfig struct {
		MarginTop    int `yaml:"margin_top" validate:"min=0"`
		MarginBottom int `yaml:"margin_bottom" validate:"min=0"`
		MarginLeft   int `yaml:"margin_left" validate:"min=0"`
		MarginRight  int `yaml:"margin_right" validate:"min=0"`
	}

	DocumentConfig struct {
		Title            string      `yaml:"title" validate:"required"`
		Author           string      `yaml:"author" validate:"required"`
		PenName          string      `yaml:"pen_name"`
		LanguageCode     int         `yaml:"language_code" validate:"min=1"`
		BaseFontSize     int         `yaml:"base_font_size" validate:"min=2"` // half-points
		LineSpacing      int         `yaml:"line_spacing" validate:"min=0"`
		FirstLineIndent  int         `yaml:"first_line_indent" validate:"min=0"`
		BlockPadding     int         `yaml:"block_padding" validate:"min=0"`
		CoverFillerLines int         `yaml:"cover_filler_lines" validate:"min=0"`
		Fonts            FontsConfig `yaml:"fonts"`
		Page             PageConfig  `yaml:"page"`
	}

	// CorrectionConfig describes a chapter missing from the source index,
	// inserted at the given position after parsing.
	CorrectionConfig struct {
		Arc     int    `yaml:"arc" validate:"min=1"`
		Chapter int    `yaml:"chapter" validate:"min=1"`
		Title   string `yaml:"title" validate:"required"`
		URL     string `yaml:"url" validate:"required,url"`
	}

	SourceConfig struct {
		IndexURL       string             `yaml:"index_url" validate:"required,url"`
		UserAgent      string             `yaml:"user_agent" validate:"required"`
		Charset        string             `yaml:"charset"` // force when server mislabels, IANA name
		NapSeconds     int                `yaml:"nap_seconds" validate:"min=0"`
		EpilogueArc    int                `yaml:"epilogue_arc" validate:"min=1"`
		OriginalTitles bool               `yaml:"original_titles"`
		HeadingQuery   string             `yaml:"heading_query" validate:"required"`
		LinkQuery      string             `yaml:"link_query" validate:"required"`
		ContentQuery   string             `yaml:"content_query" validate:"required"`
		Corrections    []CorrectionConfig `yaml:"corrections" validate:"dive"`
	}

	// FormattingOverride replaces derived paragraph formatting for every
	// paragraph of a single chapter. Zero values mean "keep the document
	// default" except Alignment which is emitted as configured.
	FormattingOverride struct {
		Arc        int              `yaml:"arc" validate:"min=1"`
		Chapter    int              `yaml:"chapter" validate:"min=1"`
		Typeface   int              `yaml:"typeface" validate:"min=0,max=2"`
		FontSize   int              `yaml:"font_size" validate:"min=0"` // half-points
		Alignment  common.Alignment `yaml:"alignment" validate:"gte=0"`
		Indent     bool             `yaml:"indent"`
		SpaceAfter int              `yaml:"space_after" validate:"min=0"` // twips
	}

	AssetsConfig struct {
		CoverArtPath    string          `yaml:"cover_art_path" sanitize:"assure_file_access"`
		FrontMatterPath string          `yaml:"front_matter_path" sanitize:"assure_file_access"`
		CoverImagePath  string          `yaml:"cover_image_path" sanitize:"assure_file_access"`
		Resize          ImageResizeMode `yaml:"resize" validate:"gte=0"`
		Width           int             `yaml:"width" validate:"min=600"`  // pixels
		Height          int             `yaml:"height" validate:"min=800"` // pixels
		Grayscale       bool            `yaml:"grayscale"`
		JPEGQuality     int             `yaml:"jpeg_quality_level" validate:"min=40,max=100"`
	}

	OutputConfig struct {
		Mode                  common.OutputMode `yaml:"mode" validate:"gte=0"`
		DestinationPath       string            `yaml:"destination_path" sanitize:"path_clean"`
		OutputNameTemplate    string            `yaml:"output_name_template"`
		FileNameTransliterate bool              `yaml:"file_name_transliterate"`
	}

	Config struct {
		Version   int                  `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig       `yaml:"document"`
		Source    SourceConfig         `yaml:"source"`
		Overrides []FormattingOverride `yaml:"overrides" validate:"dive"`
		Assets    AssetsConfig         `yaml:"assets"`
		Output    OutputConfig         `yaml:"output"`
		Logging   LoggingConfig        `yaml:"logging"`
		Reporting ReporterConfig       `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

// OverrideKey addresses a single chapter in the overrides map.
type OverrideKey struct {
	Arc     int
	Chapter int
}

// OverrideMap indexes formatting overrides for sparse by-chapter lookup.
// Chapters without an entry keep derived formatting.
func (c *Config) OverrideMap() map[OverrideKey]*FormattingOverride {
	m := make(map[OverrideKey]*FormattingOverride, len(c.Overrides))
	for i := range c.Overrides {
		ov := &c.Overrides[i]
		m[OverrideKey{Arc: ov.Arc, Chapter: ov.Chapter}] = ov
	}
	return m
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration tamplate to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
