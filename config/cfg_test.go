package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pervade/common"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}

	if cfg.Document.Title != "Worm" {
		t.Errorf("Title = %q, want Worm", cfg.Document.Title)
	}
	if cfg.Document.Author != "JOHN McCRAE" {
		t.Errorf("Author = %q, want JOHN McCRAE", cfg.Document.Author)
	}

	if cfg.Document.BaseFontSize != 28 {
		t.Errorf("BaseFontSize = %d, want 28", cfg.Document.BaseFontSize)
	}

	if cfg.Source.EpilogueArc != 31 {
		t.Errorf("EpilogueArc = %d, want 31", cfg.Source.EpilogueArc)
	}

	if len(cfg.Source.ContentQuery) == 0 || len(cfg.Source.HeadingQuery) == 0 || len(cfg.Source.LinkQuery) == 0 {
		t.Error("Expected all source queries to have defaults")
	}

	found := false
	for _, c := range cfg.Source.Corrections {
		if c.Arc == 31 && c.Chapter == 2 && c.Title == "E.2" {
			found = true
		}
	}
	if !found {
		t.Error("Expected default corrections to include E.2")
	}

	if cfg.Output.Mode != common.OutputModeChapters {
		t.Errorf("Output mode = %v, want chapters", cfg.Output.Mode)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
document:
  pen_name: "SOMEBODY"
  cover_filler_lines: 10
source:
  nap_seconds: 3
  original_titles: true
overrides:
  - arc: 30
    chapter: 7
    typeface: 2
    font_size: 24
    alignment: left
    indent: false
    space_after: 120
output:
  mode: arcs
logging:
  console:
    level: debug
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Document.PenName != "SOMEBODY" {
		t.Errorf("PenName = %q, want SOMEBODY", cfg.Document.PenName)
	}

	// untouched fields keep template defaults
	if cfg.Document.Author != "JOHN McCRAE" {
		t.Errorf("Author = %q, want template default", cfg.Document.Author)
	}

	if cfg.Source.NapSeconds != 3 {
		t.Errorf("NapSeconds = %d, want 3", cfg.Source.NapSeconds)
	}

	if !cfg.Source.OriginalTitles {
		t.Error("Expected OriginalTitles to be true")
	}

	if cfg.Output.Mode != common.OutputModeArcs {
		t.Errorf("Output mode = %v, want arcs", cfg.Output.Mode)
	}

	if len(cfg.Overrides) != 1 {
		t.Fatalf("Overrides length = %d, want 1", len(cfg.Overrides))
	}
	ov := cfg.Overrides[0]
	if ov.Arc != 30 || ov.Chapter != 7 {
		t.Errorf("Override key = %d.%d, want 30.7", ov.Arc, ov.Chapter)
	}
	if ov.Alignment != common.AlignmentLeft {
		t.Errorf("Override alignment = %v, want left", ov.Alignment)
	}
	if ov.Typeface != 2 || ov.FontSize != 24 || ov.SpaceAfter != 120 {
		t.Errorf("Override values = %d/%d/%d, want 2/24/120", ov.Typeface, ov.FontSize, ov.SpaceAfter)
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `version: 1
document:
  pen_name: "X"
  invalid indent
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadConfiguration_UnknownFields(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "unknown.yaml")

	configContent := `version: 1
document:
  no_such_field: true
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for unknown fields")
	}
}

func TestLoadConfiguration_BadOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")

	configContent := `version: 1
overrides:
  - arc: 0
    chapter: 1
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected validation error for arc 0")
	}
}

func TestOverrideMap(t *testing.T) {
	cfg := &Config{
		Overrides: []FormattingOverride{
			{Arc: 3, Chapter: 2, Alignment: common.AlignmentCenter},
			{Arc: 31, Chapter: 1, Typeface: 1},
		},
	}

	m := cfg.OverrideMap()
	if len(m) != 2 {
		t.Fatalf("OverrideMap length = %d, want 2", len(m))
	}

	ov, ok := m[OverrideKey{Arc: 3, Chapter: 2}]
	if !ok {
		t.Fatal("Expected override for 3.2")
	}
	if ov.Alignment != common.AlignmentCenter {
		t.Errorf("Alignment = %v, want center", ov.Alignment)
	}

	if _, ok := m[OverrideKey{Arc: 3, Chapter: 3}]; ok {
		t.Error("Did not expect override for 3.3")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !strings.Contains(string(data), "version: 1") {
		t.Error("Expected prepared template to contain version")
	}
	if !strings.Contains(string(data), "index_url") {
		t.Error("Expected prepared template to contain source section")
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	out := string(data)
	for _, want := range []string{"author: JOHN McCRAE", "epilogue_arc: 31", "mode: chapters"} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump output missing %q", want)
		}
	}
}

func TestParseImageResizeMode(t *testing.T) {
	tests := []struct {
		input    string
		expected ImageResizeMode
		wantErr  bool
	}{
		{"none", ImageResizeModeNone, false},
		{"keepAR", ImageResizeModeKeepAR, false},
		{"stretch", ImageResizeModeStretch, false},
		{"bogus", ImageResizeModeNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseImageResizeMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseImageResizeMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("ParseImageResizeMode(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(string) bool
	}{
		{"plain", "01-01 Gestation", func(s string) bool { return s == "01-01 Gestation" }},
		{"separators", "a/b" + string(os.PathListSeparator) + "c", func(s string) bool { return !strings.ContainsRune(s, os.PathSeparator) }},
		{"empty", "", func(s string) bool { return s == "_bad_file_name_" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanFileName(tt.input); !tt.check(got) {
				t.Errorf("CleanFileName(%q) = %q", tt.input, got)
			}
		})
	}
}
