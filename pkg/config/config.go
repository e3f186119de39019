// Package config provides configuration loading for the NegEx dataset build.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete dataset build configuration.
type Config struct {
	Raw          RawConfig          `yaml:"raw"`
	Etc          EtcConfig          `yaml:"etc"`
	Glottolog    GlottologConfig    `yaml:"glottolog"`
	Output       OutputConfig       `yaml:"output"`
	Citation     CitationConfig     `yaml:"citation"`
	SelfCitation SelfCitationConfig `yaml:"self_citation"`
	Metadata     MetadataConfig     `yaml:"metadata"`
}

// RawConfig locates the curator's raw input files.
type RawConfig struct {
	// Dir is the raw data directory, relative to the dataset root.
	Dir string `yaml:"dir"`
	// Workbook is the xlsx file converted by the download command.
	Workbook string `yaml:"workbook"`
	// WorkbookURL is fetched into Dir when Workbook is missing (empty = never download).
	WorkbookURL string `yaml:"workbook_url"`
	// Data is the CSV sheet export holding one row per language.
	Data string `yaml:"data"`
	// Bibliography is the BibTeX file.
	Bibliography string `yaml:"bibliography"`
}

// EtcConfig locates the curator-maintained lookup tables.
type EtcConfig struct {
	Dir        string `yaml:"dir"`
	Languages  string `yaml:"languages"`
	Parameters string `yaml:"parameters"`
	Codes      string `yaml:"codes"`
}

// GlottologConfig locates the languoid export used to enrich languages.
type GlottologConfig struct {
	// Path is the languages_and_dialects_geo.csv export.
	Path string `yaml:"path"`
	// URL is downloaded to Path by the download command when set.
	URL string `yaml:"url"`
}

// OutputConfig controls where the CLDF dataset and its by-products go.
type OutputConfig struct {
	Dir string `yaml:"dir"`
	// SQLite is an optional database export of the dataset (empty = skip).
	SQLite string `yaml:"sqlite"`
	// Metrics is an optional Prometheus textfile with run counters (empty = skip).
	Metrics string `yaml:"metrics"`
}

// CitationConfig tunes citation normalisation.
type CitationConfig struct {
	// Corrections are literal, case-sensitive substitutions applied to raw citations.
	Corrections []Correction `yaml:"corrections"`
}

// Correction replaces From with To.
type Correction struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// SelfCitationConfig describes the dataset's own publication.
type SelfCitationConfig struct {
	ID     string            `yaml:"id"`
	Type   string            `yaml:"type"`
	Fields map[string]string `yaml:"fields"`
}

// MetadataConfig holds descriptive dataset metadata.
type MetadataConfig struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	URL      string `yaml:"url"`
	License  string `yaml:"license"`
	Citation string `yaml:"citation"`
}

// DefaultConfig returns a Config with the dataset's standard layout.
func DefaultConfig() *Config {
	return &Config{
		Raw: RawConfig{
			Dir:          "raw",
			Workbook:     "NegEx_CLDF.xlsx",
			Data:         "NegEx_CLDF.NegExCLLD.csv",
			Bibliography: "sources.bib",
		},
		Etc: EtcConfig{
			Dir:        "etc",
			Languages:  "languages.csv",
			Parameters: "parameters.csv",
			Codes:      "codes.csv",
		},
		Glottolog: GlottologConfig{
			Path: "raw/glottolog_languoids.csv",
		},
		Output: OutputConfig{
			Dir: "cldf",
		},
		Citation: CitationConfig{
			Corrections: []Correction{
				{From: "MIchael", To: "Michael"},
				{From: "MIestam", To: "Miestam"},
				{From: "Brandup", To: "Brandrup"},
			},
		},
		SelfCitation: SelfCitationConfig{
			ID:   "Veselinova2013negex",
			Type: "article",
			Fields: map[string]string{
				"author":  "Veselinova, Ljuba",
				"year":    "2013",
				"title":   "Negative existentials: A cross-linguistic study",
				"journal": "Italian Journal of Linguistics",
				"volume":  "25",
				"number":  "1",
				"pages":   "107-145",
			},
		},
		Metadata: MetadataConfig{
			ID:      "veselinovanegex",
			Title:   "Negative existentials (NegEx)",
			License: "CC-BY-4.0",
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Raw.Dir == "" {
		return fmt.Errorf("raw.dir is required")
	}
	if c.Raw.Data == "" {
		return fmt.Errorf("raw.data is required")
	}
	if c.Etc.Dir == "" {
		return fmt.Errorf("etc.dir is required")
	}
	if c.Etc.Languages == "" || c.Etc.Parameters == "" || c.Etc.Codes == "" {
		return fmt.Errorf("etc.languages, etc.parameters and etc.codes are required")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if c.SelfCitation.ID == "" {
		return fmt.Errorf("self_citation.id is required")
	}
	for i, corr := range c.Citation.Corrections {
		if corr.From == "" {
			return fmt.Errorf("citation.corrections[%d].from must be non-empty", i)
		}
		if strings.Contains(corr.To, corr.From) {
			return fmt.Errorf("citation.corrections[%d]: %q contains %q and would not be idempotent", i, corr.To, corr.From)
		}
	}
	return nil
}

// Merge overlays non-zero values from other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	mergeString(&c.Raw.Dir, other.Raw.Dir)
	mergeString(&c.Raw.Workbook, other.Raw.Workbook)
	mergeString(&c.Raw.WorkbookURL, other.Raw.WorkbookURL)
	mergeString(&c.Raw.Data, other.Raw.Data)
	mergeString(&c.Raw.Bibliography, other.Raw.Bibliography)

	mergeString(&c.Etc.Dir, other.Etc.Dir)
	mergeString(&c.Etc.Languages, other.Etc.Languages)
	mergeString(&c.Etc.Parameters, other.Etc.Parameters)
	mergeString(&c.Etc.Codes, other.Etc.Codes)

	mergeString(&c.Glottolog.Path, other.Glottolog.Path)
	mergeString(&c.Glottolog.URL, other.Glottolog.URL)

	mergeString(&c.Output.Dir, other.Output.Dir)
	mergeString(&c.Output.SQLite, other.Output.SQLite)
	mergeString(&c.Output.Metrics, other.Output.Metrics)

	if len(other.Citation.Corrections) > 0 {
		c.Citation.Corrections = other.Citation.Corrections
	}

	mergeString(&c.SelfCitation.ID, other.SelfCitation.ID)
	mergeString(&c.SelfCitation.Type, other.SelfCitation.Type)
	if len(other.SelfCitation.Fields) > 0 {
		c.SelfCitation.Fields = other.SelfCitation.Fields
	}

	mergeString(&c.Metadata.ID, other.Metadata.ID)
	mergeString(&c.Metadata.Title, other.Metadata.Title)
	mergeString(&c.Metadata.URL, other.Metadata.URL)
	mergeString(&c.Metadata.License, other.Metadata.License)
	mergeString(&c.Metadata.Citation, other.Metadata.Citation)
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &config, nil
}

// SaveToFile writes the configuration as YAML, creating parent directories.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Paths resolves the configured file names against a dataset root.
type Paths struct {
	Root string
	cfg  *Config
}

// Resolve returns Paths rooted at dir.
func (c *Config) Resolve(dir string) Paths {
	return Paths{Root: dir, cfg: c}
}

func (p Paths) join(parts ...string) string {
	if len(parts) > 0 && filepath.IsAbs(parts[0]) {
		return filepath.Join(parts...)
	}
	return filepath.Join(append([]string{p.Root}, parts...)...)
}

// RawDir is the raw data directory.
func (p Paths) RawDir() string { return p.join(p.cfg.Raw.Dir) }

// Workbook is the curator's xlsx file.
func (p Paths) Workbook() string { return p.join(p.cfg.Raw.Dir, p.cfg.Raw.Workbook) }

// Data is the survey CSV.
func (p Paths) Data() string { return p.join(p.cfg.Raw.Dir, p.cfg.Raw.Data) }

// Bibliography is the BibTeX file.
func (p Paths) Bibliography() string { return p.join(p.cfg.Raw.Dir, p.cfg.Raw.Bibliography) }

// Description is the landing page text captured by the download command.
func (p Paths) Description() string { return p.join(p.cfg.Raw.Dir, "description.txt") }

// Languages is the language correction table.
func (p Paths) Languages() string { return p.join(p.cfg.Etc.Dir, p.cfg.Etc.Languages) }

// Parameters is the parameter dictionary.
func (p Paths) Parameters() string { return p.join(p.cfg.Etc.Dir, p.cfg.Etc.Parameters) }

// Codes is the code dictionary.
func (p Paths) Codes() string { return p.join(p.cfg.Etc.Dir, p.cfg.Etc.Codes) }

// Glottolog is the languoid export.
func (p Paths) Glottolog() string { return p.join(p.cfg.Glottolog.Path) }

// OutputDir is the CLDF output directory.
func (p Paths) OutputDir() string { return p.join(p.cfg.Output.Dir) }

// SQLite is the optional database export path, or "".
func (p Paths) SQLite() string {
	if p.cfg.Output.SQLite == "" {
		return ""
	}
	return p.join(p.cfg.Output.SQLite)
}

// Metrics is the optional metrics textfile path, or "".
func (p Paths) Metrics() string {
	if p.cfg.Output.Metrics == "" {
		return ""
	}
	return p.join(p.cfg.Output.Metrics)
}
