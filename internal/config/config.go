// Package config loads the rule document that tells a run where checks live,
// where tier files go, and which amounts belong to which tier.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/checkvolume/internal/imaging"
	"github.com/cleared-dev/checkvolume/internal/tier"
	"github.com/cleared-dev/checkvolume/internal/volume"
)

// DefaultProblem is the problem key a fresh project is created with.
const DefaultProblem = "problem3"

// ErrNoRanges means no rule in the document carries transaction ranges.
var ErrNoRanges = errors.New("no rule defines conditions.transactionRanges")

// Config is the rule document (rule.json or rule.yaml). JSON parses as YAML,
// so one loader handles both.
type Config struct {
	Problem    string            `yaml:"problem,omitempty"`
	Mode       string            `yaml:"mode,omitempty"`
	InputPath  map[string]string `yaml:"inputPath"`
	OutputPath map[string]string `yaml:"outputPath"`
	Rules      []Rule            `yaml:"rules"`
	Preprocess PreprocessConfig  `yaml:"preprocess,omitempty"`
	OCR        OCRConfig         `yaml:"ocr,omitempty"`

	// baseDir anchors relative paths; set by Load.
	baseDir string
}

// Rule is one entry of the rules list. Only transaction ranges are read;
// other condition keys are ignored.
type Rule struct {
	Name       string     `yaml:"name"`
	Conditions Conditions `yaml:"conditions"`
}

// Conditions holds the parts of a rule the pipeline understands.
type Conditions struct {
	TransactionRanges *tier.Ranges `yaml:"transactionRanges,omitempty"`
}

// PreprocessConfig controls image preparation.
type PreprocessConfig struct {
	Width    int    `yaml:"width,omitempty"`
	WorkPath string `yaml:"workPath,omitempty"`
}

// OCRConfig controls the recognition engine.
type OCRConfig struct {
	Languages []string `yaml:"languages,omitempty"`
	PSM       int      `yaml:"psm,omitempty"`
	// Variables are passed to the engine as-is, e.g.
	// tessedit_char_whitelist.
	Variables map[string]string `yaml:"variables,omitempty"`
}

// Settings is the resolved, read-only view of one problem's configuration.
type Settings struct {
	Problem   string
	InputDir  string
	OutputDir string
	WorkDir   string
	Mode      volume.Mode
	Width     int
	Languages []string
	PSM       int
	Variables map[string]string

	ranges tier.Ranges
}

// Ranges returns the tier ranges for the run.
func (s Settings) Ranges() tier.Ranges { return s.ranges }

// Load reads a rule document from disk. Relative paths inside it are
// resolved against the document's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.baseDir = filepath.Dir(path)
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns the document for a new project: checks/ in, output/ out,
// and the usual 0-499 / 500-999 / 1000+ split.
func Default() *Config {
	ranges := tier.Ranges{
		Low:    tier.NewRange(decimal.Zero, decimal.NewFromInt(499)),
		Medium: tier.NewRange(decimal.NewFromInt(500), decimal.NewFromInt(999)),
		High:   tier.AtLeast(decimal.NewFromInt(1000)),
	}
	return &Config{
		Problem:    DefaultProblem,
		Mode:       string(volume.ModeBatch),
		InputPath:  map[string]string{DefaultProblem: "checks"},
		OutputPath: map[string]string{DefaultProblem: "output"},
		Rules: []Rule{
			{Name: "volumeCategorization", Conditions: Conditions{TransactionRanges: &ranges}},
		},
		OCR: OCRConfig{Languages: []string{"eng"}},
	}
}

// Problems lists the problem keys that have both an input and output path.
func (c *Config) Problems() []string {
	var out []string
	for k := range c.InputPath {
		if _, ok := c.OutputPath[k]; ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// TransactionRanges returns the ranges of the first rule that has any.
func (c *Config) TransactionRanges() (tier.Ranges, error) {
	for _, r := range c.Rules {
		if r.Conditions.TransactionRanges != nil {
			return *r.Conditions.TransactionRanges, nil
		}
	}
	return tier.Ranges{}, ErrNoRanges
}

// Resolve builds the Settings for problem. An empty problem falls back to the
// document's own problem key, then DefaultProblem.
func (c *Config) Resolve(problem string) (Settings, error) {
	if problem == "" {
		problem = c.Problem
	}
	if problem == "" {
		problem = DefaultProblem
	}

	in, ok := c.InputPath[problem]
	if !ok || in == "" {
		return Settings{}, fmt.Errorf("inputPath.%s is not set (have %v)", problem, c.Problems())
	}
	out, ok := c.OutputPath[problem]
	if !ok || out == "" {
		return Settings{}, fmt.Errorf("outputPath.%s is not set (have %v)", problem, c.Problems())
	}

	ranges, err := c.TransactionRanges()
	if err != nil {
		return Settings{}, err
	}

	mode, err := volume.ParseMode(c.Mode)
	if err != nil {
		return Settings{}, err
	}

	s := Settings{
		Problem:   problem,
		InputDir:  c.abs(in),
		OutputDir: c.abs(out),
		Mode:      mode,
		Width:     c.Preprocess.Width,
		Languages: slices.Clone(c.OCR.Languages),
		PSM:       c.OCR.PSM,
		Variables: maps.Clone(c.OCR.Variables),
		ranges:    ranges,
	}
	if s.Width <= 0 {
		s.Width = imaging.DefaultWidth
	}
	if len(s.Languages) == 0 {
		s.Languages = []string{"eng"}
	}
	if c.Preprocess.WorkPath != "" {
		s.WorkDir = c.abs(c.Preprocess.WorkPath)
	} else {
		s.WorkDir = filepath.Join(s.OutputDir, "processed")
	}
	return s, nil
}

func (c *Config) abs(p string) string {
	if filepath.IsAbs(p) || c.baseDir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(c.baseDir, p)
}
