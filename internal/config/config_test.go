package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/checkvolume/internal/imaging"
	"github.com/cleared-dev/checkvolume/internal/model"
	"github.com/cleared-dev/checkvolume/internal/volume"
)

func TestLoadRuleJSON(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "testdata", "rule.json"))
	require.NoError(t, err)

	assert.Equal(t, []string{"problem1", "problem3"}, cfg.Problems())
	require.Len(t, cfg.Rules, 3)
	assert.Nil(t, cfg.Rules[0].Conditions.TransactionRanges)

	s, err := cfg.Resolve("problem3")
	require.NoError(t, err)

	base := filepath.Join("..", "..", "testdata")
	assert.Equal(t, filepath.Join(base, "data", "checks"), s.InputDir)
	assert.Equal(t, filepath.Join(base, "out", "checks"), s.OutputDir)
	assert.Equal(t, filepath.Join(base, "out", "checks", "processed"), s.WorkDir)
	assert.Equal(t, volume.ModeBatch, s.Mode)
	assert.Equal(t, imaging.DefaultWidth, s.Width)
	assert.Equal(t, []string{"eng"}, s.Languages)

	rs := s.Ranges()
	assert.True(t, rs.Medium.Min.Equal(decimal.NewFromInt(500)))
	assert.True(t, rs.High.Max.Decimal.Equal(decimal.NewFromInt(1_000_000_000)))

	got, ok := rs.Classify(decimal.RequireFromString("499.50"))
	assert.False(t, ok, "499.50 falls between low and medium")
	assert.Empty(t, got)
}

func TestResolveErrors(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "testdata", "rule.json"))
	require.NoError(t, err)

	_, err = cfg.Resolve("problem9")
	assert.ErrorContains(t, err, "inputPath.problem9 is not set")

	cfg.Rules = cfg.Rules[:2]
	_, err = cfg.Resolve("problem3")
	assert.ErrorIs(t, err, ErrNoRanges)

	cfg = Default()
	cfg.Mode = "sometimes"
	_, err = cfg.Resolve("")
	assert.ErrorContains(t, err, `unknown mode "sometimes"`)
}

func TestResolveOptionalSections(t *testing.T) {
	dir := t.TempDir()
	doc := `
problem: p
mode: incremental
inputPath: {p: in}
outputPath: {p: /abs/out}
preprocess: {width: 1200, workPath: scratch}
ocr: {languages: [eng, spa], psm: 6, variables: {tessedit_char_whitelist: "0123456789$.,*"}}
rules:
  - name: tiers
    conditions:
      transactionRanges:
        low: {min: 0, max: 10}
        medium: {min: 11, max: 20}
        high: {min: 21}
`
	path := filepath.Join(dir, "rule.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	s, err := cfg.Resolve("")
	require.NoError(t, err)

	assert.Equal(t, "p", s.Problem)
	assert.Equal(t, filepath.Join(dir, "in"), s.InputDir)
	assert.Equal(t, "/abs/out", s.OutputDir)
	assert.Equal(t, filepath.Join(dir, "scratch"), s.WorkDir)
	assert.Equal(t, volume.ModeIncremental, s.Mode)
	assert.Equal(t, 1200, s.Width)
	assert.Equal(t, []string{"eng", "spa"}, s.Languages)
	assert.Equal(t, 6, s.PSM)
	assert.Equal(t, map[string]string{"tessedit_char_whitelist": "0123456789$.,*"}, s.Variables)
	assert.False(t, s.Ranges().High.Max.Valid)

	// Settings own their slices.
	cfg.OCR.Languages[0] = "deu"
	cfg.OCR.Variables["tessedit_char_whitelist"] = ""
	assert.Equal(t, "eng", s.Languages[0])
	assert.Equal(t, "0123456789$.,*", s.Variables["tessedit_char_whitelist"])
}

func TestDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rule.yaml")
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)
	assert.Contains(t, contents, "problem: problem3")
	assert.Contains(t, contents, "transactionRanges:")
	assert.NotContains(t, contents, "baseDir")

	cfg, err := Load(path)
	require.NoError(t, err)
	s, err := cfg.Resolve("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(path), "checks"), s.InputDir)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "output"), s.OutputDir)

	rs := s.Ranges()
	for amount, want := range map[string]model.Tier{
		"0":       model.TierLow,
		"499":     model.TierLow,
		"500":     model.TierMedium,
		"999":     model.TierMedium,
		"1000":    model.TierHigh,
		"1000000": model.TierHigh,
	} {
		got, ok := rs.Classify(decimal.RequireFromString(amount))
		require.True(t, ok, amount)
		assert.Equal(t, want, got, amount)
	}
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBadRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rule.json")
	doc := `{"inputPath":{"p":"a"},"outputPath":{"p":"b"},"rules":[{"conditions":{"transactionRanges":{"low":{"min":"lots"}}}}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, `parsing min "lots"`)
}
