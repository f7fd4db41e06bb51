// Package pipeline runs check images from the input directory through
// preprocessing, OCR, field extraction and tier aggregation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/cleared-dev/checkvolume/internal/config"
	"github.com/cleared-dev/checkvolume/internal/extract"
	"github.com/cleared-dev/checkvolume/internal/imaging"
	"github.com/cleared-dev/checkvolume/internal/ocr"
	"github.com/cleared-dev/checkvolume/internal/runlog"
	"github.com/cleared-dev/checkvolume/internal/volume"
)

// Driver processes one input directory per Run.
type Driver struct {
	Settings     config.Settings
	Preprocessor imaging.Preprocessor
	Engine       ocr.Engine
	Logger       *log.Logger
}

// New returns a Driver using the grayscale resizer configured by s.
func New(s config.Settings, engine ocr.Engine, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{
		Settings:     s,
		Preprocessor: imaging.NewGrayResizer(s.Width, s.WorkDir),
		Engine:       engine,
		Logger:       logger,
	}
}

// Run processes every image once. Per-file failures are logged and counted;
// the returned error is reserved for conditions that stop the whole run.
// On cancellation the run log is flushed and tier output is left as it was.
func (d *Driver) Run(ctx context.Context) (*Stats, error) {
	s := d.Settings
	logger := d.Logger.With("problem", s.Problem, "mode", s.Mode)

	if err := os.MkdirAll(s.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	files, skipped, err := Scan(s.InputDir)
	if err != nil {
		return nil, err
	}

	strategy, err := volume.New(s.Mode, s.OutputDir, s.Ranges())
	if err != nil {
		return nil, err
	}
	if err := strategy.Begin(); err != nil {
		return nil, fmt.Errorf("preparing tier files: %w", err)
	}

	rec := runlog.NewRecorder(s.OutputDir)
	logger = logger.With("run", rec.RunID())
	logger.Info("starting run", "input", s.InputDir, "output", s.OutputDir, "images", len(files))

	stats := NewStats()
	stats.TotalFiles = len(files) + len(skipped)

	for _, name := range skipped {
		logger.Warn("skipping non-image file", "file", name)
		rec.Record(name, runlog.StatusSkipped, "", "unsupported extension")
		stats.SkippedFiles++
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return stats, d.abort(rec, err)
		}
		if err := d.processFile(ctx, logger, strategy, rec, stats, f); err != nil {
			if ctx.Err() != nil {
				return stats, d.abort(rec, ctx.Err())
			}
			return stats, errors.Join(err, rec.Flush())
		}
	}

	report, err := strategy.Finish()
	if err != nil {
		return stats, errors.Join(fmt.Errorf("writing tier files: %w", err), rec.Flush())
	}
	stats.Rows = report.Rows
	stats.Unmatched = report.Unmatched
	for _, account := range report.Unmatched {
		logger.Warn("account total matches no tier", "account", account)
	}

	if err := rec.Flush(); err != nil {
		return stats, fmt.Errorf("writing run log: %w", err)
	}
	stats.Log(logger)
	return stats, nil
}

// processFile handles one image. Only strategy I/O errors are returned.
func (d *Driver) processFile(ctx context.Context, logger *log.Logger, strategy volume.Strategy, rec *runlog.Recorder, stats *Stats, f FileInfo) error {
	logger = logger.With("file", f.Name)

	derived, err := d.Preprocessor.Preprocess(ctx, f.Path)
	if err != nil {
		logger.Warn("preprocessing failed", "err", err)
		rec.Record(f.Name, runlog.StatusFailed, "", "preprocess: "+err.Error())
		stats.AddFailure(f.Name, err.Error())
		return nil
	}

	res, err := d.Engine.Recognize(ctx, ocr.NewInput(f.Name, derived, d.inputOptions()...))
	if err != nil {
		logger.Warn("ocr failed", "engine", d.Engine.Name(), "err", err)
		rec.Record(f.Name, runlog.StatusFailed, "", "ocr: "+err.Error())
		stats.AddFailure(f.Name, err.Error())
		return nil
	}

	check := extract.Check(f.Name, res.PlainText)
	logger.Debug("extracted fields",
		"payee", check.PayeeName,
		"amount", check.Amount.Decimal,
		"account", check.AccountNumber,
		"confidence", res.Confidence,
	)

	result, err := strategy.Add(check)
	switch {
	case errors.Is(err, volume.ErrIncomplete), errors.Is(err, volume.ErrUnclassified):
		logger.Warn("dropping record", "account", check.AccountNumber, "err", err)
		rec.Record(f.Name, runlog.StatusDropped, check.AccountNumber, err.Error())
		stats.DroppedRecords++
		return nil
	case err != nil:
		return fmt.Errorf("%s: %w", f.Name, err)
	}

	details := "total=" + result.Total.StringFixed(2)
	if result.Tier != "" {
		details += " tier=" + string(result.Tier)
	}
	logger.Info("processed check", "account", result.Account, "total", result.Total.StringFixed(2), "tier", result.Tier)
	rec.Record(f.Name, runlog.StatusProcessed, result.Account, details)
	stats.ProcessedFiles++
	return nil
}

func (d *Driver) inputOptions() []ocr.InputOption {
	opts := []ocr.InputOption{ocr.WithLanguages(d.Settings.Languages...)}
	if len(d.Settings.Variables) > 0 {
		opts = append(opts, ocr.WithMetadata(d.Settings.Variables))
	}
	if d.Settings.PSM > 0 {
		opts = append(opts, ocr.WithTesseractPSM(d.Settings.PSM))
	}
	return opts
}

func (d *Driver) abort(rec *runlog.Recorder, cause error) error {
	d.Logger.Warn("run canceled", "err", cause)
	return errors.Join(cause, rec.Flush())
}
