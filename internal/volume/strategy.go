// Package volume aggregates check records and writes them to tier CSV files.
//
// Two strategies share one interface. Batch folds records into per-account
// totals and rewrites every tier file when the run finishes. Incremental
// classifies each record on its own and appends it to the tier file at once,
// so files grow across runs.
package volume

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/checkvolume/internal/model"
	"github.com/cleared-dev/checkvolume/internal/tier"
)

// Mode selects an aggregation strategy.
type Mode string

const (
	ModeBatch       Mode = "batch"
	ModeIncremental Mode = "incremental"
)

// ParseMode converts a mode name; the empty string selects batch.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeBatch:
		return ModeBatch, nil
	case ModeIncremental:
		return ModeIncremental, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %s or %s)", s, ModeBatch, ModeIncremental)
	}
}

var (
	// ErrIncomplete marks a record that lacks a field the strategy needs.
	ErrIncomplete = errors.New("record incomplete")
	// ErrUnclassified marks an amount that falls in no configured range.
	ErrUnclassified = errors.New("amount matches no tier")
)

// Result describes what happened to one record.
type Result struct {
	Account string
	Total   decimal.Decimal // running account total (batch) or record amount (incremental)
	Tier    model.Tier      // set by incremental only; batch tiers are decided at Finish
}

// Report summarizes what a strategy wrote.
type Report struct {
	Rows      map[model.Tier]int
	Unmatched []string // account numbers whose amount matched no tier
}

// Strategy consumes check records and maintains the tier files.
type Strategy interface {
	Mode() Mode
	// Begin prepares the output files before any record is added.
	Begin() error
	// Add consumes one record. ErrIncomplete and ErrUnclassified mean the
	// record was dropped; other errors are I/O failures.
	Add(rec model.CheckRecord) (Result, error)
	// Finish flushes outstanding output.
	Finish() (Report, error)
}

// New returns the strategy for mode writing into outDir.
func New(mode Mode, outDir string, ranges tier.Ranges) (Strategy, error) {
	switch mode {
	case ModeBatch:
		return &Batch{outDir: outDir, ranges: ranges, book: NewBook()}, nil
	case ModeIncremental:
		return &Incremental{outDir: outDir, ranges: ranges, rows: make(map[model.Tier]int)}, nil
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

// Batch aggregates totals per account and writes tier files once.
type Batch struct {
	outDir string
	ranges tier.Ranges
	book   *Book
}

func (b *Batch) Mode() Mode { return ModeBatch }

// Begin is a no-op: batch output replaces the tier files at Finish.
func (b *Batch) Begin() error { return nil }

// Add folds rec into its account. Records without an account are dropped.
func (b *Batch) Add(rec model.CheckRecord) (Result, error) {
	agg, ok := b.book.Add(rec)
	if !ok {
		return Result{}, fmt.Errorf("%w: no account number", ErrIncomplete)
	}
	return Result{Account: agg.AccountNumber, Total: agg.Total}, nil
}

// Finish writes all three tier files from the aggregates.
func (b *Batch) Finish() (Report, error) {
	return WriteTiers(b.outDir, b.book, b.ranges)
}

// WriteTiers classifies every aggregate in book and overwrites each tier
// file with its rows. The same book and ranges always produce the same files.
func WriteTiers(dir string, book *Book, ranges tier.Ranges) (Report, error) {
	byTier, unmatched := book.Partition(ranges)

	report := Report{Rows: make(map[model.Tier]int, len(model.Tiers))}
	for _, t := range model.Tiers {
		rows := byTier[t]
		if err := WriteTier(dir, t, rows); err != nil {
			return report, err
		}
		report.Rows[t] = len(rows)
	}
	for _, agg := range unmatched {
		report.Unmatched = append(report.Unmatched, agg.AccountNumber)
	}
	return report, nil
}

// Incremental classifies each record alone and appends it immediately.
type Incremental struct {
	outDir    string
	ranges    tier.Ranges
	rows      map[model.Tier]int
	unmatched []string
}

func (s *Incremental) Mode() Mode { return ModeIncremental }

// Begin creates any missing tier file with a header. Existing files keep
// their rows but must parse as tier files, so nothing is appended to a file
// this run could not read back.
func (s *Incremental) Begin() error {
	for _, t := range model.Tiers {
		created, err := EnsureTier(s.outDir, t)
		if err != nil {
			return err
		}
		if created {
			continue
		}
		if _, err := ReadTier(s.outDir, t); err != nil {
			return err
		}
	}
	return nil
}

// Add appends rec to the first tier whose range contains its amount.
func (s *Incremental) Add(rec model.CheckRecord) (Result, error) {
	switch {
	case !rec.HasAccount():
		return Result{}, fmt.Errorf("%w: no account number", ErrIncomplete)
	case !rec.HasAmount():
		return Result{}, fmt.Errorf("%w: no amount", ErrIncomplete)
	}

	res := Result{Account: rec.AccountNumber, Total: rec.Amount.Decimal}
	t, ok := s.ranges.Classify(rec.Amount.Decimal)
	if !ok {
		s.unmatched = append(s.unmatched, rec.AccountNumber)
		return res, fmt.Errorf("%w: %s", ErrUnclassified, rec.Amount.Decimal.StringFixed(amountPlaces))
	}
	res.Tier = t

	if err := AppendTier(s.outDir, t, []model.OutputRow{model.RowFromRecord(rec)}); err != nil {
		return res, err
	}
	s.rows[t]++
	return res, nil
}

// Finish reports the rows appended during this run; every row is already on disk.
func (s *Incremental) Finish() (Report, error) {
	rows := make(map[model.Tier]int, len(model.Tiers))
	for _, t := range model.Tiers {
		rows[t] = s.rows[t]
	}
	return Report{Rows: rows, Unmatched: s.unmatched}, nil
}
