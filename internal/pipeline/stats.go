package pipeline

import (
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/cleared-dev/checkvolume/internal/model"
)

// Stats counts what a run did with the input directory.
type Stats struct {
	TotalFiles     int
	ProcessedFiles int
	SkippedFiles   int
	DroppedRecords int
	FailedFiles    int
	Failures       map[string]string
	Rows           map[model.Tier]int
	Unmatched      []string
}

// NewStats returns empty Stats.
func NewStats() *Stats {
	return &Stats{
		Failures: make(map[string]string),
		Rows:     make(map[model.Tier]int),
	}
}

// AddFailure records a file whose preprocessing or OCR failed.
func (s *Stats) AddFailure(file, reason string) {
	s.FailedFiles++
	s.Failures[file] = reason
}

// Log writes a summary to logger.
func (s *Stats) Log(logger *log.Logger) {
	logger.Info("run finished",
		"files", s.TotalFiles,
		"processed", s.ProcessedFiles,
		"skipped", s.SkippedFiles,
		"dropped", s.DroppedRecords,
		"failed", s.FailedFiles,
	)
	for _, t := range model.Tiers {
		logger.Info("tier file", "tier", t, "file", t.FileName(), "rows", s.Rows[t])
	}
	for _, file := range slices.Sorted(maps.Keys(s.Failures)) {
		logger.Warn("failed file", "file", file, "err", s.Failures[file])
	}
}
