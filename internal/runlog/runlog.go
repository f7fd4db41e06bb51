// Package runlog keeps a CSV history of what each run did with every input file.
package runlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome recorded for one input file.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusDropped   Status = "dropped"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp time.Time
	RunID     string
	File      string
	Status    Status
	Account   string
	Details   string
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,run_id,file,status,account_number,details"

// FileName is the run log's name inside the output directory.
const FileName = "run-log.csv"

const (
	numFields    = 6
	colTimestamp = 0
	colRunID     = 1
	colFile      = 2
	colStatus    = 3
	colAccount   = 4
	colDetails   = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colFile] = e.File
	row[colStatus] = string(e.Status)
	row[colAccount] = e.Account
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp: ts,
		RunID:     record[colRunID],
		File:      record[colFile],
		Status:    Status(record[colStatus]),
		Account:   record[colAccount],
		Details:   record[colDetails],
	}, nil
}

// Append writes entries to <dir>/run-log.csv, creating the file and header if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dir>/run-log.csv in file order. A missing
// or empty log yields no entries.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = numFields

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading run log header: %w", err)
	}
	if got := strings.Join(header, ","); got != Header {
		return nil, fmt.Errorf("unexpected run log header %q", got)
	}

	var entries []Entry
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading run log: %w", err)
		}
		e, err := UnmarshalEntry(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
}

// Run is the slice of the log written by one run.
type Run struct {
	ID      string
	Started time.Time
	Entries []Entry
}

// Count returns how many of the run's files ended with status.
func (r Run) Count(status Status) int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == status {
			n++
		}
	}
	return n
}

// Runs groups entries by run ID, oldest run first. Started is the earliest
// timestamp seen for the run.
func Runs(entries []Entry) []Run {
	var runs []Run
	index := make(map[string]int)
	for _, e := range entries {
		i, ok := index[e.RunID]
		if !ok {
			i = len(runs)
			index[e.RunID] = i
			runs = append(runs, Run{ID: e.RunID, Started: e.Timestamp})
		}
		r := &runs[i]
		r.Entries = append(r.Entries, e)
		if e.Timestamp.Before(r.Started) {
			r.Started = e.Timestamp
		}
	}
	return runs
}

// Recorder collects the entries of a single run under one run ID.
type Recorder struct {
	dir     string
	runID   string
	now     func() time.Time
	pending []Entry
}

// NewRecorder returns a Recorder writing to dir with a fresh run ID.
func NewRecorder(dir string) *Recorder {
	return &Recorder{dir: dir, runID: uuid.NewString(), now: time.Now}
}

// RunID identifies the run in every entry.
func (r *Recorder) RunID() string { return r.runID }

// Record queues an entry for file.
func (r *Recorder) Record(file string, status Status, account, details string) {
	r.pending = append(r.pending, Entry{
		Timestamp: r.now().UTC(),
		RunID:     r.runID,
		File:      file,
		Status:    status,
		Account:   account,
		Details:   details,
	})
}

// Flush appends queued entries to the log file.
func (r *Recorder) Flush() error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := Append(r.dir, r.pending); err != nil {
		return err
	}
	r.pending = r.pending[:0]
	return nil
}
