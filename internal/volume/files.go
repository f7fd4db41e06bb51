package volume

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cleared-dev/checkvolume/internal/model"
)

// Path returns the location of the tier file under dir.
func Path(dir string, t model.Tier) string {
	return filepath.Join(dir, t.FileName())
}

// WriteTier replaces the tier file with a header and rows.
func WriteTier(dir string, t model.Tier, rows []model.OutputRow) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	f, err := os.Create(Path(dir, t))
	if err != nil {
		return fmt.Errorf("creating %s: %w", t.FileName(), err)
	}
	defer f.Close()

	if err := WriteRows(f, rows); err != nil {
		return fmt.Errorf("writing %s: %w", t.FileName(), err)
	}
	return f.Close()
}

// EnsureTier writes a header-only tier file if none exists or the existing
// one is empty. Any other file is left untouched. Reports whether the file
// was written.
func EnsureTier(dir string, t model.Tier) (bool, error) {
	info, err := os.Stat(Path(dir, t))
	switch {
	case err == nil && info.Size() > 0:
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("stat %s: %w", t.FileName(), err)
	}

	if err := WriteTier(dir, t, nil); err != nil {
		return false, err
	}
	return true, nil
}

// AppendTier appends rows beneath the existing content of the tier file,
// creating it with a header first if needed. A last line without a newline
// is terminated before the new rows.
func AppendTier(dir string, t model.Tier, rows []model.OutputRow) error {
	if _, err := EnsureTier(dir, t); err != nil {
		return err
	}

	f, err := os.OpenFile(Path(dir, t), os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", t.FileName(), err)
	}
	defer f.Close()

	if err := terminateLastLine(f); err != nil {
		return fmt.Errorf("appending to %s: %w", t.FileName(), err)
	}

	if err := AppendRows(f, rows); err != nil {
		return fmt.Errorf("appending to %s: %w", t.FileName(), err)
	}
	return f.Close()
}

// ReadTier returns the rows of a tier file, or nil if it does not exist.
func ReadTier(dir string, t model.Tier) ([]model.OutputRow, error) {
	f, err := os.Open(Path(dir, t))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", t.FileName(), err)
	}
	defer f.Close()

	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", t.FileName(), err)
	}
	return rows, nil
}

func terminateLastLine(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return fmt.Errorf("reading last byte: %w", err)
	}
	if last[0] == '\n' {
		return nil
	}
	_, err = f.Write([]byte{'\n'})
	return err
}
