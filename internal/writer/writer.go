// Package writer owns rotating-file output, grounded on
// original_source's create_writeFile_name, NewFileCheck,
// HeaderStringToDat and RowsListToDat.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackwackus/jaqfactory/internal/config"
	"github.com/jackwackus/jaqfactory/internal/daqerr"
	"github.com/jackwackus/jaqfactory/internal/schedule"
)

// FileState tracks the current output file and whether it has received
// its header yet.
type FileState struct {
	Path         string
	HeaderNeeded bool
}

// FileName builds "<dir>/<instrument>_<YYYYMMDD>_<HHMM>.dat" for t,
// matching create_writeFile_name's zero-padded time string.
func FileName(cfg config.InstrumentConfig, t time.Time) string {
	name := fmt.Sprintf("%s_%04d%02d%02d_%02d%02d.dat",
		cfg.InstrumentName, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute())
	return filepath.Join(cfg.OutputDirectory, name)
}

// NewFileState creates the initial file for a freshly started loop,
// writing the header immediately if the file does not already exist
// (e.g. a restart within the same rotation window).
func NewFileState(cfg config.InstrumentConfig, now time.Time) (*FileState, error) {
	path := FileName(cfg, now)
	if err := os.MkdirAll(cfg.OutputDirectory, 0o755); err != nil {
		return nil, daqerr.New(daqerr.FatalStartup, err)
	}
	st := &FileState{Path: path}
	if cfg.HasHeader {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := WriteHeader(cfg, path); err != nil {
				return nil, err
			}
		}
	}
	return st, nil
}

// WriteHeader appends the header string to path in append mode, the way
// HeaderStringToDat does.
func WriteHeader(cfg config.InstrumentConfig, path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return daqerr.New(daqerr.WriteContention, err)
	}
	defer f.Close()
	if _, err := f.WriteString(cfg.HeaderString); err != nil {
		return daqerr.New(daqerr.WriteContention, err)
	}
	return nil
}

// Rotate checks whether now falls in sched's rotation window and, if so
// and the computed name differs from st.Path, writes the new file's
// header (when configured) and updates st in place, matching
// NewFileCheck/newFileReturn.
func Rotate(cfg config.InstrumentConfig, sched schedule.NewFileSchedule, st *FileState, now time.Time) error {
	if !schedule.ShouldRotate(sched, now) {
		return nil
	}
	next := FileName(cfg, now)
	if next == st.Path {
		return nil
	}
	if cfg.HasHeader {
		if err := WriteHeader(cfg, next); err != nil {
			return err
		}
	}
	st.Path = next
	return nil
}

// Flush appends rows to st.Path, matching RowsListToDat's header-aware
// row-separator asymmetry: a leading newline before every row when a
// header is present (so the header's own line never gets a trailing
// newline it doesn't need), a trailing newline after every row
// otherwise. This is an intentional on-disk format contract, not a bug.
//
// A permission/lock failure on the destination leaves rows untouched so
// the caller can retry them on the next flush, matching the original's
// bare `except PermissionError: pass`.
func Flush(cfg config.InstrumentConfig, st *FileState, rows []string) ([]string, error) {
	if len(rows) == 0 {
		return rows, nil
	}
	f, err := os.OpenFile(st.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return rows, nil
	}
	defer f.Close()

	for _, row := range rows {
		var line string
		if cfg.HasHeader {
			line = "\n" + row
		} else {
			line = row + "\n"
		}
		if _, err := f.WriteString(line); err != nil {
			return rows, nil
		}
	}
	return nil, nil
}
