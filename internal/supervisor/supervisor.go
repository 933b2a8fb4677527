// Package supervisor spawns and manages one acquisition loop per
// enabled instrument, grounded on original_source's logger_manager.py.
package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jackwackus/jaqfactory/internal/config"
	"github.com/jackwackus/jaqfactory/internal/daqerr"
	"github.com/jackwackus/jaqfactory/internal/loop"
)

// Supervisor runs one goroutine per enabled instrument and owns the
// shared shutdown-signal file every loop polls, matching
// write_logger_state/create_enabled_instrument_list.
type Supervisor struct {
	settings config.DaemonSettings
	log      *logrus.Entry
}

func New(settings config.DaemonSettings, log *logrus.Entry) *Supervisor {
	return &Supervisor{settings: settings, log: log}
}

// WriteState writes "Run" or "Quit" to the shutdown-signal file, the way
// write_logger_state does. A "Quit" write is followed by the same
// 60-second grace period the original's one-minute countdown gave
// loggers to notice and exit, since every loop polls the file at most
// once per minute.
func (s *Supervisor) WriteState(state string) error {
	if err := os.WriteFile(s.settings.StateFile, []byte(state), 0o644); err != nil {
		return daqerr.New(daqerr.WriteContention, err)
	}
	if state == "Quit" {
		s.log.Info("quit requested, waiting up to 60s for loggers to notice")
		time.Sleep(60 * time.Second)
	}
	return nil
}

// EnabledInstruments loads every configured instrument and returns the
// enabled subset, matching create_enabled_instrument_list.
func (s *Supervisor) EnabledInstruments() ([]config.InstrumentConfig, []error) {
	names, err := config.ReadInstrumentList(s.settings.InstrumentList)
	if err != nil {
		return nil, []error{err}
	}
	all, errs := config.LoadAll(s.settings.ConfigDir, names)
	enabled := make([]config.InstrumentConfig, 0, len(all))
	for _, cfg := range all {
		if cfg.Enabled {
			enabled = append(enabled, cfg)
		}
	}
	return enabled, errs
}

// Run starts one acquisition goroutine per enabled instrument and blocks
// until ctx is cancelled or every loop exits on its own (shutdown file
// said Quit).
func (s *Supervisor) Run(ctx context.Context) error {
	if err := s.WriteState("Run"); err != nil {
		return err
	}

	instruments, errs := s.EnabledInstruments()
	for _, err := range errs {
		s.log.WithError(err).Warn("instrument skipped")
	}
	if len(instruments) == 0 {
		return daqerr.Newf(daqerr.FatalStartup, "no enabled instruments to run")
	}

	var wg sync.WaitGroup
	for _, cfg := range instruments {
		cfg := cfg
		wg.Add(1)
		go func() {
			defer wg.Done()
			instLog := s.log.WithField("instrument", cfg.InstrumentName)
			var err error
			if cfg.Stream {
				err = loop.RunStream(ctx, cfg, s.settings.StateFile, instLog)
			} else {
				err = loop.RunPolled(ctx, cfg, s.settings.StateFile, instLog)
			}
			if err != nil {
				instLog.WithError(err).Error("acquisition loop exited")
			}
		}()
	}
	wg.Wait()
	return nil
}

// LastDataLine reads the most recently modified ".dat" file in cfg's
// output directory and returns its final line, matching print_data_line.
func LastDataLine(cfg config.InstrumentConfig) (string, error) {
	entries, err := os.ReadDir(cfg.OutputDirectory)
	if err != nil {
		return "", daqerr.New(daqerr.ConfigFileMissing, err)
	}

	var latest string
	var latestMod time.Time
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".dat") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = filepath.Join(cfg.OutputDirectory, e.Name())
			latestMod = info.ModTime()
		}
	}
	if latest == "" {
		return "", daqerr.Newf(daqerr.ConfigFileMissing, "no .dat files in %s", cfg.OutputDirectory)
	}

	raw, err := os.ReadFile(latest)
	if err != nil {
		return "", daqerr.New(daqerr.ConfigFileMissing, err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) == 0 {
		return "", nil
	}
	return lines[len(lines)-1], nil
}

// SortedNames is a small console-reporting helper: stable alphabetical
// instrument order. cmd/jaqctl's list output does not use it; that
// command prints instruments in instrument-list order.
func SortedNames(instruments []config.InstrumentConfig) []string {
	names := make([]string, len(instruments))
	for i, cfg := range instruments {
		names[i] = cfg.InstrumentName
	}
	sort.Strings(names)
	return names
}
