// Package loop runs one instrument's acquisition cycle, grounded on
// original_source's logger and stream_logger.
package loop

import (
	"bufio"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jackwackus/jaqfactory/internal/config"
	"github.com/jackwackus/jaqfactory/internal/frame"
	"github.com/jackwackus/jaqfactory/internal/schedule"
	"github.com/jackwackus/jaqfactory/internal/writer"
)

const timestampLayout = "2006-01-02 15:04:05"

// shutdownCheckInterval matches logger()/stream_logger()'s own
// "(current_time - check_logger_state_time).seconds >= 60" throttle.
const shutdownCheckInterval = 60 * time.Second

// shared holds the state every loop variant needs between ticks.
type shared struct {
	cfg            config.InstrumentConfig
	log            *logrus.Entry
	shutdownFile   string
	newFileSched   schedule.NewFileSchedule
	writeSched     []int
	fileState      *writer.FileState
	rows           []string
	lastShutdownAt time.Time
	announced      bool
}

func newShared(cfg config.InstrumentConfig, shutdownFile string, log *logrus.Entry, now time.Time) (*shared, error) {
	st, err := writer.NewFileState(cfg, now)
	if err != nil {
		return nil, err
	}
	return &shared{
		cfg:          cfg,
		log:          log,
		shutdownFile: shutdownFile,
		newFileSched: schedule.NewFileScheduleFor(cfg.NewFileIntervalMinutes),
		writeSched:   schedule.WriteScheduleFor(int(cfg.WriteIntervalSeconds)),
		fileState:    st,
	}, nil
}

// shouldStop polls the shutdown-signal file at most once every 60
// seconds of loop-observed time, matching the original's throttle.
func (s *shared) shouldStop(now time.Time) bool {
	if s.lastShutdownAt.IsZero() {
		s.lastShutdownAt = now
		return false
	}
	if now.Sub(s.lastShutdownAt) < shutdownCheckInterval {
		return false
	}
	s.lastShutdownAt = now
	return fileSaysQuit(s.shutdownFile)
}

func fileSaysQuit(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return strings.Contains(scanner.Text(), "Quit")
	}
	return false
}

func (s *shared) recordRow(timestamp time.Time, data string) {
	row := s.cfg.InstrumentName + s.cfg.Delimiter + timestamp.Format(timestampLayout) + s.cfg.Delimiter + data
	s.rows = append(s.rows, row)
}

func (s *shared) maybeRotateAndFlush(now time.Time) {
	if err := writer.Rotate(s.cfg, s.newFileSched, s.fileState, now); err != nil {
		s.log.WithError(err).Warn("rotation failed")
	}
	if schedule.ShouldWrite(s.writeSched, now) || now.Second() == 59 {
		remaining, err := writer.Flush(s.cfg, s.fileState, s.rows)
		if err != nil {
			s.log.WithError(err).Warn("flush failed")
		}
		s.rows = remaining
	}
	if !s.announced {
		s.announced = true
		s.log.WithField("file", s.fileState.Path).Info("connection established")
	}
}

func cleanReading(cfg config.InstrumentConfig, data string) string {
	return frame.Clean(data, cfg.Multiline, cfg.Delimiter, cfg.SentenceDelimiter)
}
