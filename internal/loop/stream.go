package loop

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jackwackus/jaqfactory/internal/config"
	"github.com/jackwackus/jaqfactory/internal/schedule"
	"github.com/jackwackus/jaqfactory/internal/transport"
)

// RunStream drives one passively-streamed instrument, grounded on
// original_source's stream_logger(): reads arrive on the instrument's
// own cadence rather than being polled, and timestamps are rounded to
// the nearest second and corrected for clock/stream skew.
func RunStream(ctx context.Context, cfg config.InstrumentConfig, shutdownFile string, log *logrus.Entry) error {
	reader, err := transport.OpenStream(cfg)
	if err != nil {
		return err
	}
	defer reader.Close()

	now := time.Now()
	s, err := newShared(cfg, shutdownFile, log, now)
	if err != nil {
		return err
	}

	readInterval := time.Duration(cfg.ReadIntervalSeconds * float64(time.Second))
	var lastLogTime time.Time
	firstLog := true

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if readInterval > 0 {
			time.Sleep(readInterval)
		}
		current := schedule.RoundToSecond(time.Now())

		if s.shouldStop(current) {
			log.Info("logging terminated")
			return nil
		}

		data, err := reader.ReadStream(ctx)
		if err != nil {
			log.WithError(err).Warn("stream read failed")
		} else if data != "" {
			data = cleanReading(cfg, data)
			if firstLog {
				lastLogTime = current.Add(-time.Second)
				firstLog = false
			}
			if cfg.StreamLogIntervalSeconds == 1 {
				current, lastLogTime = correctStreamSkew(current, lastLogTime, log)
			}
			s.recordRow(current, data)
		}

		s.maybeRotateAndFlush(current)
	}
}

// correctStreamSkew absorbs a repeated or doubled second between
// successive 1-second-cadence readings, grounded on
// _1_sec_stream_time_check: a delta of 0 (duplicate) or 2 (one skipped)
// seconds is corrected to exactly last+1s; any other delta is accepted
// as-is.
func correctStreamSkew(current, last time.Time, log *logrus.Entry) (time.Time, time.Time) {
	delta := current.Sub(last)
	switch delta {
	case 0:
		log.WithField("at", current).Debug("stream timestamp case 1: duplicate second")
		current = last.Add(time.Second)
	case 2 * time.Second:
		log.WithField("at", current).Debug("stream timestamp case 2: skipped second")
		current = last.Add(time.Second)
	}
	return current, current
}
