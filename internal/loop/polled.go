package loop

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jackwackus/jaqfactory/internal/config"
	"github.com/jackwackus/jaqfactory/internal/schedule"
	"github.com/jackwackus/jaqfactory/internal/transport"
)

// RunPolled drives one command/response instrument until the shutdown
// file says Quit or ctx is cancelled, grounded on original_source's
// logger().
func RunPolled(ctx context.Context, cfg config.InstrumentConfig, shutdownFile string, log *logrus.Entry) error {
	reader, err := transport.Open(cfg)
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
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		schedule.SleepUntilNextTick(readInterval)
		now = time.Now()

		if s.shouldStop(now) {
			log.Info("logging terminated")
			return nil
		}

		data, err := reader.Read(ctx)
		if err != nil {
			log.WithError(err).Warn("read failed")
		} else if data != "" {
			if cfg.CommunicationType == config.ModbusTCP {
				// read_ModbusTCP_registers already assembles the full
				// delimited row; clean_string is not applied to it.
			} else {
				data = cleanReading(cfg, data)
			}
			s.recordRow(now, data)
		}

		s.maybeRotateAndFlush(now)
	}
}
