// Command jaqd is the multi-instrument supervisor, grounded on
// original_source's logger_manager.py: it enumerates the enabled
// instruments and runs one acquisition loop per instrument as a
// goroutine, tracked by a single shutdown-signal file.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/integrii/flaggy"

	"github.com/jackwackus/jaqfactory/internal/config"
	"github.com/jackwackus/jaqfactory/internal/daqerr"
	"github.com/jackwackus/jaqfactory/internal/logging"
	"github.com/jackwackus/jaqfactory/internal/supervisor"
)

const (
	Program = "jaqd"
	Version = "1.0.0"
)

func main() {
	var settingsFile string

	flaggy.SetName(Program)
	flaggy.SetDescription("supervises one acquisition loop per enabled instrument")
	flaggy.String(&settingsFile, "c", "config", "path to the daemon's TOML bootstrap settings file")
	flaggy.SetVersion(Version)
	flaggy.Parse()

	log := logging.New(Program, Version)

	settings, err := config.LoadDaemonSettings(settingsFile)
	if err != nil {
		daqerr.Exit(daqerr.New(daqerr.FatalStartup, err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sup := supervisor.New(settings, log)

	go func() {
		<-ctx.Done()
		if err := sup.WriteState("Quit"); err != nil {
			log.WithError(err).Warn("failed to write shutdown state")
		}
	}()

	daqerr.Exit(sup.Run(ctx))
}
