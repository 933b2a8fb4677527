// Command jaqlogger runs the acquisition loop for exactly one
// instrument, grounded on original_source's logger.py main(): look the
// instrument up in the configured instrument list, load its config, and
// run either the polled or streaming loop depending on its Stream flag.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/integrii/flaggy"

	"github.com/jackwackus/jaqfactory/internal/config"
	"github.com/jackwackus/jaqfactory/internal/daqerr"
	"github.com/jackwackus/jaqfactory/internal/logging"
	"github.com/jackwackus/jaqfactory/internal/loop"
)

const (
	Program = "jaqlogger"
	Version = "1.0.0"
)

func main() {
	var (
		instrumentName string
		configDir      = "."
		instrumentList = "instrlist.txt"
		stateFile      = "daemon_state.txt"
		logDir         = "logs"
	)

	flaggy.SetName(Program)
	flaggy.SetDescription("runs the acquisition loop for one configured instrument")
	flaggy.String(&instrumentName, "I", "instrument-name", "name of the instrument to log")
	flaggy.String(&configDir, "c", "config-dir", "directory containing instrument config files")
	flaggy.String(&instrumentList, "l", "instrument-list", "path to the instrument list file")
	flaggy.String(&stateFile, "s", "state-file", "path to the shutdown-signal file shared with the supervisor")
	flaggy.String(&logDir, "L", "log-dir", "directory for per-instrument log files")
	flaggy.SetVersion(Version)
	flaggy.Parse()

	if instrumentName == "" {
		fmt.Fprintln(os.Stderr, "jaqlogger: -I/--instrument-name is required")
		os.Exit(2)
	}

	log := logging.New(Program, Version)

	names, err := config.ReadInstrumentList(instrumentList)
	if err != nil {
		daqerr.Exit(err)
	}
	if !contains(names, instrumentName) {
		os.MkdirAll(logDir, 0o755)
		f, ferr := os.Create(filepath.Join(logDir, "other_logs.txt"))
		if ferr == nil {
			defer f.Close()
			logging.TeeFile(log, f)
		}
		log.Warnf("%s is an unsupported instrument name", instrumentName)
		daqerr.Exit(daqerr.Newf(daqerr.ConfigFileMissing, "%s is an unsupported instrument name", instrumentName))
	}

	cfg, err := config.Load(filepath.Join(configDir, instrumentName+".txt"))
	if err != nil {
		daqerr.Exit(err)
	}

	os.MkdirAll(logDir, 0o755)
	logFile, _ := os.Create(filepath.Join(logDir, instrumentName+".txt"))
	errFile, _ := os.Create(filepath.Join(logDir, instrumentName+"_error.txt"))
	if logFile != nil {
		defer logFile.Close()
		logging.TeeFile(log, logFile)
	}
	if errFile != nil {
		defer errFile.Close()
	}

	if !cfg.Enabled {
		log.Infof("%s disabled", instrumentName)
		return
	}

	if err := os.MkdirAll(cfg.OutputDirectory, 0o755); err != nil {
		daqerr.Exit(daqerr.New(daqerr.FatalStartup, err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instLog := log.WithField("instrument", cfg.InstrumentName)
	if cfg.Stream {
		err = loop.RunStream(ctx, cfg, stateFile, instLog)
	} else {
		err = loop.RunPolled(ctx, cfg, stateFile, instLog)
	}
	daqerr.Exit(err)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
