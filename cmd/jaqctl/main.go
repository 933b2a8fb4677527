// Command jaqctl is the console companion to jaqd, grounded on
// original_source's initialize_logger.py (enable/disable) and
// logger_manager.py (list/tail), collapsed into one flaggy-subcommand
// binary instead of the original's two separate interactive programs.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/integrii/flaggy"

	"github.com/jackwackus/jaqfactory/internal/config"
	"github.com/jackwackus/jaqfactory/internal/daqerr"
	"github.com/jackwackus/jaqfactory/internal/enable"
	"github.com/jackwackus/jaqfactory/internal/supervisor"
)

const (
	Program = "jaqctl"
	Version = "1.0.0"
)

func main() {
	var (
		configDir      = "."
		instrumentList = "instrlist.txt"

		enableName  string
		disableName string
		tailName    string
	)

	flaggy.SetName(Program)
	flaggy.SetDescription("enable, disable, list, and inspect instruments known to jaqd")
	flaggy.String(&configDir, "c", "config-dir", "directory containing instrument config files")
	flaggy.String(&instrumentList, "l", "instrument-list", "path to the instrument list file")

	enableCmd := flaggy.NewSubcommand("enable")
	enableCmd.Description = "enable an instrument's acquisition loop"
	enableCmd.AddPositionalValue(&enableName, "instrument", 1, true, "instrument name")

	disableCmd := flaggy.NewSubcommand("disable")
	disableCmd.Description = "disable an instrument's acquisition loop"
	disableCmd.AddPositionalValue(&disableName, "instrument", 1, true, "instrument name")

	listCmd := flaggy.NewSubcommand("list")
	listCmd.Description = "report every known instrument's enable state"

	tailCmd := flaggy.NewSubcommand("tail")
	tailCmd.Description = "print the last recorded dataline for an instrument"
	tailCmd.AddPositionalValue(&tailName, "instrument", 1, true, "instrument name")

	flaggy.AttachSubcommand(enableCmd, 1)
	flaggy.AttachSubcommand(disableCmd, 1)
	flaggy.AttachSubcommand(listCmd, 1)
	flaggy.AttachSubcommand(tailCmd, 1)
	flaggy.SetVersion(Version)
	flaggy.Parse()

	var err error
	switch {
	case enableCmd.Used:
		err = enable.Set(configDir, enableName, true)
	case disableCmd.Used:
		err = enable.Set(configDir, disableName, false)
	case listCmd.Used:
		err = runList(configDir, instrumentList)
	case tailCmd.Used:
		err = runTail(configDir, tailName)
	default:
		flaggy.ShowHelp("")
		return
	}
	daqerr.Exit(err)
}

// runList resolves every instrument's enable state, resolving a missing
// or unparseable config to "Configuration Error" by assignment rather
// than comparison (see internal/enable).
func runList(configDir, instrumentList string) error {
	names, err := config.ReadInstrumentList(instrumentList)
	if err != nil {
		return err
	}
	for _, e := range enable.List(configDir, names) {
		fmt.Printf("%-24s %s\n", e.InstrumentName, e.State)
	}
	return nil
}

func runTail(configDir, name string) error {
	cfg, err := config.Load(filepath.Join(configDir, name+".txt"))
	if err != nil {
		return err
	}
	line, err := supervisor.LastDataLine(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, line)
	return nil
}
