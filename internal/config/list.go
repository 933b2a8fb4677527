package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackwackus/jaqfactory/internal/daqerr"
)

// ReadInstrumentList reads a newline-separated list of instrument names,
// one per line, blank lines and '#'-prefixed comments ignored. Grounded
// on original_source's process_instrument_list, which read the same
// shape of file to decide which config files to load.
func ReadInstrumentList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, daqerr.New(daqerr.ConfigFileMissing, err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, daqerr.New(daqerr.ConfigFileMissing, err)
	}
	return names, nil
}

// LoadAll resolves each name in names to "<configDir>/<name>.txt" and
// loads it. A name with no matching file produces a ConfigFileMissing
// error for that entry rather than aborting the whole list, mirroring
// the original's tolerance of a stale instrument list.
func LoadAll(configDir string, names []string) ([]InstrumentConfig, []error) {
	var (
		configs []InstrumentConfig
		errs    []error
	)
	for _, name := range names {
		path := filepath.Join(configDir, name+".txt")
		if _, err := os.Stat(path); err != nil {
			errs = append(errs, daqerr.Newf(daqerr.ConfigFileMissing,
				"instrument %q: no config file at %s", name, path))
			continue
		}
		cfg, err := Load(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		configs = append(configs, cfg)
	}
	return configs, errs
}
