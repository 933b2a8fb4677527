// Package enable implements the enable/disable editor, grounded on
// original_source's process_valid_command and create_EnableState_df.
package enable

import (
	"os"
	"strings"

	"github.com/jackwackus/jaqfactory/internal/config"
	"github.com/jackwackus/jaqfactory/internal/daqerr"
)

// State is one instrument's reported enable state, as surfaced by List.
type State string

const (
	Enabled           State = "Enabled"
	Disabled          State = "Disabled"
	ConfigurationError State = "Configuration Error"
)

// Entry pairs an instrument name with its current state.
type Entry struct {
	InstrumentName string
	State          State
}

// List resolves every named instrument's enable state. An instrument
// whose config file is missing or fails to parse is resolved to the
// "Configuration Error" exactly as found, by assignment — not the bug in
// the original where EnableState_dic['Enable State'] == [...] compared
// instead of assigned and silently left the dictionary's lists mismatched
// in length (Open Question 1).
func List(configDir string, names []string) []Entry {
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		cfg, err := config.Load(configPath(configDir, name))
		switch {
		case err != nil:
			entries = append(entries, Entry{InstrumentName: name, State: ConfigurationError})
		case cfg.Enabled:
			entries = append(entries, Entry{InstrumentName: name, State: Enabled})
		default:
			entries = append(entries, Entry{InstrumentName: name, State: Disabled})
		}
	}
	return entries
}

func configPath(configDir, name string) string {
	if configDir == "" {
		return name + ".txt"
	}
	return configDir + string(os.PathSeparator) + name + ".txt"
}

// Set rewrites the "Enabled=" line of the named instrument's config file
// in place, leaving every other line byte-identical, matching
// process_valid_command. Refuses to touch a file with no such line,
// rather than silently appending one the loader doesn't expect.
func Set(configDir, name string, enabled bool) error {
	path := configPath(configDir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return daqerr.New(daqerr.ConfigFileMissing, err)
	}

	lines := strings.Split(string(raw), "\n")
	found := false
	value := "False"
	if enabled {
		value = "True"
	}
	for i, line := range lines {
		if strings.HasPrefix(line, "Enabled=") {
			lines[i] = "Enabled=" + value
			found = true
		}
	}
	if !found {
		return daqerr.Newf(daqerr.ConfigInvalid, "%s: no Enabled= line found", path)
	}

	out := strings.Join(lines, "\n")
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return daqerr.New(daqerr.WriteContention, err)
	}
	return nil
}
