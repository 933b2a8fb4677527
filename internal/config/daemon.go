package config

import (
	"time"

	"github.com/midbel/toml"
)

// Duration decodes a TOML string like "60s" into a time.Duration,
// adapted from busoc-assist's settings.go Duration wrapper (midbel/toml
// does not natively decode time.Duration).
type Duration struct {
	time.Duration
}

func (d *Duration) String() string {
	return d.Duration.String()
}

// Set implements the same flag.Value-shaped parse hook as busoc-assist's
// Duration did for its CLI flags.
func (d *Duration) Set(s string) error {
	v, err := time.ParseDuration(s)
	if err == nil {
		d.Duration = v
	}
	return err
}

// DaemonSettings is the supervisor's own bootstrap configuration: where
// to find instrument configs and where to write the shutdown-signal file.
// PollInterval is decoded but nothing reads it; loops poll the shutdown
// file on their own fixed 60-second throttle. Distinct from an
// InstrumentConfig, which governs one acquisition loop.
type DaemonSettings struct {
	ConfigDir      string   `toml:"config_dir"`
	InstrumentList string   `toml:"instrument_list"`
	StateFile      string   `toml:"state_file"`
	PollInterval   Duration `toml:"poll_interval"`
}

// DefaultDaemonSettings mirrors the defaults baked into the original's
// logger_manager.py module constants.
func DefaultDaemonSettings() DaemonSettings {
	return DaemonSettings{
		ConfigDir:      ".",
		InstrumentList: "instrlist.txt",
		StateFile:      "daemon_state.txt",
		PollInterval:   Duration{60 * time.Second},
	}
}

// LoadDaemonSettings decodes path over the defaults, the way
// busoc-assist's loadFromConfig seeded an Assist with defaults before
// calling toml.DecodeFile.
func LoadDaemonSettings(path string) (DaemonSettings, error) {
	settings := DefaultDaemonSettings()
	if path == "" {
		return settings, nil
	}
	if err := toml.DecodeFile(path, &settings); err != nil {
		return settings, err
	}
	return settings, nil
}
