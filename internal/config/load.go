package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackwackus/jaqfactory/internal/daqerr"
)

// rawStringKeys are the exactly-three keys that stay the raw,
// unquoted remainder of the line rather than a self-describing literal.
var rawStringKeys = map[string]bool{
	"Instrument Name":   true,
	"Communication Type": true,
	"Output Directory":  true,
}

// readKeyValues parses one instrument config file into a (map-backed,
// unordered) key->Value table, grounded on original_source's read_daq_config line
// scanner (split on the first '=', skip blank object names).
func readKeyValues(path string) (map[string]Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values := make(map[string]Value)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		sep := strings.IndexByte(line, '=')
		if sep < 0 {
			continue
		}
		key := line[:sep]
		if len(key) < 1 {
			continue
		}
		raw := line[sep+1:]
		if rawStringKeys[key] {
			values[key] = RawString(raw)
			continue
		}
		v, err := ParseLiteral(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: key %q: %w", path, key, err)
		}
		values[key] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func lookupMap(values map[string]Value, key string) map[string]Value {
	v, ok := values[key]
	if !ok {
		return nil
	}
	entries, ok := v.Map()
	if !ok {
		return nil
	}
	out := make(map[string]Value, len(entries))
	for _, e := range entries {
		out[e.key] = e.val
	}
	return out
}

func lookupRegisterMap(values map[string]Value, key string) RegisterMap {
	v, ok := values[key]
	if !ok {
		return nil
	}
	entries, ok := v.Map()
	if !ok {
		return nil
	}
	out := make(RegisterMap, 0, len(entries))
	for _, e := range entries {
		addr, scale := registerAddressAndScale(e.val)
		out = append(out, RegisterEntry{Metric: e.key, Address: addr, Scale: scale})
	}
	return out
}

// registerAddressAndScale accepts either a bare register address (scale
// defaults to 1) or a [address, scale] pair, matching
// read_register(register, factor)'s per-register scale factor.
func registerAddressAndScale(v Value) (int, float64) {
	if addr, ok := v.Int(); ok {
		return addr, 1
	}
	if list, ok := v.List(); ok && len(list) == 2 {
		addr, _ := list[0].Int()
		scale, ok := list[1].Float()
		if !ok {
			scale = 1
		}
		return addr, scale
	}
	return 0, 1
}

func stringField(m map[string]Value, key, def string) string {
	v, ok := m[key]
	if !ok || v.IsNone() {
		return def
	}
	if s, ok := v.String(); ok {
		return s
	}
	return def
}

func intField(m map[string]Value, key string, def int) int {
	v, ok := m[key]
	if !ok || v.IsNone() {
		return def
	}
	if i, ok := v.Int(); ok {
		return i
	}
	return def
}

func intPtrField(m map[string]Value, key string) *int {
	v, ok := m[key]
	if !ok || v.IsNone() {
		return nil
	}
	if i, ok := v.Int(); ok {
		return &i
	}
	return nil
}

func floatField(m map[string]Value, key string, def float64) float64 {
	v, ok := m[key]
	if !ok || v.IsNone() {
		return def
	}
	if f, ok := v.Float(); ok {
		return f
	}
	return def
}

func boolField(m map[string]Value, key string, def bool) bool {
	v, ok := m[key]
	if !ok || v.IsNone() {
		return def
	}
	if b, ok := v.Bool(); ok {
		return b
	}
	return def
}

func stringListField(m map[string]Value, key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	list, ok := v.List()
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		if s, ok := e.String(); ok {
			out = append(out, s)
		}
	}
	return out
}

// Load reads and validates one instrument's config file. It enforces
// the ConfigInvalid rule: instrument_name must equal the filename
// stem.
func Load(path string) (InstrumentConfig, error) {
	values, err := readKeyValues(path)
	if err != nil {
		return InstrumentConfig{}, daqerr.New(daqerr.ConfigInvalid, err)
	}

	name := stringField(values, "Instrument Name", "")
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if name != stem {
		return InstrumentConfig{}, daqerr.Newf(daqerr.ConfigInvalid,
			"%s: instrument_name %q does not match filename stem %q", path, name, stem)
	}

	conn := lookupMap(values, "Connection Information")

	cfg := InstrumentConfig{
		InstrumentName:    name,
		Enabled:           boolField(values, "Enabled", false),
		CommunicationType: CommunicationType(stringField(values, "Communication Type", "")),
		Stream:            boolField(values, "Stream", false),

		Delimiter:       stringField(values, "Delimiter", ","),
		OutputDirectory: stringField(values, "Output Directory", ""),

		ReadIntervalSeconds:      floatField(values, "Read Interval", 1),
		WriteIntervalSeconds:     floatField(values, "Write Interval", 10),
		NewFileIntervalMinutes:   intField(values, "New File Interval", 60),
		StreamLogIntervalSeconds: floatField(values, "Stream Log Interval", 0),

		SentenceList:      stringListField(values, "Sentence List"),
		SentenceDelimiter: stringField(values, "Sentence Delimiter", "\r\n"),

		IntegerRegisters: lookupRegisterMap(values, "Integer Register Dictionary"),
		Unsigned32:       lookupRegisterMap(values, "Unsigned 32 Bit Register Dictionary"),
		FloatRegisters:   lookupRegisterMap(values, "Float Register Dictionary"),
		WriteMetricNames: boolField(values, "Write Metric Names", false),

		StartupPurgeSeconds: floatField(values, "Startup Purge", 0),
		HandleGarbled:       boolField(values, "Handle Garbled", false),
		Multiline:           boolField(values, "Multiline", false),
	}

	if hs, ok := values["Header String"]; ok && !hs.IsNone() {
		if s, ok := hs.String(); ok {
			cfg.HeaderString = s
			cfg.HasHeader = true
		}
	}

	if conn != nil {
		cfg.ConnectionInfo = ConnectionInfo{
			Port:            stringField(conn, "Port", ""),
			Baud:            intField(conn, "Baud", 9600),
			Timeout:         floatField(conn, "Timeout", 1),
			Command:         stringField(conn, "Command", ""),
			CommandWaitTime: floatField(conn, "Command Wait Time", 0),
			CommandDelay:    floatField(conn, "Command Delay", 0),
			EndOfString:     stringField(conn, "End of String", ""),
			HandleGarbled:   boolField(conn, "Handle Garbled", false),
			BufferSizeMax:   intField(conn, "Buffer Size Max", 4096),

			InstrumentIDPrefix: intPtrField(conn, "Instrument ID"),
			CommandPrefix:      intPtrField(conn, "Command Prefix"),

			Host:      stringField(conn, "HOST", ""),
			TCPPort:   intField(conn, "PORT", 0),
			LengthMax: intField(conn, "Length Max", 1024),

			Protocol: stringField(conn, "Protocol", "rtu"),
			DataLen:  intField(conn, "DataLen", 8),
			Parity:   stringField(conn, "Parity", "N"),
			StopBits: intField(conn, "StopBits", 1),

			RegisterAddressOffset: intField(conn, "Register Address Offset", 0),
			LowSignificantFirst:   boolField(conn, "LoSigFirst", true),
		}
		if addrs, ok := conn["Addresses"]; ok {
			if list, ok := addrs.List(); ok {
				for _, a := range list {
					if i, ok := a.Int(); ok {
						cfg.ConnectionInfo.Addresses = append(cfg.ConnectionInfo.Addresses, i)
					}
				}
			}
		}
		if rc, ok := conn["Register Class"]; ok {
			if s, ok := rc.String(); ok && strings.EqualFold(s, "input") {
				cfg.RegisterClass = Input
			}
		}
	}

	return cfg, nil
}
