// Package config loads and represents per-instrument configuration
// and the supervisor's own bootstrap settings.
package config

// CommunicationType selects the transport adapter an instrument uses.
type CommunicationType string

const (
	Serial       CommunicationType = "Serial"
	ModbusSerial CommunicationType = "Modbus Serial"
	ModbusTCP    CommunicationType = "Modbus TCP/IP"
	TCP          CommunicationType = "TCP/IP"
)

// RegisterClass selects which Modbus function code a register is read
// with. Defaults to Holding when the config omits it (Open
// Question 3).
type RegisterClass int

const (
	Holding RegisterClass = iota
	Input
)

// RegisterEntry is one row of an ordered register map: iteration order
// defines both what is read and the emitted column order. Scale is the
// per-register multiplier applied to the raw reading before it's
// formatted (minimalmodbus's numberOfDecimals/factor idiom); it defaults
// to 1 when the config gives a bare address instead of an
// [address, scale] pair.
type RegisterEntry struct {
	Metric  string
	Address int
	Scale   float64
}

// ConnectionInfo holds the transport-specific fields of a
// "connection_information" record. Load fills every field, falling back
// to a per-field default when the record omits it; fields unrelated to
// the instrument's CommunicationType are simply not used.
type ConnectionInfo struct {
	// Serial / TCP command-response common fields.
	Port              string
	Baud              int
	Timeout           float64 // seconds
	Command           string
	CommandWaitTime   float64 // seconds, 0 means "read immediately"
	CommandDelay      float64 // seconds, TCP command/response only
	EndOfString       string
	HandleGarbled     bool
	BufferSizeMax     int
	InstrumentIDPrefix *int // (id+128) hex-nibble prefix, e.g. "42C"-style instruments
	CommandPrefix      *int // generic hex-nibble prefix

	// Raw TCP.
	Host      string
	TCPPort   int
	LengthMax int

	// Modbus serial (RTU).
	Addresses []int
	Protocol  string
	DataLen   int
	Parity    string
	StopBits  int

	// Modbus TCP.
	RegisterAddressOffset int
	LowSignificantFirst   bool
}

// InstrumentConfig is the immutable-per-run configuration for one
// instrument.
type InstrumentConfig struct {
	InstrumentName    string
	Enabled           bool
	CommunicationType CommunicationType
	Stream            bool
	ConnectionInfo    ConnectionInfo

	Delimiter    string
	HeaderString string // empty means "no header"
	HasHeader    bool

	OutputDirectory string

	ReadIntervalSeconds      float64
	WriteIntervalSeconds     float64
	NewFileIntervalMinutes   int
	StreamLogIntervalSeconds float64

	SentenceList      []string
	SentenceDelimiter string

	IntegerRegisters RegisterMap // 16-bit unsigned
	Unsigned32       RegisterMap // 32-bit unsigned
	FloatRegisters   RegisterMap // 32-bit IEEE float
	RegisterClass    RegisterClass
	WriteMetricNames bool

	StartupPurgeSeconds float64
	HandleGarbled       bool
	Multiline           bool
}

// RegisterMap is an ordered metric_name -> register_address mapping
// (an ordered dictionary / list-of-pairs, not an unordered set).
type RegisterMap []RegisterEntry

// Get returns the address for name and whether it was found, preserving
// the ordered-map semantics without requiring callers to scan manually.
func (m RegisterMap) Get(name string) (int, bool) {
	for _, e := range m {
		if e.Metric == name {
			return e.Address, true
		}
	}
	return 0, false
}
