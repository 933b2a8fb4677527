package transport

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/simonvetter/modbus"

	daqconfig "github.com/jackwackus/jaqfactory/internal/config"
	"github.com/jackwackus/jaqfactory/internal/daqerr"
)

// Sentinel literals written in place of a register that failed to read
// after every retry, matching read_ModbusTCP_registers' value=None/'NaN'
// fields rather than aborting the whole row.
const (
	sentinelFloat = "NaN"
	sentinelInt   = "None"
)

// ModbusTCPTransport reads float, 32-bit unsigned, and 16-bit unsigned
// holding/input registers over Modbus TCP, grounded on
// read_ModbusTCP_registers and read_ModbusIEEE.
type ModbusTCPTransport struct {
	client *modbus.ModbusClient
	cfg    daqconfig.InstrumentConfig
}

func NewModbusTCPTransport(cfg daqconfig.InstrumentConfig) (*ModbusTCPTransport, error) {
	ci := cfg.ConnectionInfo
	client, err := modbus.NewClient(&modbus.ClientConfiguration{
		URL:     fmt.Sprintf("tcp://%s:%d", ci.Host, ci.TCPPort),
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, daqerr.New(daqerr.FatalStartup, err)
	}
	if err := client.Open(); err != nil {
		return nil, daqerr.New(daqerr.FatalStartup, err)
	}
	return &ModbusTCPTransport{client: client, cfg: cfg}, nil
}

func registerType(class daqconfig.RegisterClass) modbus.RegType {
	if class == daqconfig.Input {
		return modbus.INPUT_REGISTER
	}
	return modbus.HOLDING_REGISTER
}

// readIEEE754 reads the two 16-bit registers starting at addr and
// decodes them as a big-endian IEEE-754 float32, honoring
// config's low_significant_first byte ordering. Makes up to 5 attempts
// when the register read fails, matching read_ModbusTCP_registers'
// n_try loop.
func (t *ModbusTCPTransport) readIEEE754(addr uint16) (float64, error) {
	regType := registerType(t.cfg.RegisterClass)
	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		raw, err := t.client.ReadRegisters(addr, 2, regType)
		if err != nil {
			lastErr = err
			continue
		}
		return decodeIEEE754(raw[0], raw[1], t.cfg.ConnectionInfo.LowSignificantFirst, t.cfg.RegisterClass), nil
	}
	return 0, daqerr.New(daqerr.TransientTransport, lastErr)
}

// decodeIEEE754 reassembles a big-endian IEEE-754 float32 from two
// 16-bit registers, adapted from read_ModbusIEEE's struct.unpack call.
// Input-class registers round to 6 decimals (mypylib/setup_tools.py's
// read_ModbusIEEE); Holding-class registers round to 3, matching
// Python/daq/logger.py.
func decodeIEEE754(regLo, regHi uint16, lowFirst bool, class daqconfig.RegisterClass) float64 {
	if !lowFirst {
		regLo, regHi = regHi, regLo
	}
	bits := uint32(regHi)<<16 | uint32(regLo)
	value := float64(math.Float32frombits(bits))
	scale := 1000.0
	if class == daqconfig.Input {
		scale = 1000000.0
	}
	return math.Round(value*scale) / scale
}

func (t *ModbusTCPTransport) readUint(addr uint16, count uint16) ([]uint16, error) {
	regType := registerType(t.cfg.RegisterClass)
	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		raw, err := t.client.ReadRegisters(addr, count, regType)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}
	return nil, daqerr.New(daqerr.TransientTransport, lastErr)
}

// Read assembles one reading across the float, 32-bit-unsigned, and
// 16-bit-unsigned register maps in that order, matching
// read_ModbusTCP_registers, with each address adjusted by the
// configured register_address_offset.
func (t *ModbusTCPTransport) Read(ctx context.Context) (string, error) {
	ci := t.cfg.ConnectionInfo
	var b strings.Builder
	first := true

	appendField := func(name string, value string) {
		if !first {
			b.WriteString(",")
		}
		first = false
		if t.cfg.WriteMetricNames {
			b.WriteString(name)
			b.WriteString(",")
		}
		b.WriteString(value)
	}

	for _, reg := range t.cfg.FloatRegisters {
		addr := uint16(reg.Address - ci.RegisterAddressOffset)
		value, err := t.readIEEE754(addr)
		if err != nil {
			appendField(reg.Metric, sentinelFloat)
			continue
		}
		appendField(reg.Metric, strconv.FormatFloat(value, 'f', -1, 64))
	}
	for _, reg := range t.cfg.Unsigned32 {
		addr := uint16(reg.Address - ci.RegisterAddressOffset)
		raw, err := t.readUint(addr, 2)
		if err != nil {
			appendField(reg.Metric, sentinelInt)
			continue
		}
		appendField(reg.Metric, fmt.Sprintf("0x%04x%04x", raw[0], raw[1]))
	}
	for _, reg := range t.cfg.IntegerRegisters {
		addr := uint16(reg.Address - ci.RegisterAddressOffset)
		raw, err := t.readUint(addr, 1)
		if err != nil {
			appendField(reg.Metric, sentinelInt)
			continue
		}
		appendField(reg.Metric, strconv.Itoa(int(raw[0])))
	}
	return b.String(), nil
}

func (t *ModbusTCPTransport) Close() error {
	return t.client.Close()
}
