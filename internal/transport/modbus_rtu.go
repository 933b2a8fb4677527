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

// ModbusRTUTransport reads integer holding registers from one or more
// devices on a shared RS-485/RS-232 line, grounded on
// read_ModbusSerial_registers (each config["Connection Information"]
// "Addresses" entry is a distinct unit id on the bus).
type ModbusRTUTransport struct {
	clients []*modbus.ModbusClient
	cfg     daqconfig.InstrumentConfig
}

func parityByte(p string) uint {
	switch strings.ToUpper(p) {
	case "E":
		return modbus.PARITY_EVEN
	case "O":
		return modbus.PARITY_ODD
	default:
		return modbus.PARITY_NONE
	}
}

// NewModbusRTUTransport opens one client per configured bus address,
// all sharing the same serial line and framing parameters.
func NewModbusRTUTransport(cfg daqconfig.InstrumentConfig) (*ModbusRTUTransport, error) {
	ci := cfg.ConnectionInfo
	t := &ModbusRTUTransport{cfg: cfg}
	for range ci.Addresses {
		client, err := modbus.NewClient(&modbus.ClientConfiguration{
			URL:      fmt.Sprintf("%s://%s", protocolScheme(ci.Protocol), ci.Port),
			Speed:    uint(ci.Baud),
			DataBits: uint(ci.DataLen),
			Parity:   parityByte(ci.Parity),
			StopBits: uint(ci.StopBits),
			Timeout:  time.Duration(ci.Timeout * float64(time.Second)),
		})
		if err != nil {
			return nil, daqerr.New(daqerr.FatalStartup, err)
		}
		if err := client.Open(); err != nil {
			return nil, daqerr.New(daqerr.FatalStartup, err)
		}
		t.clients = append(t.clients, client)
	}
	return t, nil
}

func protocolScheme(protocol string) string {
	if protocol == "" {
		return "rtu"
	}
	return strings.ToLower(protocol)
}

// Read reads every configured integer register from every device in bus
// address order, joined by cfg.Delimiter, matching the nested-loop order
// of read_ModbusSerial_registers. Each raw reading is multiplied by its
// register's configured scale factor before formatting, matching
// read_register(register, factor).
func (t *ModbusRTUTransport) Read(ctx context.Context) (string, error) {
	ci := t.cfg.ConnectionInfo
	var b strings.Builder
	first := true
	for i, client := range t.clients {
		if err := client.SetUnitId(uint8(ci.Addresses[i])); err != nil {
			return "", daqerr.New(daqerr.TransientTransport, err)
		}
		for _, reg := range t.cfg.IntegerRegisters {
			val, err := client.ReadRegister(uint16(reg.Address), modbus.HOLDING_REGISTER)
			if err != nil {
				return "", daqerr.New(daqerr.TransientTransport, err)
			}
			if !first {
				b.WriteString(t.cfg.Delimiter)
			}
			first = false
			scaled := math.Round(float64(val)*reg.Scale*1000) / 1000
			b.WriteString(strconv.FormatFloat(scaled, 'f', -1, 64))
		}
	}
	return b.String(), nil
}

func (t *ModbusRTUTransport) Close() error {
	var lastErr error
	for _, c := range t.clients {
		if err := c.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
