// Package transport implements the instrument-facing I/O adapters of
// byte-serial, Modbus RTU, Modbus TCP, and
// raw TCP. Each adapter is grounded on the matching function in
// original_source's logger.py (serial_init, modbus_init,
// TCPIP_stream_init and their read_* counterparts).
package transport

import (
	"context"

	"github.com/jackwackus/jaqfactory/internal/config"
	"github.com/jackwackus/jaqfactory/internal/daqerr"
)

// Reader is a command/response adapter: one call produces one reading.
type Reader interface {
	Read(ctx context.Context) (string, error)
	Close() error
}

// StreamReader is a passive adapter: the instrument pushes data on its
// own schedule and each call blocks until one complete sentence (or set
// of keyed sentences) has arrived.
type StreamReader interface {
	ReadStream(ctx context.Context) (string, error)
	Close() error
}

// Open constructs the Reader for cfg's communication type, for
// instruments polled in command/response mode.
func Open(cfg config.InstrumentConfig) (Reader, error) {
	switch cfg.CommunicationType {
	case config.Serial:
		return NewSerialTransport(cfg)
	case config.ModbusSerial:
		return NewModbusRTUTransport(cfg)
	case config.ModbusTCP:
		return NewModbusTCPTransport(cfg)
	case config.TCP:
		return NewTCPTransport(cfg)
	default:
		return nil, daqerr.Newf(daqerr.FatalStartup, "unsupported communication type %q", cfg.CommunicationType)
	}
}

// OpenStream constructs the StreamReader for cfg's communication type,
// for instruments that push data continuously.
func OpenStream(cfg config.InstrumentConfig) (StreamReader, error) {
	switch cfg.CommunicationType {
	case config.Serial:
		return NewSerialTransport(cfg)
	case config.TCP:
		return NewTCPTransport(cfg)
	default:
		return nil, daqerr.Newf(daqerr.FatalStartup, "communication type %q does not support streaming", cfg.CommunicationType)
	}
}
