package transport

import (
	"context"
	"net"
	"time"

	"github.com/jackwackus/jaqfactory/internal/config"
	"github.com/jackwackus/jaqfactory/internal/daqerr"
)

// TCPTransport is a raw (non-Modbus) TCP instrument adapter, grounded on
// read_TCPIP_data (command/response) and TCPIP_stream_init (streaming).
type TCPTransport struct {
	cfg  config.InstrumentConfig
	conn net.Conn // only held open for the streaming case
}

// NewTCPTransport opens a persistent connection when the instrument
// streams; command/response instruments dial fresh per Read, matching
// the original's own `with socket.socket(...) as s` per-call scope.
func NewTCPTransport(cfg config.InstrumentConfig) (*TCPTransport, error) {
	t := &TCPTransport{cfg: cfg}
	if !cfg.Stream {
		return t, nil
	}
	ci := cfg.ConnectionInfo
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(ci.Host, itoa(ci.TCPPort)), 5*time.Second)
	if err != nil {
		return nil, daqerr.New(daqerr.FatalStartup, err)
	}
	buf := make([]byte, 1024)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			conn.Close()
			return nil, daqerr.New(daqerr.FatalStartup, err)
		}
		if n <= ci.LengthMax {
			break
		}
	}
	t.conn = conn
	return t, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		digits = append([]byte{'-'}, digits...)
	}
	return string(digits)
}

// Read sends the configured command over a fresh connection and returns
// the raw response, matching read_TCPIP_data's non-streaming branch.
func (t *TCPTransport) Read(ctx context.Context) (string, error) {
	ci := t.cfg.ConnectionInfo
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(ci.Host, itoa(ci.TCPPort)), 5*time.Second)
	if err != nil {
		return "", daqerr.New(daqerr.TransientTransport, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(ci.Command)); err != nil {
		return "", daqerr.New(daqerr.TransientTransport, err)
	}
	if ci.CommandDelay > 0 {
		time.Sleep(time.Duration(ci.CommandDelay * float64(time.Second)))
	}
	conn.SetReadDeadline(time.Now().Add(time.Duration(ci.Timeout * float64(time.Second))))
	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil {
		return "", daqerr.New(daqerr.TransientTransport, err)
	}
	return string(buf[:n]), nil
}

// ReadStream returns the next inbound message on the persistent
// streaming connection, discarding any message exceeding Length Max.
func (t *TCPTransport) ReadStream(ctx context.Context) (string, error) {
	ci := t.cfg.ConnectionInfo
	buf := make([]byte, 1024)
	for {
		n, err := t.conn.Read(buf)
		if err != nil {
			return "", daqerr.New(daqerr.TransientTransport, err)
		}
		if n > ci.LengthMax {
			continue
		}
		return string(buf[:n]), nil
	}
}

func (t *TCPTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	return t.conn.Close()
}
