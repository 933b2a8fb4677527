package transport

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	goserial "github.com/daedaluz/goserial"

	"github.com/jackwackus/jaqfactory/internal/config"
	"github.com/jackwackus/jaqfactory/internal/daqerr"
)

var baudRates = map[int]goserial.CFlag{
	1200:   goserial.B1200,
	2400:   goserial.B2400,
	4800:   goserial.B4800,
	9600:   goserial.B9600,
	19200:  goserial.B19200,
	38400:  goserial.B38400,
	57600:  goserial.B57600,
	115200: goserial.B115200,
}

// SerialTransport drives a byte-serial instrument, grounded on
// serial_init/read_serial_data/read_serial_stream.
type SerialTransport struct {
	port    *goserial.Port
	cfg     config.InstrumentConfig
	command []byte
}

// NewSerialTransport opens the port, applies raw/8N1 framing at the
// configured baud rate, and drains any buffered bytes before first use.
// An instrument with an ID prefix first gets its record-format command
// and is then drained the same way; a startup purge replaces the drain.
func NewSerialTransport(cfg config.InstrumentConfig) (*SerialTransport, error) {
	ci := cfg.ConnectionInfo
	opts := goserial.NewOptions().SetReadTimeout(time.Duration(ci.Timeout * float64(time.Second)))
	port, err := goserial.Open(ci.Port, opts)
	if err != nil {
		return nil, daqerr.New(daqerr.FatalStartup, err)
	}

	attrs, err := port.GetAttr()
	if err != nil {
		port.Close()
		return nil, daqerr.New(daqerr.FatalStartup, err)
	}
	attrs.MakeRaw()
	speed, ok := baudRates[ci.Baud]
	if !ok {
		speed = goserial.B9600
	}
	attrs.SetSpeed(speed)
	if err := port.SetAttr(goserial.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, daqerr.New(daqerr.FatalStartup, err)
	}

	t := &SerialTransport{port: port, cfg: cfg, command: buildSerialCommand(cfg)}

	switch {
	case ci.InstrumentIDPrefix != nil:
		formatCmd := append(append([]byte{}, hexPrefix(*ci.InstrumentIDPrefix+128)...), []byte("set lrec format 00 01\r")...)
		port.Write(formatCmd)
		time.Sleep(200 * time.Millisecond)
	case cfg.StartupPurgeSeconds > 0:
		buf := make([]byte, 4096)
		for i := 0; i < int(cfg.StartupPurgeSeconds); i++ {
			if !cfg.Stream {
				port.Write(t.command)
			}
			time.Sleep(time.Second)
			port.ReadTimeout(buf, 50*time.Millisecond)
		}
		return t, nil
	}

	buf := make([]byte, 4096)
	for {
		n, err := port.ReadTimeout(buf, 20*time.Millisecond)
		if err != nil || n == 0 {
			break
		}
	}
	return t, nil
}

func hexPrefix(id int) []byte {
	h := fmt.Sprintf("%x", id)
	if len(h)%2 != 0 {
		h = "0" + h
	}
	b, _ := hex.DecodeString(h)
	return b
}

// buildSerialCommand prepends the hex instrument-ID or generic command
// prefix, matching create_serial_command's precedence order.
func buildSerialCommand(cfg config.InstrumentConfig) []byte {
	ci := cfg.ConnectionInfo
	switch {
	case ci.InstrumentIDPrefix != nil:
		return append(hexPrefix(*ci.InstrumentIDPrefix+128), []byte(ci.Command)...)
	case ci.CommandPrefix != nil:
		return append(hexPrefix(*ci.CommandPrefix), []byte(ci.Command)...)
	default:
		return []byte(ci.Command)
	}
}

// Read sends command and reads back one response, grounded on
// read_serial_data: the 42C dialect uses read42C_output, everything else
// waits for an End of String marker or a fixed Command Wait Time.
func (t *SerialTransport) Read(ctx context.Context) (string, error) {
	ci := t.cfg.ConnectionInfo
	if t.cfg.InstrumentName == "42C" {
		return t.read42C(ctx, 0)
	}
	if _, err := t.port.Write(t.command); err != nil {
		return "", daqerr.New(daqerr.TransientTransport, err)
	}
	if ci.EndOfString != "" {
		return t.readUntil(ctx, ci.EndOfString)
	}
	if ci.CommandWaitTime > 0 {
		time.Sleep(time.Duration(ci.CommandWaitTime * float64(time.Second)))
	}
	buf := make([]byte, ci.bufferSizeOrDefault())
	n, err := t.port.ReadTimeout(buf, time.Duration(ci.Timeout*float64(time.Second)))
	if err != nil {
		return "", daqerr.New(daqerr.TransientTransport, err)
	}
	return decodeASCII(buf[:n], t.cfg.HandleGarbled), nil
}

func (ci config.ConnectionInfo) bufferSizeOrDefault() int {
	if ci.BufferSizeMax > 0 {
		return ci.BufferSizeMax
	}
	return 4096
}

func (t *SerialTransport) read42C(ctx context.Context, attempt int) (string, error) {
	if attempt >= 5 {
		return "", daqerr.Newf(daqerr.FramingUnderrun, "42C: response failed to decode after retries")
	}
	drain := make([]byte, 4096)
	for {
		n, err := t.port.ReadTimeout(drain, 10*time.Millisecond)
		if err != nil || n == 0 {
			break
		}
	}
	if _, err := t.port.Write(t.command); err != nil {
		return "", daqerr.New(daqerr.TransientTransport, err)
	}
	time.Sleep(200 * time.Millisecond)
	buf := make([]byte, 4096)
	n, err := t.port.ReadTimeout(buf, 200*time.Millisecond)
	if err != nil {
		return "", daqerr.New(daqerr.TransientTransport, err)
	}
	raw := buf[:n]
	crIdx := indexByte(raw, '\r')
	nlIdx := indexByte(raw, '\n')
	var body []byte
	if nlIdx >= 0 && crIdx >= 0 {
		body = append(append([]byte{}, raw[:nlIdx]...), raw[nlIdx+1:crIdx]...)
	} else if crIdx >= 0 {
		body = raw[:crIdx]
	} else {
		body = raw
	}
	if !validASCII(body) {
		return t.read42C(ctx, attempt+1)
	}
	return string(body), nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func validASCII(b []byte) bool {
	for _, c := range b {
		if c > 127 {
			return false
		}
	}
	return true
}

func decodeASCII(b []byte, lossy bool) string {
	if !lossy && !validASCII(b) {
		return ""
	}
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c <= 127 {
			out = append(out, c)
		}
	}
	return string(out)
}

func (t *SerialTransport) readUntil(ctx context.Context, marker string) (string, error) {
	var sb strings.Builder
	deadline := time.Now().Add(5 * time.Second)
	buf := make([]byte, 4096)
	for !strings.Contains(sb.String(), marker) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		if time.Now().After(deadline) {
			return "", daqerr.Newf(daqerr.FramingUnderrun, "serial: End of String marker never arrived")
		}
		time.Sleep(50 * time.Millisecond)
		n, err := t.port.ReadTimeout(buf, 20*time.Millisecond)
		if err != nil {
			continue
		}
		sb.WriteString(decodeASCII(buf[:n], t.cfg.HandleGarbled))
	}
	return sb.String(), nil
}

// ReadStream reads one streamed sentence, or (when the config declares a
// Sentence List) every keyed sentence before returning the delimited
// join, grounded on create_serial_stream_dic/read_serial_stream/
// parse_serial_stream_dic.
func (t *SerialTransport) ReadStream(ctx context.Context) (string, error) {
	ci := t.cfg.ConnectionInfo
	if len(t.cfg.SentenceList) == 0 {
		return t.readUntil(ctx, t.cfg.SentenceDelimiter)
	}

	pending := make(map[string]string, len(t.cfg.SentenceList))
	var buf strings.Builder
	deadline := time.Now().Add(10 * time.Second)
	raw := make([]byte, 4096)
	for {
		if allFound(t.cfg.SentenceList, pending) {
			break
		}
		if time.Now().After(deadline) {
			return "", daqerr.Newf(daqerr.FramingUnderrun, "serial stream: not all sentences arrived")
		}
		n, err := t.port.ReadTimeout(raw, 50*time.Millisecond)
		if n > ci.bufferSizeOrDefault() {
			return "", daqerr.Newf(daqerr.FramingUnderrun, "serial stream: buffer exceeded")
		}
		if err != nil || n == 0 {
			continue
		}
		buf.WriteString(decodeASCII(raw[:n], t.cfg.HandleGarbled))
		content := buf.String()
		for _, key := range t.cfg.SentenceList {
			if pending[key] != "" {
				continue
			}
			keyIdx := strings.Index(content, key)
			if keyIdx < 0 {
				continue
			}
			segment := content[keyIdx:]
			end := strings.Index(segment, t.cfg.SentenceDelimiter)
			if end <= 0 {
				continue
			}
			pending[key] = segment[:end]
			endIdx := keyIdx + end + len(t.cfg.SentenceDelimiter)
			content = content[:keyIdx] + content[endIdx:]
		}
		buf.Reset()
		buf.WriteString(content)
	}

	var out strings.Builder
	for i, key := range t.cfg.SentenceList {
		if i > 0 {
			out.WriteString(t.cfg.Delimiter)
		}
		out.WriteString(pending[key])
	}
	return out.String(), nil
}

func allFound(keys []string, pending map[string]string) bool {
	for _, k := range keys {
		if pending[k] == "" {
			return false
		}
	}
	return true
}

func (t *SerialTransport) Close() error {
	return t.port.Close()
}
