package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name+".txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSerialInstrument(t *testing.T) {
	dir := t.TempDir()
	body := "Instrument Name=G2401\n" +
		"Enabled=True\n" +
		"Communication Type=Serial\n" +
		"Stream=False\n" +
		"Output Directory=" + dir + "\n" +
		"Delimiter=','\n" +
		"Header String=None\n" +
		"Read Interval=1\n" +
		"Write Interval=10\n" +
		"New File Interval=60\n" +
		"Connection Information={'Port': 'COM3', 'Baud': 9600, 'Timeout': 1, 'Command': 'VDF610\\r', 'End of String': '\\r\\n'}\n"
	writeConfig(t, dir, "G2401", body)

	cfg, err := Load(filepath.Join(dir, "G2401.txt"))
	require.NoError(t, err)
	assert.Equal(t, "G2401", cfg.InstrumentName)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, Serial, cfg.CommunicationType)
	assert.Equal(t, "COM3", cfg.ConnectionInfo.Port)
	assert.Equal(t, 9600, cfg.ConnectionInfo.Baud)
	assert.False(t, cfg.HasHeader)
}

func TestLoadRejectsInstrumentNameMismatch(t *testing.T) {
	dir := t.TempDir()
	body := "Instrument Name=SomeOtherName\n" +
		"Enabled=True\n" +
		"Communication Type=Serial\n" +
		"Output Directory=" + dir + "\n"
	writeConfig(t, dir, "G2401", body)

	_, err := Load(filepath.Join(dir, "G2401.txt"))
	assert.Error(t, err)
}

func TestLoadModbusTCPRegisterMaps(t *testing.T) {
	dir := t.TempDir()
	body := "Instrument Name=Picarro\n" +
		"Enabled=True\n" +
		"Communication Type=Modbus TCP/IP\n" +
		"Output Directory=" + dir + "\n" +
		"Delimiter=','\n" +
		"Float Register Dictionary={'CO2': 1000, 'CH4': 1002}\n" +
		"Connection Information={'HOST': '10.0.0.5', 'PORT': 502, 'Register Address Offset': 1, 'LoSigFirst': True}\n"
	writeConfig(t, dir, "Picarro", body)

	cfg, err := Load(filepath.Join(dir, "Picarro.txt"))
	require.NoError(t, err)
	assert.Equal(t, ModbusTCP, cfg.CommunicationType)
	addr, ok := cfg.FloatRegisters.Get("CO2")
	require.True(t, ok)
	assert.Equal(t, 1000, addr)
	assert.Equal(t, "10.0.0.5", cfg.ConnectionInfo.Host)
	assert.Equal(t, 502, cfg.ConnectionInfo.TCPPort)
	assert.Equal(t, 1, cfg.ConnectionInfo.RegisterAddressOffset)
}

func TestLoadIntegerRegisterScaleFactor(t *testing.T) {
	dir := t.TempDir()
	body := "Instrument Name=Licor\n" +
		"Enabled=True\n" +
		"Communication Type=Modbus Serial\n" +
		"Output Directory=" + dir + "\n" +
		"Delimiter=','\n" +
		"Integer Register Dictionary={'CO2': [1000, 0.1], 'Pressure': 1004}\n" +
		"Connection Information={'Addresses': [1]}\n"
	writeConfig(t, dir, "Licor", body)

	cfg, err := Load(filepath.Join(dir, "Licor.txt"))
	require.NoError(t, err)
	require.Len(t, cfg.IntegerRegisters, 2)
	assert.Equal(t, "CO2", cfg.IntegerRegisters[0].Metric)
	assert.Equal(t, 1000, cfg.IntegerRegisters[0].Address)
	assert.Equal(t, 0.1, cfg.IntegerRegisters[0].Scale)
	assert.Equal(t, "Pressure", cfg.IntegerRegisters[1].Metric)
	assert.Equal(t, 1.0, cfg.IntegerRegisters[1].Scale)
}

func TestReadInstrumentListSkipsBlankAndCommentLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instrlist.txt")
	require.NoError(t, os.WriteFile(path, []byte("G2401\n\n# not active\nPicarro\n"), 0o644))

	names, err := ReadInstrumentList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"G2401", "Picarro"}, names)
}
