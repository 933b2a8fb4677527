package enable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInstrumentConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".txt"), []byte(body), 0o644))
}

func TestSetRewritesEnabledLineInPlace(t *testing.T) {
	dir := t.TempDir()
	writeInstrumentConfig(t, dir, "G2401", "Instrument Name=G2401\nEnabled=False\nDelimiter=,\n")

	require.NoError(t, Set(dir, "G2401", true))

	raw, err := os.ReadFile(filepath.Join(dir, "G2401.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Instrument Name=G2401\nEnabled=True\nDelimiter=,\n", string(raw))
}

func TestSetRefusesFileWithNoEnabledLine(t *testing.T) {
	dir := t.TempDir()
	writeInstrumentConfig(t, dir, "G2401", "Instrument Name=G2401\nDelimiter=,\n")

	err := Set(dir, "G2401", true)
	assert.Error(t, err)
}

func TestListResolvesConfigurationErrorByAssignment(t *testing.T) {
	dir := t.TempDir()
	writeInstrumentConfig(t, dir, "Good", "Instrument Name=Good\nEnabled=True\nOutput Directory="+dir+"\n")
	// Missing config entirely for "Broken".

	entries := List(dir, []string{"Good", "Broken"})
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{InstrumentName: "Good", State: Enabled}, entries[0])
	assert.Equal(t, Entry{InstrumentName: "Broken", State: ConfigurationError}, entries[1])
}
