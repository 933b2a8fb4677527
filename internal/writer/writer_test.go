package writer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwackus/jaqfactory/internal/config"
	"github.com/jackwackus/jaqfactory/internal/schedule"
)

func testConfig(dir string, hasHeader bool) config.InstrumentConfig {
	cfg := config.InstrumentConfig{
		InstrumentName:  "G2401",
		OutputDirectory: dir,
		Delimiter:       ",",
	}
	if hasHeader {
		cfg.HasHeader = true
		cfg.HeaderString = "instrument,timestamp,co2"
	}
	return cfg
}

func TestFileNameFormat(t *testing.T) {
	cfg := testConfig("/data", false)
	ts := time.Date(2026, 3, 5, 9, 7, 0, 0, time.UTC)
	got := FileName(cfg, ts)
	assert.Equal(t, filepath.Join("/data", "G2401_20260305_0907.dat"), got)
}

func TestNewFileStateWritesHeaderExactlyOnce(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, true)
	now := time.Now()

	st, err := NewFileState(cfg, now)
	require.NoError(t, err)
	raw, err := os.ReadFile(st.Path)
	require.NoError(t, err)
	assert.Equal(t, cfg.HeaderString, string(raw))

	// A second call against the same rotation window must not duplicate it.
	st2, err := NewFileState(cfg, now)
	require.NoError(t, err)
	raw2, err := os.ReadFile(st2.Path)
	require.NoError(t, err)
	assert.Equal(t, cfg.HeaderString, string(raw2))
}

func TestFlushHeaderPresentUsesLeadingNewline(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, true)
	now := time.Now()
	st, err := NewFileState(cfg, now)
	require.NoError(t, err)

	remaining, err := Flush(cfg, st, []string{"G2401,2026-03-05 09:07:00,410"})
	require.NoError(t, err)
	assert.Empty(t, remaining)

	raw, err := os.ReadFile(st.Path)
	require.NoError(t, err)
	assert.Equal(t, cfg.HeaderString+"\nG2401,2026-03-05 09:07:00,410", string(raw))
}

func TestFlushNoHeaderUsesTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, false)
	now := time.Now()
	st, err := NewFileState(cfg, now)
	require.NoError(t, err)

	_, err = Flush(cfg, st, []string{"row-one", "row-two"})
	require.NoError(t, err)

	raw, err := os.ReadFile(st.Path)
	require.NoError(t, err)
	assert.Equal(t, "row-one\nrow-two\n", string(raw))
}

func TestRotateIsIdempotentWithinSameWindow(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, false)
	now := time.Date(2026, 3, 5, 9, 0, 2, 0, time.UTC)
	st, err := NewFileState(cfg, now)
	require.NoError(t, err)
	original := st.Path

	sched := schedule.NewFileScheduleFor(cfg.NewFileIntervalMinutes)
	require.NoError(t, Rotate(cfg, sched, st, now.Add(time.Second)))
	assert.Equal(t, original, st.Path)
}
