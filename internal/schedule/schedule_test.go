package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewFileScheduleForMinuteBand(t *testing.T) {
	sched := NewFileScheduleFor(20)
	assert.Equal(t, Minute, sched.Type)
	assert.Equal(t, []int{0, 20, 40}, sched.Values)
}

func TestNewFileScheduleForRoundsToClosestFactor(t *testing.T) {
	// 7 is not a factor of 60; the closest factor is 6.
	sched := NewFileScheduleFor(7)
	assert.Equal(t, Minute, sched.Type)
	assert.Equal(t, []int{0, 6, 12, 18, 24, 30, 36, 42, 48, 54}, sched.Values)
}

func TestNewFileScheduleForHourBand(t *testing.T) {
	sched := NewFileScheduleFor(180)
	assert.Equal(t, Hour, sched.Type)
	assert.Equal(t, []int{0, 3, 6, 9, 12, 15, 18, 21}, sched.Values)
}

func TestNewFileScheduleForDailyBand(t *testing.T) {
	sched := NewFileScheduleFor(2000)
	assert.Equal(t, Daily, sched.Type)
}

func TestWriteScheduleForClampsAboveSixty(t *testing.T) {
	a := WriteScheduleFor(90)
	b := WriteScheduleFor(60)
	assert.Equal(t, b, a)
}

func TestWriteScheduleForRoundsToFactor(t *testing.T) {
	sched := WriteScheduleFor(7)
	assert.Contains(t, sched, 0)
	assert.True(t, len(sched) > 1)
}

func TestShouldRotateMinuteWindow(t *testing.T) {
	sched := NewFileSchedule{Type: Minute, Values: []int{0, 30}}
	inWindow := time.Date(2026, 1, 1, 10, 30, 2, 0, time.UTC)
	outOfWindow := time.Date(2026, 1, 1, 10, 30, 10, 0, time.UTC)
	assert.True(t, ShouldRotate(sched, inWindow))
	assert.False(t, ShouldRotate(sched, outOfWindow))
}

func TestRoundToSecondRollsIntoNextMinute(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 10, 30, 59, 600_000_000, time.UTC)
	got := RoundToSecond(t0)
	assert.Equal(t, time.Date(2026, 1, 1, 10, 31, 0, 0, time.UTC), got)
}

func TestRoundToSecondTruncatesWithinMinute(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 10, 30, 14, 200_000_000, time.UTC)
	got := RoundToSecond(t0)
	assert.Equal(t, time.Date(2026, 1, 1, 10, 30, 14, 0, time.UTC), got)
}
