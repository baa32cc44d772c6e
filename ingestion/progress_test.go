package ingestion

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Basic(t *testing.T) {
	var buf bytes.Buffer
	tracker := newProgressTracker(&buf, 10)

	tracker.Start()
	assert.True(t, tracker.started, "should be started")

	tracker.Increment(25)
	tracker.Increment(25)

	elapsed := tracker.Elapsed()
	assert.Greater(t, elapsed, time.Duration(0), "elapsed time should be positive")

	output := buf.String()
	assert.Contains(t, output, "Loaded", "should report loaded records")
	assert.Contains(t, output, "records/s", "should show rate")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := newProgressTracker(&buf, 10)

	tracker.Start()
	tracker.Increment(7)
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "Loaded 7 records", "finish should report the final count")
	assert.Contains(t, output, "\n", "finish should print newline")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := newProgressTracker(&buf, 10)

	// Should not panic when not started
	tracker.Increment(10)
	tracker.Finish()

	output := buf.String()
	assert.Equal(t, "", output, "should have no output when not started")
}

func TestProgressTracker_ReportInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := newProgressTracker(&buf, 100)

	tracker.Start()

	// First increments under the interval - should not print
	tracker.Increment(50)
	assert.Equal(t, "", buf.String(), "should not print under interval")

	// Crossing the interval - should print
	tracker.Increment(50)
	assert.NotEmpty(t, buf.String(), "should print at interval")

	// Just past the report - quiet again until the next interval
	buf.Reset()
	tracker.Increment(50)
	assert.Equal(t, "", buf.String(), "should stay quiet between intervals")
}

func TestProgressTracker_InvalidInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := newProgressTracker(&buf, 0)

	tracker.Start()
	tracker.Increment(1)

	assert.NotEmpty(t, buf.String(), "zero interval should be raised to every record")
}
