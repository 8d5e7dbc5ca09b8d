package capture

import (
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

func TestStampedPath(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	got := stampedPath("/var/debug", "orders", ".avro", ts)
	want := filepath.Join("/var/debug", "orders_20260314_092653.avro")
	if got != want {
		t.Errorf("stampedPath() = %q, want %q", got, want)
	}
}

func TestRotatedPathSingleSuffix(t *testing.T) {
	ts1 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ts2 := time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC)
	ts3 := time.Date(2026, 1, 2, 3, 4, 7, 0, time.UTC)

	path := stampedPath("/var/debug", "orders", ".pb", ts1)
	path = rotatedPath(path, ts2)
	path = rotatedPath(path, ts3)

	want := filepath.Join("/var/debug", "orders_20260102_030407.pb")
	if path != want {
		t.Errorf("rotatedPath() after two rotations = %q, want %q", path, want)
	}

	// Exactly one timestamp suffix, no matter how many rotations.
	stem := regexp.MustCompile(`_\d{8}_\d{6}`)
	if n := len(stem.FindAllString(filepath.Base(path), -1)); n != 1 {
		t.Errorf("rotated name carries %d timestamp suffixes, want 1", n)
	}
}

func TestRotatedPathKeepsDirAndExt(t *testing.T) {
	ts := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	got := rotatedPath(filepath.Join("/data", "out", "stream_20260101_000000.avro"), ts)
	want := filepath.Join("/data", "out", "stream_20260506_070809.avro")
	if got != want {
		t.Errorf("rotatedPath() = %q, want %q", got, want)
	}
}
