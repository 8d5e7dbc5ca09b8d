package capture

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// timestampLayout is the rotation suffix format: YYYYMMDD_HHMMSS.
const timestampLayout = "20060102_150405"

// rotationSuffix matches a timestamp suffix at the end of a file stem.
var rotationSuffix = regexp.MustCompile(`_\d{8}_\d{6}$`)

// stampedPath returns the on-disk path for a debug file opened at t:
// <dir>/<base>_<YYYYMMDD_HHMMSS><ext>.
func stampedPath(dir, base, ext string, t time.Time) string {
	return filepath.Join(dir, base+"_"+t.UTC().Format(timestampLayout)+ext)
}

// rotatedPath computes the next path for a file being rotated. Any existing
// timestamp suffix is stripped from the stem before the new one is
// appended, so a rotated file carries exactly one suffix no matter how many
// rotations it has been through. Naive concatenation would accumulate a
// suffix per rotation.
func rotatedPath(current string, t time.Time) string {
	dir := filepath.Dir(current)
	ext := filepath.Ext(current)
	stem := strings.TrimSuffix(filepath.Base(current), ext)
	stem = rotationSuffix.ReplaceAllString(stem, "")
	return filepath.Join(dir, stem+"_"+t.UTC().Format(timestampLayout)+ext)
}
