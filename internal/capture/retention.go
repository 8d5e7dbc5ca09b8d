package capture

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hatch-labs/mirrorship/internal/domain"
	"github.com/hatch-labs/mirrorship/internal/metrics"
	"github.com/hatch-labs/mirrorship/pkg/log"
)

// ledger tracks the rotated debug files for one format, oldest first.
// Insertion order is rotation order. The ledger lives in memory only; at
// startup it is rebuilt from the directory contents so retention carries
// across restarts.
type ledger struct {
	format domain.Format
	limit  int // <= 0 means unlimited; 0 is unlimited by explicit contract
	paths  []string

	logger  log.Logger
	metrics *metrics.Metrics
}

func newLedger(format domain.Format, limit int, logger log.Logger, m *metrics.Metrics) *ledger {
	return &ledger{
		format:  format,
		limit:   limit,
		logger:  logger,
		metrics: m,
	}
}

// seed rebuilds the ledger from rotated files already present under dir.
// The timestamp suffix sorts lexicographically, so a name sort yields
// rotation order. A missing directory is not an error: nothing has been
// written yet.
func (l *ledger) seed(dir, base, ext string) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("retention: scan output dir failed",
				log.String("dir", dir), log.Err(err))
		}
		return
	}

	var names []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, base+"_") || !strings.HasSuffix(name, ext) {
			continue
		}
		if !rotationSuffix.MatchString(strings.TrimSuffix(name, ext)) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, n := range names {
		l.paths = append(l.paths, filepath.Join(dir, n))
	}
}

// register appends a freshly rotated path. Callers must register the old
// file only after the replacement file is open and writable, so that a
// retention failure can never interrupt the write path.
func (l *ledger) register(path string) {
	l.paths = append(l.paths, path)
}

// enforce deletes from the head until the retention bound holds. Deletion
// failures are logged and treated as non-fatal; the entry is dropped
// regardless, since retrying deletion of a missing file has no value.
func (l *ledger) enforce() {
	if l.limit <= 0 {
		return
	}
	for len(l.paths) > l.limit {
		victim := l.paths[0]
		l.paths = l.paths[1:]

		if err := os.Remove(victim); err != nil && !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("retention: delete failed",
				log.String("path", victim), log.Err(err))
			continue
		}
		l.metrics.RetentionDeletes.WithLabelValues(l.format.String()).Inc()
	}
}

// size returns the number of rotated files currently tracked.
func (l *ledger) size() int {
	return len(l.paths)
}

// newestStamp returns the rotation timestamp of the newest tracked file, or
// the zero time for an empty ledger. A restarted writer seeds its stamp
// counter from this so it can never reuse (and truncate) a name already on
// disk.
func (l *ledger) newestStamp() time.Time {
	if len(l.paths) == 0 {
		return time.Time{}
	}
	base := filepath.Base(l.paths[len(l.paths)-1])
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	suffix := rotationSuffix.FindString(stem)
	if suffix == "" {
		return time.Time{}
	}
	t, err := time.Parse(timestampLayout, strings.TrimPrefix(suffix, "_"))
	if err != nil {
		return time.Time{}
	}
	return t
}
