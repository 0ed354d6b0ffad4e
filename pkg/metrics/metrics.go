package metrics

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Metrics collects counters for a single extraction run
type Metrics struct {
	mu sync.RWMutex

	EntriesTotal     int64
	EntriesExtracted int64
	EntriesSkipped   int64 // failed bounds or path checks
	WriteFailures    int64
	BytesWritten     int64
	WriteDurationNs  int64

	startTime time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordExtracted records an asset that was written to its sink
func (m *Metrics) RecordExtracted(path string, bytes int64, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EntriesTotal++
	m.EntriesExtracted++
	m.BytesWritten += bytes
	m.WriteDurationNs += duration.Nanoseconds()

	log.Debug().
		Str("path", path).
		Int64("bytes", bytes).
		Dur("duration", duration).
		Msg("asset written")
}

// RecordSkipped records an entry that was rejected before any write was attempted
func (m *Metrics) RecordSkipped(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EntriesTotal++
	m.EntriesSkipped++

	log.Debug().
		Str("path", path).
		Int64("total_skipped", m.EntriesSkipped).
		Msg("asset skipped")
}

// RecordWriteFailure records an entry whose write was attempted and failed
func (m *Metrics) RecordWriteFailure(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EntriesTotal++
	m.WriteFailures++

	log.Debug().
		Str("path", path).
		Int64("total_write_failures", m.WriteFailures).
		Msg("asset write failed")
}

type Snapshot struct {
	EntriesTotal     int64
	EntriesExtracted int64
	EntriesSkipped   int64
	WriteFailures    int64
	BytesWritten     int64
	Elapsed          time.Duration
}

func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		EntriesTotal:     m.EntriesTotal,
		EntriesExtracted: m.EntriesExtracted,
		EntriesSkipped:   m.EntriesSkipped,
		WriteFailures:    m.WriteFailures,
		BytesWritten:     m.BytesWritten,
		Elapsed:          time.Since(m.startTime),
	}
}

// LogSummary logs a summary of the run
func (m *Metrics) LogSummary() {
	s := m.Snapshot()

	log.Info().
		Int64("entries", s.EntriesTotal).
		Int64("extracted", s.EntriesExtracted).
		Int64("skipped", s.EntriesSkipped).
		Int64("write_failures", s.WriteFailures).
		Int64("bytes_written", s.BytesWritten).
		Dur("elapsed", s.Elapsed).
		Msg("extraction summary")
}
