package common

import (
	"fmt"
	"sync"
	"time"
)

// Metrics accumulates decode throughput counters. One writer per decode run;
// Snapshot may be read concurrently for progress display.
type Metrics struct {
	mu               sync.Mutex
	start            time.Time
	end              time.Time
	bytes            int64
	totalBytes       int64
	files            int64
	headerLines      int64
	checksumFailures int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Start() {
	m.mu.Lock()
	if m.start.IsZero() {
		m.start = time.Now()
		m.end = time.Time{}
	}
	m.mu.Unlock()
}

func (m *Metrics) Stop() {
	m.mu.Lock()
	if !m.start.IsZero() && m.end.IsZero() {
		m.end = time.Now()
	}
	m.mu.Unlock()
}

// AddFile records one decoded input and its size in bytes.
func (m *Metrics) AddFile(size int64) {
	if size < 0 {
		size = 0
	}
	m.mu.Lock()
	m.files++
	m.bytes += size
	m.mu.Unlock()
}

// AddHeaderLines records the number of header lines processed in one decode.
func (m *Metrics) AddHeaderLines(n int64) {
	if n <= 0 {
		return
	}
	m.mu.Lock()
	m.headerLines += n
	m.mu.Unlock()
}

func (m *Metrics) IncChecksumFailure() {
	m.mu.Lock()
	m.checksumFailures++
	m.mu.Unlock()
}

func (m *Metrics) SetTotalBytes(total int64) {
	if total < 0 {
		total = 0
	}
	m.mu.Lock()
	m.totalBytes = total
	m.mu.Unlock()
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		Duration:         m.elapsedLocked(),
		Bytes:            m.bytes,
		TotalBytes:       m.totalBytes,
		Files:            m.files,
		HeaderLines:      m.headerLines,
		ChecksumFailures: m.checksumFailures,
	}
}

func (m *Metrics) elapsedLocked() time.Duration {
	if m.start.IsZero() {
		return 0
	}
	if !m.end.IsZero() {
		return m.end.Sub(m.start)
	}
	return time.Since(m.start)
}

type MetricsSnapshot struct {
	Duration         time.Duration
	Bytes            int64
	TotalBytes       int64
	Files            int64
	HeaderLines      int64
	ChecksumFailures int64
}

func (s MetricsSnapshot) ThroughputBytesPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Bytes) / s.Duration.Seconds()
}

func (s MetricsSnapshot) String() string {
	return fmt.Sprintf("files=%d lines=%d checksumFailures=%d bytes=%d duration=%s throughput=%.0fB/s",
		s.Files, s.HeaderLines, s.ChecksumFailures, s.Bytes, s.Duration.Round(time.Millisecond), s.ThroughputBytesPerSecond())
}
