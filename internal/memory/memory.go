// Package memory configures the Go heap limit from the container
// environment and provides a backpressure signal for decode work.
// Decoded bitmaps dominate the heap, so the decode pool pauses when
// usage crosses the critical water mark and resumes once a collection
// brings it back under the high water mark.
package memory

import (
	"math"
	"os"
	"runtime"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"photogrid/internal/logging"
	"photogrid/internal/metrics"
)

// DefaultMemoryRatio is the fraction of the container memory limit
// given to the Go heap. The rest is reserved for ffmpeg, libvips
// buffers and goroutine stacks.
const DefaultMemoryRatio = 0.85

// ConfigureFromEnv sets GOMEMLIMIT from the environment. Call it early
// in main, before significant allocations.
//
//   - GOMEMLIMIT: respected as-is when set (standard Go variable)
//   - MEMORY_LIMIT: container limit in bytes, e.g. from the Kubernetes
//     Downward API; GOMEMLIMIT becomes MEMORY_RATIO of it
//   - MEMORY_RATIO: optional override of the 0.85 default
func ConfigureFromEnv() {
	if v := os.Getenv("GOMEMLIMIT"); v != "" {
		logging.Info("GOMEMLIMIT set via environment: %s", v)
		return
	}

	limitStr := os.Getenv("MEMORY_LIMIT")
	if limitStr == "" {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT left unconfigured")
		return
	}
	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit <= 0 {
		logging.Warn("Failed to parse MEMORY_LIMIT %q: %v", limitStr, err)
		return
	}

	ratio := DefaultMemoryRatio
	if v := os.Getenv("MEMORY_RATIO"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err == nil && parsed > 0 && parsed <= 1.0 {
			ratio = parsed
		} else {
			logging.Warn("MEMORY_RATIO %q out of range (0.0-1.0], using default %.2f", v, DefaultMemoryRatio)
		}
	}

	goMemLimit := int64(float64(limit) * ratio)
	debug.SetMemoryLimit(goMemLimit)
	logging.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s container limit)",
		formatBytes(goMemLimit), ratio*100, formatBytes(limit))
}

// Config holds monitor thresholds.
type Config struct {
	// LimitBytes is the soft heap limit. Zero means take GOMEMLIMIT,
	// and if that is unset the monitor is inert.
	LimitBytes int64
	// HighWaterMark is the usage fraction below which a pause lifts.
	HighWaterMark float64
	// CriticalWaterMark is the usage fraction at which decode pauses.
	CriticalWaterMark float64
	// CheckInterval is the sampling period.
	CheckInterval time.Duration
}

// DefaultConfig returns the monitor defaults.
func DefaultConfig() Config {
	return Config{
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     5 * time.Second,
	}
}

// Monitor samples heap usage and exposes a pause signal the decode
// pool blocks on under pressure.
type Monitor struct {
	config   Config
	limit    int64
	stopChan chan struct{}
	stopOnce sync.Once

	mu        sync.RWMutex
	current   uint64
	paused    bool
	pauseChan chan struct{}
}

// NewMonitor creates a monitor. With no limit available anywhere the
// monitor never pauses anything.
func NewMonitor(config Config) *Monitor {
	limit := config.LimitBytes
	if limit == 0 {
		if l := debug.SetMemoryLimit(-1); l > 0 && l < math.MaxInt64 {
			limit = l
			logging.Info("Memory monitor using GOMEMLIMIT: %s", formatBytes(limit))
		}
	}
	if limit == 0 {
		logging.Warn("Memory monitor: no memory limit configured, backpressure disabled")
	}
	return &Monitor{
		config:    config,
		limit:     limit,
		stopChan:  make(chan struct{}),
		pauseChan: make(chan struct{}),
	}
}

// Start begins sampling. A monitor without a limit stays idle.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	go m.loop()
}

// Stop terminates sampling and releases any paused waiters.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.check()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Monitor) check() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = stats.Alloc

	usage := float64(stats.Alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	switch {
	case usage >= m.config.CriticalWaterMark && !m.paused:
		logging.Warn("Memory critical (%.1f%% of limit), pausing decode work", usage*100)
		m.paused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryGCPausesTotal.Inc()
		go runtime.GC()
	case usage < m.config.HighWaterMark && m.paused:
		logging.Info("Memory recovered (%.1f%% of limit), resuming decode work", usage*100)
		m.paused = false
		metrics.MemoryPaused.Set(0)
		close(m.pauseChan)
		m.pauseChan = make(chan struct{})
	}
}

// WaitIfPaused blocks while usage is critical. It returns false only
// when the monitor is stopped while waiting.
func (m *Monitor) WaitIfPaused() bool {
	m.mu.RLock()
	if !m.paused {
		m.mu.RUnlock()
		return true
	}
	pauseChan := m.pauseChan
	m.mu.RUnlock()

	select {
	case <-pauseChan:
		return true
	case <-m.stopChan:
		return false
	}
}

// ShouldThrottle reports whether usage is above the high water mark.
// Preload batching consults this to stop issuing speculative loads.
func (m *Monitor) ShouldThrottle() bool {
	if m.limit == 0 {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return float64(m.current) >= float64(m.limit)*m.config.HighWaterMark
}

// IsPaused reports whether decode work is currently paused.
func (m *Monitor) IsPaused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// Usage returns current usage as a fraction of the limit, zero when no
// limit is configured.
func (m *Monitor) Usage() float64 {
	if m.limit == 0 {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return float64(m.current) / float64(m.limit)
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
