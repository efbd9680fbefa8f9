// Package profiler collects timings of training and prediction phases.
package profiler

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Profiler tracks execution times for named phases
type Profiler struct {
	mu    sync.RWMutex
	times map[string][]time.Duration
}

// NewProfiler creates an empty profiler
func NewProfiler() *Profiler {
	return &Profiler{
		times: make(map[string][]time.Duration),
	}
}

// Timer measures one execution of a phase
type Timer struct {
	profiler *Profiler
	name     string
	start    time.Time
}

// Start begins timing a phase
func (p *Profiler) Start(name string) *Timer {
	return &Timer{
		profiler: p,
		name:     name,
		start:    time.Now(),
	}
}

// Stop records the elapsed time
func (t *Timer) Stop() time.Duration {
	duration := time.Since(t.start)
	t.profiler.Record(t.name, duration)
	return duration
}

// Record adds a measurement
func (p *Profiler) Record(name string, duration time.Duration) {
	p.mu.Lock()
	p.times[name] = append(p.times[name], duration)
	p.mu.Unlock()
}

// Time runs fn under a timer. The duration is recorded even when fn fails.
func (p *Profiler) Time(name string, fn func() error) error {
	timer := p.Start(name)
	err := fn()
	timer.Stop()
	return err
}

// Stats summarizes the measurements of one phase
type Stats struct {
	Name    string
	Count   int
	Total   time.Duration
	Average time.Duration
	StdDev  time.Duration
	Min     time.Duration
	Max     time.Duration
	Median  time.Duration
	P95     time.Duration
	P99     time.Duration
}

// Throughput returns executions per second
func (s *Stats) Throughput() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Count) / s.Total.Seconds()
}

// GetStats returns statistics for a phase
func (p *Profiler) GetStats(name string) *Stats {
	p.mu.RLock()
	times := p.times[name]
	samples := make([]float64, len(times))
	for i, t := range times {
		samples[i] = float64(t)
	}
	p.mu.RUnlock()

	if len(samples) == 0 {
		return &Stats{Name: name}
	}

	sort.Float64s(samples)

	var total float64
	for _, s := range samples {
		total += s
	}

	mean, std := stat.MeanStdDev(samples, nil)
	if len(samples) < 2 {
		std = 0
	}

	return &Stats{
		Name:    name,
		Count:   len(samples),
		Total:   time.Duration(total),
		Average: time.Duration(mean),
		StdDev:  time.Duration(std),
		Min:     time.Duration(samples[0]),
		Max:     time.Duration(samples[len(samples)-1]),
		Median:  time.Duration(stat.Quantile(0.5, stat.Empirical, samples, nil)),
		P95:     time.Duration(stat.Quantile(0.95, stat.Empirical, samples, nil)),
		P99:     time.Duration(stat.Quantile(0.99, stat.Empirical, samples, nil)),
	}
}

// GetAllStats returns statistics for every phase, sorted by name
func (p *Profiler) GetAllStats() []*Stats {
	p.mu.RLock()
	names := make([]string, 0, len(p.times))
	for name := range p.times {
		names = append(names, name)
	}
	p.mu.RUnlock()

	sort.Strings(names)

	stats := make([]*Stats, 0, len(names))
	for _, name := range names {
		stats = append(stats, p.GetStats(name))
	}
	return stats
}

// Reset clears all timing data
func (p *Profiler) Reset() {
	p.mu.Lock()
	p.times = make(map[string][]time.Duration)
	p.mu.Unlock()
}

// PrintReport writes a timing table
func (p *Profiler) PrintReport(w io.Writer) {
	stats := p.GetAllStats()

	if len(stats) == 0 {
		fmt.Fprintln(w, "No timing data available")
		return
	}

	fmt.Fprintf(w, "⏱️  Performance Profile Report\n")
	fmt.Fprintf(w, "════════════════════════════════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "%-20s %8s %10s %8s %8s %8s %8s %8s %10s\n",
		"Phase", "Count", "Total", "Avg", "StdDev", "Median", "P95", "P99", "Ops/s")
	fmt.Fprintf(w, "────────────────────────────────────────────────────────────────────────────────────\n")

	for _, s := range stats {
		if s.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "%-20s %8d %10s %8s %8s %8s %8s %8s %10.1f\n",
			truncate(s.Name, 20),
			s.Count,
			formatDuration(s.Total),
			formatDuration(s.Average),
			formatDuration(s.StdDev),
			formatDuration(s.Median),
			formatDuration(s.P95),
			formatDuration(s.P99),
			s.Throughput(),
		)
	}

	fmt.Fprintf(w, "════════════════════════════════════════════════════════════════════════════════════\n")
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1e3)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	default:
		return fmt.Sprintf("%.3fs", d.Seconds())
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
