package game

import (
	"cmp"
	"slices"
	"time"
)

// PerfStats tracks how long each render phase takes. Step phases are
// timed by telemetry.PerfCollector inside the simulation; this covers the
// frame work around it.
type PerfStats struct {
	samples    map[string]*ring
	maxSamples int
}

// ring is a fixed-size window of durations with a running sum.
type ring struct {
	buf  []time.Duration
	next int
	sum  time.Duration
}

func (r *ring) add(d time.Duration, size int) {
	if len(r.buf) < size {
		r.buf = append(r.buf, d)
		r.sum += d
		return
	}
	r.sum += d - r.buf[r.next]
	r.buf[r.next] = d
	r.next = (r.next + 1) % size
}

// NewPerfStats creates a tracker averaging the last 120 frames.
func NewPerfStats() *PerfStats {
	return &PerfStats{
		samples:    make(map[string]*ring),
		maxSamples: 120,
	}
}

// Record adds a duration sample for the named phase.
func (p *PerfStats) Record(name string, d time.Duration) {
	r, ok := p.samples[name]
	if !ok {
		r = &ring{}
		p.samples[name] = r
	}
	r.add(d, p.maxSamples)
}

// Time runs fn and records its duration under name.
func (p *PerfStats) Time(name string, fn func()) {
	start := time.Now()
	fn()
	p.Record(name, time.Since(start))
}

// Avg returns the average duration for the named phase.
func (p *PerfStats) Avg(name string) time.Duration {
	r, ok := p.samples[name]
	if !ok || len(r.buf) == 0 {
		return 0
	}
	return r.sum / time.Duration(len(r.buf))
}

// Total returns the sum of all average durations.
func (p *PerfStats) Total() time.Duration {
	var total time.Duration
	for name := range p.samples {
		total += p.Avg(name)
	}
	return total
}

// SortedNames returns phase names by average duration, slowest first.
func (p *PerfStats) SortedNames() []string {
	names := make([]string, 0, len(p.samples))
	for name := range p.samples {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Compare(p.Avg(b), p.Avg(a))
	})
	return names
}
