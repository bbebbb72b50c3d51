package metrics

import (
	"sort"
	"sync"
	"time"
)

// Recorder aggregates request counters and latency observations per label set.
// It is a passive observer: callers never branch on its state.
type Recorder struct {
	mu        sync.Mutex
	requests  map[requestKey]int64
	errors    map[errorKey]int64
	latencies map[latencyKey]*latencyAggregate
}

type requestKey struct {
	Source       string
	TargetLength string
}

type errorKey struct {
	Source       string
	TargetLength string
	Category     string
}

type latencyKey struct {
	Source       string
	TargetLength string
	Status       string
}

type latencyAggregate struct {
	count int64
	sum   time.Duration
	min   time.Duration
	max   time.Duration
}

// NewRecorder constructs an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		requests:  make(map[requestKey]int64),
		errors:    make(map[errorKey]int64),
		latencies: make(map[latencyKey]*latencyAggregate),
	}
}

// RecordRequest increments the request counter for one attempt.
func (r *Recorder) RecordRequest(source, targetLength string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[requestKey{Source: source, TargetLength: targetLength}]++
}

// RecordError increments the error counter for a classified failure.
func (r *Recorder) RecordError(source, targetLength, category string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[errorKey{Source: source, TargetLength: targetLength, Category: category}]++
}

// ObserveLatency records one end-to-end latency sample.
func (r *Recorder) ObserveLatency(source, targetLength, status string, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := latencyKey{Source: source, TargetLength: targetLength, Status: status}
	agg, ok := r.latencies[key]
	if !ok {
		agg = &latencyAggregate{min: elapsed, max: elapsed}
		r.latencies[key] = agg
	}
	agg.count++
	agg.sum += elapsed
	if elapsed < agg.min {
		agg.min = elapsed
	}
	if elapsed > agg.max {
		agg.max = elapsed
	}
}

// CounterSample is one labeled counter value in a snapshot.
type CounterSample struct {
	Source       string `json:"source"`
	TargetLength string `json:"targetLength"`
	Category     string `json:"category,omitempty"`
	Count        int64  `json:"count"`
}

// LatencySample summarizes latency observations for one label set.
type LatencySample struct {
	Source       string `json:"source"`
	TargetLength string `json:"targetLength"`
	Status       string `json:"status"`
	Count        int64  `json:"count"`
	MeanMs       int64  `json:"meanMs"`
	MinMs        int64  `json:"minMs"`
	MaxMs        int64  `json:"maxMs"`
}

// Snapshot is a point-in-time JSON friendly view of the recorder.
type Snapshot struct {
	Requests  []CounterSample `json:"requests"`
	Errors    []CounterSample `json:"errors"`
	Latencies []LatencySample `json:"latencies"`
}

// Snapshot copies the current aggregates in deterministic order.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Requests:  make([]CounterSample, 0, len(r.requests)),
		Errors:    make([]CounterSample, 0, len(r.errors)),
		Latencies: make([]LatencySample, 0, len(r.latencies)),
	}
	for key, count := range r.requests {
		snap.Requests = append(snap.Requests, CounterSample{
			Source:       key.Source,
			TargetLength: key.TargetLength,
			Count:        count,
		})
	}
	for key, count := range r.errors {
		snap.Errors = append(snap.Errors, CounterSample{
			Source:       key.Source,
			TargetLength: key.TargetLength,
			Category:     key.Category,
			Count:        count,
		})
	}
	for key, agg := range r.latencies {
		mean := time.Duration(0)
		if agg.count > 0 {
			mean = agg.sum / time.Duration(agg.count)
		}
		snap.Latencies = append(snap.Latencies, LatencySample{
			Source:       key.Source,
			TargetLength: key.TargetLength,
			Status:       key.Status,
			Count:        agg.count,
			MeanMs:       mean.Milliseconds(),
			MinMs:        agg.min.Milliseconds(),
			MaxMs:        agg.max.Milliseconds(),
		})
	}

	sort.Slice(snap.Requests, func(i, j int) bool {
		return counterLess(snap.Requests[i], snap.Requests[j])
	})
	sort.Slice(snap.Errors, func(i, j int) bool {
		return counterLess(snap.Errors[i], snap.Errors[j])
	})
	sort.Slice(snap.Latencies, func(i, j int) bool {
		a, b := snap.Latencies[i], snap.Latencies[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.TargetLength != b.TargetLength {
			return a.TargetLength < b.TargetLength
		}
		return a.Status < b.Status
	})
	return snap
}

func counterLess(a, b CounterSample) bool {
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	if a.TargetLength != b.TargetLength {
		return a.TargetLength < b.TargetLength
	}
	return a.Category < b.Category
}
