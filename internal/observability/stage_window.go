package observability

import (
	"maps"
	"math"
	"slices"
	"sync"
	"time"
)

// Relay stages timed per inbound message.
const (
	StageCompletion = "completion"
	StageDelivery   = "delivery"
	StageRelayTotal = "relay_total"
)

// Indicators counted alongside the stage timings.
const (
	IndicatorFallbackReply  = "fallback_reply"
	IndicatorSessionReset   = "session_reset"
	IndicatorDeliveryFailed = "delivery_failed"
	IndicatorEventDropped   = "event_dropped"
)

// relayTargetsP95MS are the p95 budgets an operator should expect. A
// non-streaming DeepSeek answer to a long conversation routinely takes a few
// seconds; the Send API normally answers well under a second.
var relayTargetsP95MS = map[string]float64{
	StageCompletion: 6000,
	StageDelivery:   1000,
	StageRelayTotal: 7000,
}

type StageStats struct {
	Stage       string  `json:"stage"`
	Samples     int     `json:"samples"`
	LastMS      float64 `json:"last_ms"`
	AvgMS       float64 `json:"avg_ms"`
	P50MS       float64 `json:"p50_ms"`
	P95MS       float64 `json:"p95_ms"`
	P99MS       float64 `json:"p99_ms"`
	TargetP95MS float64 `json:"target_p95_ms,omitempty"`
	OverTarget  bool    `json:"over_target"`
}

type Indicator struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type StageSnapshot struct {
	GeneratedAt time.Time    `json:"generated_at"`
	WindowSize  int          `json:"window_size"`
	Stages      []StageStats `json:"stages"`
	Indicators  []Indicator  `json:"indicators,omitempty"`
}

// stageWindow keeps the most recent latencies of each relay stage.
type stageWindow struct {
	mu         sync.Mutex
	size       int
	rings      map[string]*latencyRing
	indicators map[string]int
}

func newStageWindow(size int) *stageWindow {
	if size <= 0 {
		size = 256
	}
	return &stageWindow{
		size:       size,
		rings:      make(map[string]*latencyRing),
		indicators: make(map[string]int),
	}
}

func (w *stageWindow) Observe(stage string, ms float64) {
	if stage == "" || ms < 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	ring := w.rings[stage]
	if ring == nil {
		ring = &latencyRing{buf: make([]float64, 0, w.size)}
		w.rings[stage] = ring
	}
	ring.add(ms)
}

func (w *stageWindow) ObserveIndicator(name string) {
	if name == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.indicators[name]++
}

func (w *stageWindow) Snapshot() StageSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := StageSnapshot{
		GeneratedAt: time.Now().UTC(),
		WindowSize:  w.size,
		Stages:      make([]StageStats, 0, len(w.rings)),
	}
	for _, stage := range slices.Sorted(maps.Keys(w.rings)) {
		if stats, ok := w.rings[stage].stats(stage); ok {
			snap.Stages = append(snap.Stages, stats)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(w.indicators)) {
		snap.Indicators = append(snap.Indicators, Indicator{Name: name, Count: w.indicators[name]})
	}
	return snap
}

// latencyRing overwrites its oldest sample once full.
type latencyRing struct {
	buf  []float64
	next int
	last float64
}

func (r *latencyRing) add(ms float64) {
	r.last = ms
	if len(r.buf) < cap(r.buf) {
		r.buf = append(r.buf, ms)
		return
	}
	r.buf[r.next] = ms
	r.next = (r.next + 1) % len(r.buf)
}

func (r *latencyRing) stats(stage string) (StageStats, bool) {
	n := len(r.buf)
	if n == 0 {
		return StageStats{}, false
	}
	sorted := slices.Clone(r.buf)
	slices.Sort(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	p95 := round2(percentile(sorted, 0.95))
	target := relayTargetsP95MS[stage]
	return StageStats{
		Stage:       stage,
		Samples:     n,
		LastMS:      round2(r.last),
		AvgMS:       round2(sum / float64(n)),
		P50MS:       round2(percentile(sorted, 0.50)),
		P95MS:       p95,
		P99MS:       round2(percentile(sorted, 0.99)),
		TargetP95MS: target,
		OverTarget:  target > 0 && p95 > target,
	}, true
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, q float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case q <= 0:
		return sorted[0]
	case q >= 1:
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
