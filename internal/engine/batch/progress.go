package batch

import (
	"sync"
	"time"
)

// percentMultiplier converts a ratio to a percentage.
const percentMultiplier = 100

// Progress tracks completion of a planned run. Safe for concurrent use.
type Progress struct {
	mu sync.RWMutex

	totalItems      int
	totalChunks     int
	completedItems  int
	completedChunks int
	failedChunks    int
	enrichedItems   int
	startTime       time.Time
	lastUpdate      time.Time
}

// ProgressSnapshot is an immutable copy of Progress.
type ProgressSnapshot struct {
	TotalItems      int
	TotalChunks     int
	CompletedItems  int
	CompletedChunks int
	FailedChunks    int
	EnrichedItems   int
	StartTime       time.Time
	LastUpdateTime  time.Time
	PercentComplete float64
	ElapsedTime     time.Duration
	ItemsPerSecond  float64
	EstimatedLeft   time.Duration
}

// NewProgress starts tracking a run of totalItems split into totalChunks.
func NewProgress(totalItems, totalChunks int) *Progress {
	now := time.Now()
	return &Progress{
		totalItems:  totalItems,
		totalChunks: totalChunks,
		startTime:   now,
		lastUpdate:  now,
	}
}

// AddCompleted records a finished chunk of n items. ok is false when the
// chunk's task failed.
func (p *Progress) AddCompleted(n int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.completedItems += n
	p.completedChunks++
	if !ok {
		p.failedChunks++
	}
	p.lastUpdate = time.Now()
}

// AddEnriched records n items that received a value.
func (p *Progress) AddEnriched(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.enrichedItems += n
	p.lastUpdate = time.Now()
}

// PercentComplete returns the share of items whose chunk has completed (0-100).
func (p *Progress) PercentComplete() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.percentLocked()
}

// IsComplete reports whether every chunk has completed.
func (p *Progress) IsComplete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.completedChunks >= p.totalChunks
}

// Snapshot returns a consistent copy of the current state.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	elapsed := time.Since(p.startTime)
	snap := ProgressSnapshot{
		TotalItems:      p.totalItems,
		TotalChunks:     p.totalChunks,
		CompletedItems:  p.completedItems,
		CompletedChunks: p.completedChunks,
		FailedChunks:    p.failedChunks,
		EnrichedItems:   p.enrichedItems,
		StartTime:       p.startTime,
		LastUpdateTime:  p.lastUpdate,
		PercentComplete: p.percentLocked(),
		ElapsedTime:     elapsed,
	}

	if secs := elapsed.Seconds(); secs > 0 {
		snap.ItemsPerSecond = float64(p.completedItems) / secs
	}
	if p.completedItems > 0 && p.completedItems < p.totalItems {
		perItem := elapsed / time.Duration(p.completedItems)
		snap.EstimatedLeft = perItem * time.Duration(p.totalItems-p.completedItems)
	}

	return snap
}

func (p *Progress) percentLocked() float64 {
	if p.totalItems == 0 {
		return 0
	}
	return float64(p.completedItems) / float64(p.totalItems) * percentMultiplier
}
