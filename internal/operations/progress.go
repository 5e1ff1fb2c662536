package operations

import (
	"fmt"
	"sync"
	"time"
)

// ProgressTracker tracks progress through a known number of items
type ProgressTracker struct {
	Stage     RunState
	Total     int
	Current   int
	StartTime time.Time
	mu        sync.Mutex
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(stage RunState, total int) *ProgressTracker {
	return &ProgressTracker{
		Stage:     stage,
		Total:     total,
		StartTime: time.Now(),
	}
}

// Increment counts one finished item and returns the new count
func (p *ProgressTracker) Increment() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Current++
	return p.Current
}

// GetProgress returns the current progress state
func (p *ProgressTracker) GetProgress() (current, total int, percentage float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Total > 0 {
		percentage = float64(p.Current) / float64(p.Total) * 100
	}
	return p.Current, p.Total, percentage
}

// GetETA calculates the estimated time remaining
func (p *ProgressTracker) GetETA() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Current == 0 || p.Total == 0 {
		return "calculating..."
	}
	if p.Current >= p.Total {
		return "0 seconds"
	}

	rate := float64(p.Current) / time.Since(p.StartTime).Seconds()
	if rate == 0 {
		return "calculating..."
	}
	remaining := float64(p.Total-p.Current) / rate

	switch {
	case remaining < 60:
		return fmt.Sprintf("%.0f seconds", remaining)
	case remaining < 3600:
		return fmt.Sprintf("%.1f minutes", remaining/60)
	default:
		return fmt.Sprintf("%.1f hours", remaining/3600)
	}
}
