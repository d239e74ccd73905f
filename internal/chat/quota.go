package chat

import (
	"sync"
	"sync/atomic"
)

// DefaultMaxCallsPerStudent caps gateway calls per student per process.
// Keeps one over-enthusiastic student from burning the class API budget.
const DefaultMaxCallsPerStudent = 50

// QuotaTracker counts gateway calls globally and per student. Safe for
// concurrent use; batch analysis and chat sessions share one tracker.
type QuotaTracker struct {
	limit int
	total atomic.Int64

	mu         sync.Mutex
	perStudent map[string]int
}

// NewQuotaTracker creates a tracker with the given per-student limit.
// limit <= 0 means unlimited.
func NewQuotaTracker(limit int) *QuotaTracker {
	return &QuotaTracker{
		limit:      limit,
		perStudent: make(map[string]int),
	}
}

// TryAcquire reserves one call for the student. Returns false when the
// student has hit the cap; the global counter only moves on success.
func (q *QuotaTracker) TryAcquire(studentID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.limit > 0 && q.perStudent[studentID] >= q.limit {
		return false
	}
	q.perStudent[studentID]++
	q.total.Add(1)
	return true
}

// Calls returns how many calls the student has made.
func (q *QuotaTracker) Calls(studentID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.perStudent[studentID]
}

// TotalCalls returns the process-wide call count.
func (q *QuotaTracker) TotalCalls() int64 {
	return q.total.Load()
}
