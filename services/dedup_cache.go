package services

import (
	"sync"
	"time"
)

// DefaultAssignmentDedupWindow suppresses repeat assignment notifications for
// the same task/assignee pair.
const DefaultAssignmentDedupWindow = 5 * time.Minute

// AssignmentDedupCache records when an assignment notification was last sent
// per (taskId, assigneeId) key. Check-and-set per key is atomic; keys are
// independent. Entries older than the window are evicted lazily so the cache
// does not grow without bound.
type AssignmentDedupCache struct {
	mu       sync.Mutex
	window   time.Duration
	lastSent map[string]time.Time
	calls    int

	now func() time.Time
}

func NewAssignmentDedupCache(window time.Duration) *AssignmentDedupCache {
	if window <= 0 {
		window = DefaultAssignmentDedupWindow
	}
	return &AssignmentDedupCache{
		window:   window,
		lastSent: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Allow reports whether a notification for the pair may be sent now. A
// suppressed request does not refresh the stored timestamp, so legitimate
// re-notifications are not starved once the window elapses.
func (c *AssignmentDedupCache) Allow(taskID, assigneeID string) bool {
	key := taskID + ":" + assigneeID
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if last, ok := c.lastSent[key]; ok && now.Sub(last) < c.window {
		return false
	}
	c.lastSent[key] = now

	c.calls++
	if c.calls%64 == 0 {
		c.evictLocked(now)
	}
	return true
}

// Window returns the configured suppression interval.
func (c *AssignmentDedupCache) Window() time.Duration {
	return c.window
}

func (c *AssignmentDedupCache) evictLocked(now time.Time) {
	for key, last := range c.lastSent {
		if now.Sub(last) >= c.window {
			delete(c.lastSent, key)
		}
	}
}
