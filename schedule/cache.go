/*
cache.go - Session-local allocation cache with derived daily totals

PURPOSE:
  A read-through/write-through mirror of server state held by one UI
  session. Two maps: cell hours keyed by (project, person, day), and
  derived per-person daily totals. SetHoursLocal keeps the totals correct
  in O(1) per edit instead of re-summing a person's whole day.

OWNERSHIP:
  One Cache per session, never shared across sessions or processes. The
  backing store is authoritative; this cache exists so a single-cell edit
  does not need a round trip to redisplay totals.

INVARIANT:
  dailyTotals[(person, day)] == sum of hours over allocations[(*, person, day)]
  Holds as long as every mutation goes through Load or SetHoursLocal.
  The maps are unexported precisely so nothing can bypass that.

DELETION SEMANTICS:
  The storage tier never keeps zero rows; this cache does. A cell zeroed
  during the session stays mapped to 0 so the grid re-renders it as empty
  without distinguishing "deleted now" from "never existed". GetHours
  reports 0 either way.

SEE ALSO:
  - service.go: mutates the cache only after the store confirms a commit
  - grid.go: reads the cache while composing cells
*/
package schedule

import (
	"sync"

	"github.com/warp/scheduling-engine/calendar"
)

// Cache is the process-local allocation mirror for one session.
type Cache struct {
	mu          sync.RWMutex
	allocations map[string]Hours // AllocationKey -> hours
	dailyTotals map[string]Hours // DailyTotalKey -> total hours
}

func NewCache() *Cache {
	return &Cache{
		allocations: make(map[string]Hours),
		dailyTotals: make(map[string]Hours),
	}
}

// Load bulk-replaces both maps. Used on initial page load and when
// switching months. No merge with prior state: after Load the cache
// reflects exactly the given inputs.
func (c *Cache) Load(allocations []Allocation, totals []DailyTotal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.allocations = make(map[string]Hours, len(allocations))
	for _, a := range allocations {
		c.allocations[a.Key()] = a.Hours
	}

	c.dailyTotals = make(map[string]Hours, len(totals))
	for _, t := range totals {
		c.dailyTotals[t.Key()] = t.Hours
	}
}

// GetHours returns the cached hours for a cell, or zero if absent.
func (c *Cache) GetHours(projectID, personID int, day calendar.Day) Hours {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if h, ok := c.allocations[calendar.AllocationKey(projectID, personID, day)]; ok {
		return h
	}
	return ZeroHours()
}

// GetDailyTotal returns the cached daily total for a person, or zero if absent.
func (c *Cache) GetDailyTotal(personID int, day calendar.Day) Hours {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if h, ok := c.dailyTotals[calendar.DailyTotalKey(personID, day)]; ok {
		return h
	}
	return ZeroHours()
}

// SetHoursLocal writes a single cell and maintains the derived total
// incrementally: newTotal = oldTotal - oldHours + newHours. Zero hours
// keeps the cell mapped to 0; the storage-tier deletion rule does not
// apply to this display mirror.
func (c *Cache) SetHoursLocal(projectID, personID int, day calendar.Day, hours Hours) {
	key := calendar.AllocationKey(projectID, personID, day)
	dailyKey := calendar.DailyTotalKey(personID, day)

	c.mu.Lock()
	defer c.mu.Unlock()

	oldHours, ok := c.allocations[key]
	if !ok {
		oldHours = ZeroHours()
	}
	oldTotal, ok := c.dailyTotals[dailyKey]
	if !ok {
		oldTotal = ZeroHours()
	}

	c.allocations[key] = hours
	c.dailyTotals[dailyKey] = oldTotal.Sub(oldHours).Add(hours)
}

// Len returns the number of cached cells, zero entries included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.allocations)
}
