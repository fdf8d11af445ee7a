package cache

import (
	"time"

	"github.com/kjstillabower/weather-city-client/internal/models"
)

// DefaultCapacity is the maximum number of cached cities per client.
const DefaultCapacity = 10

// DefaultFreshness is how long an entry counts as fresh after a fetch.
const DefaultFreshness = 10 * time.Minute

// CityCache is a bounded, insertion-ordered list of per-city weather entries.
// When inserting would exceed capacity, the oldest-inserted entry is evicted.
// Not thread-safe; use with a single goroutine or external synchronization.
type CityCache struct {
	entries   []models.CityWeather
	capacity  int
	freshness time.Duration
}

// New returns a cache with the given capacity and freshness window.
// Non-positive values fall back to the defaults.
func New(capacity int, freshness time.Duration) *CityCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &CityCache{
		entries:   make([]models.CityWeather, 0, capacity),
		capacity:  capacity,
		freshness: freshness,
	}
}

// Fresh returns the first entry matching name whose age at now is under the
// freshness window.
func (c *CityCache) Fresh(name string, now time.Time) (models.CityWeather, bool) {
	for _, e := range c.entries {
		if e.CityName == name && e.Age(now) < c.freshness {
			return e, true
		}
	}
	return models.CityWeather{}, false
}

// FreshAt returns a fresh entry matching both name and coordinates. Covers
// the case where a geocode round-trip was redundant because the coordinates
// were already cached.
func (c *CityCache) FreshAt(name string, coord models.Coordinates, now time.Time) (models.CityWeather, bool) {
	for _, e := range c.entries {
		if e.CityName == name && e.Coord == coord && e.Age(now) < c.freshness {
			return e, true
		}
	}
	return models.CityWeather{}, false
}

// Put appends the entry, evicting the oldest-inserted entry first when the
// cache already holds more than capacity-1 entries. The boundary deliberately
// checks before insert, so the cache holds at most capacity entries after.
// Returns the evicted entry, if any.
func (c *CityCache) Put(entry models.CityWeather) (models.CityWeather, bool) {
	var evicted models.CityWeather
	var didEvict bool
	if len(c.entries) > c.capacity-1 {
		evicted = c.entries[0]
		c.entries = c.entries[1:]
		didEvict = true
	}
	c.entries = append(c.entries, entry)
	return evicted, didEvict
}

// Upsert stores the entry under its city name. An existing entry for the
// name is updated in place, keeping its insertion position, so a re-fetch
// after the freshness window never duplicates a city. New names go through
// Put and its eviction policy. Returns the evicted entry, if any.
func (c *CityCache) Upsert(entry models.CityWeather) (models.CityWeather, bool) {
	for i := range c.entries {
		if c.entries[i].CityName == entry.CityName {
			c.entries[i] = entry
			return models.CityWeather{}, false
		}
	}
	return c.Put(entry)
}

// Stale returns pointers to every entry whose age at now has reached the
// freshness window, in insertion order. Callers update payload and timestamp
// in place.
func (c *CityCache) Stale(now time.Time) []*models.CityWeather {
	var stale []*models.CityWeather
	for i := range c.entries {
		if c.entries[i].Age(now) >= c.freshness {
			stale = append(stale, &c.entries[i])
		}
	}
	return stale
}

// Remove drops every entry matching name. Returns how many were removed.
func (c *CityCache) Remove(name string) int {
	kept := c.entries[:0]
	removed := 0
	for _, e := range c.entries {
		if e.CityName == name {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	c.entries = kept
	return removed
}

// Entries returns a copy of the cached entries in insertion order.
func (c *CityCache) Entries() []models.CityWeather {
	out := make([]models.CityWeather, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of cached entries.
func (c *CityCache) Len() int {
	return len(c.entries)
}

// Freshness returns the freshness window the cache was built with.
func (c *CityCache) Freshness() time.Duration {
	return c.freshness
}
