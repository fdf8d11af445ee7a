package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/kjstillabower/weather-city-client/internal/models"
)

func entry(name string, fetchedAt time.Time) models.CityWeather {
	return models.CityWeather{
		CityName:  name,
		Coord:     models.Coordinates{Lat: 1, Lon: 2},
		Payload:   models.Payload(`{"temp":280.1}`),
		FetchedAt: fetchedAt,
	}
}

// TestCityCache_Fresh verifies that Fresh returns entries younger than the
// freshness window and skips entries that have aged out.
func TestCityCache_Fresh(t *testing.T) {
	now := time.Now()
	c := New(10, 10*time.Minute)

	tests := []struct {
		name      string
		fetchedAt time.Time
		wantOK    bool
	}{
		{
			name:      "just fetched",
			fetchedAt: now,
			wantOK:    true,
		},
		{
			name:      "nine minutes old",
			fetchedAt: now.Add(-9 * time.Minute),
			wantOK:    true,
		},
		{
			name:      "exactly ten minutes old",
			fetchedAt: now.Add(-10 * time.Minute),
			wantOK:    false,
		},
		{
			name:      "eleven minutes old",
			fetchedAt: now.Add(-11 * time.Minute),
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(10, 10*time.Minute)
			c.Put(entry("paris", tt.fetchedAt))

			_, ok := c.Fresh("paris", now)
			if ok != tt.wantOK {
				t.Errorf("Fresh() ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}

	_, ok := c.Fresh("missing", now)
	if ok {
		t.Error("Fresh() ok = true for a city never cached")
	}
}

// TestCityCache_FreshAt verifies that FreshAt requires both name and
// coordinates to match.
func TestCityCache_FreshAt(t *testing.T) {
	now := time.Now()
	c := New(10, 10*time.Minute)
	c.Put(entry("paris", now))

	if _, ok := c.FreshAt("paris", models.Coordinates{Lat: 1, Lon: 2}, now); !ok {
		t.Error("FreshAt() ok = false for matching name and coordinates")
	}
	if _, ok := c.FreshAt("paris", models.Coordinates{Lat: 3, Lon: 4}, now); ok {
		t.Error("FreshAt() ok = true for mismatched coordinates")
	}
	if _, ok := c.FreshAt("tokyo", models.Coordinates{Lat: 1, Lon: 2}, now); ok {
		t.Error("FreshAt() ok = true for mismatched name")
	}
}

// TestCityCache_Put_EvictsOldestAtCapacity verifies the capacity boundary:
// the cache holds at most 10 entries, and inserting an 11th distinct city
// evicts exactly the oldest-inserted one.
func TestCityCache_Put_EvictsOldestAtCapacity(t *testing.T) {
	now := time.Now()
	c := New(10, 10*time.Minute)

	for i := 0; i < 10; i++ {
		_, evicted := c.Put(entry(fmt.Sprintf("city-%d", i), now))
		if evicted {
			t.Fatalf("Put() evicted at %d entries, want no eviction until capacity", i+1)
		}
	}
	if c.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", c.Len())
	}

	old, evicted := c.Put(entry("city-10", now))
	if !evicted {
		t.Fatal("Put() did not evict when inserting an 11th entry")
	}
	if old.CityName != "city-0" {
		t.Errorf("evicted %q, want oldest-inserted %q", old.CityName, "city-0")
	}
	if c.Len() != 10 {
		t.Errorf("Len() = %d after eviction, want 10", c.Len())
	}

	entries := c.Entries()
	if entries[0].CityName != "city-1" {
		t.Errorf("oldest remaining entry = %q, want %q", entries[0].CityName, "city-1")
	}
	if entries[len(entries)-1].CityName != "city-10" {
		t.Errorf("newest entry = %q, want %q", entries[len(entries)-1].CityName, "city-10")
	}
}

// TestCityCache_Upsert verifies that an existing city is updated in place,
// keeping its insertion position, while a new city goes through eviction.
func TestCityCache_Upsert(t *testing.T) {
	now := time.Now()
	c := New(10, 10*time.Minute)
	c.Put(entry("paris", now.Add(-11*time.Minute)))
	c.Put(entry("tokyo", now))

	refreshed := entry("paris", now)
	refreshed.Payload = models.Payload(`{"temp":291.5}`)
	if _, evicted := c.Upsert(refreshed); evicted {
		t.Error("Upsert() evicted while updating an existing city")
	}

	if c.Len() != 2 {
		t.Fatalf("Len() = %d after upsert, want 2", c.Len())
	}
	entries := c.Entries()
	if entries[0].CityName != "paris" {
		t.Errorf("entries[0] = %q, want paris to keep its position", entries[0].CityName)
	}
	if string(entries[0].Payload) != `{"temp":291.5}` {
		t.Errorf("entries[0].Payload = %s, want updated payload", entries[0].Payload)
	}
	if !entries[0].FetchedAt.Equal(now) {
		t.Errorf("entries[0].FetchedAt = %v, want %v", entries[0].FetchedAt, now)
	}

	if _, evicted := c.Upsert(entry("osaka", now)); evicted {
		t.Error("Upsert() evicted below capacity")
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3 after inserting a new city", c.Len())
	}
}

// TestCityCache_Stale verifies that Stale returns pointers so callers can
// refresh payload and timestamp in place.
func TestCityCache_Stale(t *testing.T) {
	now := time.Now()
	c := New(10, 10*time.Minute)
	c.Put(entry("paris", now.Add(-11*time.Minute)))
	c.Put(entry("tokyo", now))

	stale := c.Stale(now)
	if len(stale) != 1 {
		t.Fatalf("Stale() returned %d entries, want 1", len(stale))
	}
	if stale[0].CityName != "paris" {
		t.Fatalf("Stale()[0] = %q, want %q", stale[0].CityName, "paris")
	}

	stale[0].Payload = models.Payload(`{"temp":290.0}`)
	stale[0].FetchedAt = now

	if _, ok := c.Fresh("paris", now); !ok {
		t.Error("entry not fresh after in-place refresh through Stale() pointer")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d after refresh, want 2 (no duplicate)", c.Len())
	}
}

// TestCityCache_Remove verifies that Remove drops all entries for the name
// and leaves others untouched.
func TestCityCache_Remove(t *testing.T) {
	now := time.Now()
	c := New(10, 10*time.Minute)
	c.Put(entry("paris", now))
	c.Put(entry("tokyo", now))

	removed := c.Remove("paris")
	if removed != 1 {
		t.Errorf("Remove() = %d, want 1", removed)
	}
	if _, ok := c.Fresh("paris", now); ok {
		t.Error("Fresh() found paris after Remove")
	}
	if _, ok := c.Fresh("tokyo", now); !ok {
		t.Error("Remove() dropped an unrelated entry")
	}

	if removed := c.Remove("paris"); removed != 0 {
		t.Errorf("Remove() on absent city = %d, want 0", removed)
	}
}

// TestNew_Defaults verifies fallback to default capacity and freshness.
func TestNew_Defaults(t *testing.T) {
	c := New(0, 0)
	if c.capacity != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", c.capacity, DefaultCapacity)
	}
	if c.Freshness() != DefaultFreshness {
		t.Errorf("Freshness() = %v, want %v", c.Freshness(), DefaultFreshness)
	}
}
