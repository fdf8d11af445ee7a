package models

import (
	"encoding/json"
	"time"
)

// Coordinates is a geocoded position returned by the geocoding endpoint.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Payload is the weather endpoint's response body, carried verbatim.
// The upstream schema is treated as opaque; callers that need fields
// unmarshal it themselves.
type Payload = json.RawMessage

// CityWeather is one cached weather observation for a city.
type CityWeather struct {
	CityName  string      `json:"cityName"`
	Coord     Coordinates `json:"coord"`
	Payload   Payload     `json:"payload"`
	FetchedAt time.Time   `json:"fetchedAt"`
}

// Age returns how long ago the entry was fetched, relative to now.
func (c CityWeather) Age(now time.Time) time.Duration {
	return now.Sub(c.FetchedAt)
}
