package weather

import (
	"errors"
	"fmt"
	"strings"
)

// Location identifies the place a weather request is about. Exactly one of
// Name or the Lat/Lon pair is set per request.
type Location struct {
	Name string
	Lat  *float64
	Lon  *float64
}

func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// Describe renders the location the way it is embedded into oracle prompts.
func (l Location) Describe() string {
	if l.HasCoordinates() {
		return fmt.Sprintf("latitude %.4f, longitude %.4f", *l.Lat, *l.Lon)
	}
	return l.Name
}

// Key is the canonical cache/coalescing key for the location.
func (l Location) Key() string {
	if l.HasCoordinates() {
		return fmt.Sprintf("coords:%.4f,%.4f", *l.Lat, *l.Lon)
	}
	return "name:" + strings.ToLower(strings.TrimSpace(l.Name))
}

func (l Location) Validate() error {
	hasName := strings.TrimSpace(l.Name) != ""
	if hasName && (l.Lat != nil || l.Lon != nil) {
		return errors.New("location must be either a name or a coordinate pair, not both")
	}
	if !hasName && !l.HasCoordinates() {
		return errors.New("location requires a name or a coordinate pair")
	}
	if l.HasCoordinates() {
		if *l.Lat < -90 || *l.Lat > 90 {
			return errors.New("latitude must be between -90 and 90")
		}
		if *l.Lon < -180 || *l.Lon > 180 {
			return errors.New("longitude must be between -180 and 180")
		}
	}
	return nil
}

// Current holds the current-conditions block the oracle returns.
type Current struct {
	Temp      float64 `json:"temp"`
	Condition string  `json:"condition"`
	Humidity  float64 `json:"humidity"`
	WindSpeed float64 `json:"windSpeed"`
	FeelsLike float64 `json:"feelsLike"`
	UVIndex   float64 `json:"uvIndex"`
}

// ForecastDay is one entry of the daily forecast, nominally five per snapshot.
type ForecastDay struct {
	Date      string  `json:"date"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Condition string  `json:"condition"`
}

// Source is one provenance entry the oracle cited while grounding its answer.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Snapshot is the normalized weather record served to clients.
//
// IsRealtime is true only when the answer was grounded in live search and the
// oracle actually cited at least one source; answers produced from the model's
// static knowledge carry false.
type Snapshot struct {
	LocationName   string        `json:"locationName"`
	Current        Current       `json:"current"`
	Forecast       []ForecastDay `json:"forecast"`
	AIInsight      string        `json:"aiInsight"`
	ClothingAdvice string        `json:"clothingAdvice"`
	ActivityAdvice string        `json:"activityAdvice"`
	LastUpdated    string        `json:"lastUpdated"`
	IsRealtime     bool          `json:"isRealtime"`
	Sources        []Source      `json:"sources"`
}
