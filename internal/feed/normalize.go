package feed

import (
	"log"
	"math"
	"sort"
	"time"
)

// metersPerSecondToKnots converts NDBC wind readings (m/s) for display.
const metersPerSecondToKnots = 1.94384

// displayTimeFormat renders an instant for the chart axis and as the image
// label fallback. Banner times are UTC, so rendering stays in UTC.
const displayTimeFormat = "01/02 15:04"

// Sample is one flattened, display-ready reading in the output sequence. It
// carries everything needed for display by value, so a stale reference to a
// sample no longer in the current sequence still renders.
type Sample struct {
	Instant          time.Time
	DisplayTime      string
	ImageDisplayTime string
	WindSpeedKts     float64
	GustKts          float64
	WindDirDeg       float64

	// Parse-success flags distinguish a measured zero from a missing
	// reading. The zero fallback itself is unconditional.
	WindSpeedMeasured bool
	GustMeasured      bool
	WindDirMeasured   bool

	StationID string
	ImageURL  string
	Raw       RawSample
}

// Normalize flattens capture events into a single sequence sorted by instant
// ascending (stable, so equal instants keep event-then-sample order) and
// accumulates the distinct station IDs seen, including stations whose events
// carried no samples. Samples whose timestamp does not parse are skipped
// with a diagnostic; one malformed record must not blank the whole feed.
func Normalize(events []CaptureEvent) ([]Sample, []string) {
	var samples []Sample
	seen := make(map[string]bool)
	var stations []string

	for _, ev := range events {
		if ev.StationID != "" && !seen[ev.StationID] {
			seen[ev.StationID] = true
			stations = append(stations, ev.StationID)
		}
		for _, raw := range ev.MeteoRecords {
			instant, err := parseTimestamp(raw.MeteoTimestamp)
			if err != nil {
				log.Printf("feed: skipping sample for %s: bad timestamp %q: %v", ev.StationID, raw.MeteoTimestamp, err)
				continue
			}
			samples = append(samples, newSample(ev, raw, instant))
		}
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Instant.Before(samples[j].Instant)
	})
	sort.Strings(stations)
	return samples, stations
}

func newSample(ev CaptureEvent, raw RawSample, instant time.Time) Sample {
	s := Sample{
		Instant:     instant,
		DisplayTime: instant.UTC().Format(displayTimeFormat),
		StationID:   ev.StationID,
		ImageURL:    ev.ImageURL,
		Raw:         raw,
	}

	// The recognized banner text is trusted verbatim; it already reads as
	// a UTC clock time, so only the suffix is added.
	if ev.RekognitionData != nil && ev.RekognitionData.Time != "" {
		s.ImageDisplayTime = ev.RekognitionData.Time + " UTC"
	} else {
		s.ImageDisplayTime = s.DisplayTime
	}

	// Missing or unparseable readings fall back to 0.0 before the unit
	// conversion, so a failed parse yields exactly 0, not 0*1.94384.
	if v, ok := raw.WindSpeed.Float(); ok {
		s.WindSpeedKts = roundTenth(v * metersPerSecondToKnots)
		s.WindSpeedMeasured = true
	}
	if v, ok := raw.Gust.Float(); ok {
		s.GustKts = roundTenth(v * metersPerSecondToKnots)
		s.GustMeasured = true
	}
	if v, ok := raw.WindDir.Float(); ok {
		s.WindDirDeg = v
		s.WindDirMeasured = true
	}
	return s
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// timestampFormats covers the provider's ISO-8601 variants: the collector
// writes naive isoformat timestamps (taken as UTC), other producers include
// an offset.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampFormats {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
