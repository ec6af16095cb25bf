// Package feed reconciles the provider's per-station capture events into a
// single time-ordered, unit-normalized sample sequence, and tracks which
// sample is active for detail display.
package feed

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Reading is a numeric field that may arrive as a JSON number, a quoted
// number, or the "MM" missing-data sentinel. The raw text is preserved.
type Reading string

func (r *Reading) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = Reading(s)
		return nil
	}
	if string(b) == "null" {
		*r = ""
		return nil
	}
	*r = Reading(strings.TrimSpace(string(b)))
	return nil
}

func (r Reading) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

// Float parses the reading. ok is false for the sentinel, absent fields and
// any other non-numeric text.
func (r Reading) Float() (float64, bool) {
	v, err := strconv.ParseFloat(string(r), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// RawSample is one timestamped sensor reading within a capture event, in the
// provider's wire shape. Field order and values are passed through as
// received; nothing here is validated.
type RawSample struct {
	MeteoTimestamp string  `json:"meteo_timestamp"`
	WindSpeed      Reading `json:"wind_speed"`
	Gust           Reading `json:"gust"`
	WindDir        Reading `json:"wind_dir"`
}

// RekognitionData carries the banner text extracted from the image upstream.
type RekognitionData struct {
	Station string `json:"station,omitempty"`
	Time    string `json:"time,omitempty"`
}

// CaptureEvent is one station's bundled poll-cycle result.
type CaptureEvent struct {
	StationID       string           `json:"station_id"`
	MeteoRecords    []RawSample      `json:"meteo_records"`
	ImageURL        string           `json:"image_url,omitempty"`
	RekognitionData *RekognitionData `json:"rekognition_data,omitempty"`
}

// UnmarshalJSON tolerates events with missing or malformed substructure: a
// meteo_records field that is absent or not an array of samples leaves the
// event with zero samples rather than failing the batch.
func (e *CaptureEvent) UnmarshalJSON(b []byte) error {
	var raw struct {
		StationID       string           `json:"station_id"`
		MeteoRecords    json.RawMessage  `json:"meteo_records"`
		ImageURL        string           `json:"image_url"`
		RekognitionData *RekognitionData `json:"rekognition_data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e.StationID = raw.StationID
	e.ImageURL = raw.ImageURL
	e.RekognitionData = raw.RekognitionData
	e.MeteoRecords = nil
	if len(raw.MeteoRecords) > 0 {
		var samples []RawSample
		if err := json.Unmarshal(raw.MeteoRecords, &samples); err == nil {
			e.MeteoRecords = samples
		}
	}
	return nil
}
