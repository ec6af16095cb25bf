package models

import (
	"database/sql"
	"time"
)

type Station struct {
	StationID string
	Name      string
	Latitude  float64
	Longitude float64
	Active    bool
}

// Snapshot is one collected buoycam capture: the archived image plus the
// banner text recognized off it. CapturedAt is the recognized banner time
// when extraction succeeded, else the download time.
type Snapshot struct {
	ID                int64
	StationID         string
	CapturedAt        time.Time
	ImagePath         string
	ImageMD5          string
	RecognizedStation sql.NullString
	RecognizedTime    sql.NullString // verbatim banner text, e.g. "11/18/2025 1610"
	CreatedAt         time.Time
}

// MeteoRecord is one row of the NDBC standard meteorological format.
// Readings keep the raw field text; the "MM" missing-data sentinel maps to
// an invalid NullString.
type MeteoRecord struct {
	ID          int64
	StationID   string
	ObservedAt  time.Time
	WindDir     sql.NullString
	WindSpeed   sql.NullString
	Gust        sql.NullString
	WaveHeight  sql.NullString
	DomPeriod   sql.NullString
	AvgPeriod   sql.NullString
	MeanWaveDir sql.NullString
	Pressure    sql.NullString
	AirTemp     sql.NullString
	WaterTemp   sql.NullString
	Dewpoint    sql.NullString
	Visibility  sql.NullString
	PTendency   sql.NullString
	Tide        sql.NullString
	CreatedAt   time.Time
}
