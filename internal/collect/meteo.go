// Package collect polls NDBC buoycam images and standard meteorological
// files and persists them as snapshots and meteo records.
package collect

import (
	"bufio"
	"database/sql"
	"strings"
	"time"

	"github.com/sergei/buoycams/internal/models"
)

// missingSentinel marks an unmeasured field in NDBC text products.
const missingSentinel = "MM"

// matchWindow is the maximum distance between a banner time and the meteo
// row paired with it.
const matchWindow = 30 * time.Minute

// ParseMeteoFile parses the NDBC standard meteorological text format shared
// by the 5-day and realtime2 products. The first two lines are headers:
//
//	#YY  MM DD hh mm WDIR WSPD GST  WVHT   DPD   APD MWD   PRES  ATMP  WTMP  DEWP  VIS PTDY  TIDE
//	#yr  mo dy hr mn degT m/s  m/s     m   sec   sec degT   hPa  degC  degC  degC  nmi  hPa    ft
//
// Rows that do not parse are counted and skipped; one bad line must not
// abort the file.
func ParseMeteoFile(stationID, body string) (records []models.MeteoRecord, parseErrors int) {
	scanner := bufio.NewScanner(strings.NewReader(body))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		rec, ok := parseMeteoLine(stationID, text)
		if !ok {
			parseErrors++
			continue
		}
		records = append(records, rec)
	}
	return records, parseErrors
}

func parseMeteoLine(stationID, line string) (models.MeteoRecord, bool) {
	parts := strings.Fields(line)
	if len(parts) < 19 {
		return models.MeteoRecord{}, false
	}

	observedAt, err := time.Parse("2006 01 02 15 04",
		strings.Join(parts[:5], " "))
	if err != nil {
		return models.MeteoRecord{}, false
	}

	field := func(idx int) sql.NullString {
		if parts[idx] == missingSentinel {
			return sql.NullString{}
		}
		return sql.NullString{String: parts[idx], Valid: true}
	}

	return models.MeteoRecord{
		StationID:   stationID,
		ObservedAt:  observedAt.UTC(),
		WindDir:     field(5),
		WindSpeed:   field(6),
		Gust:        field(7),
		WaveHeight:  field(8),
		DomPeriod:   field(9),
		AvgPeriod:   field(10),
		MeanWaveDir: field(11),
		Pressure:    field(12),
		AirTemp:     field(13),
		WaterTemp:   field(14),
		Dewpoint:    field(15),
		Visibility:  field(16),
		PTendency:   field(17),
		Tide:        field(18),
	}, true
}

// ClosestRecord returns the record nearest to t within the ±30 minute match
// window, or nil when none qualifies.
func ClosestRecord(records []models.MeteoRecord, t time.Time) *models.MeteoRecord {
	var closest *models.MeteoRecord
	minDiff := matchWindow + time.Second
	for i := range records {
		diff := records[i].ObservedAt.Sub(t)
		if diff < 0 {
			diff = -diff
		}
		if diff <= matchWindow && diff < minDiff {
			minDiff = diff
			closest = &records[i]
		}
	}
	return closest
}
