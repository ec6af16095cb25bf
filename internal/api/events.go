package api

import (
	"database/sql"
	"time"

	"github.com/sergei/buoycams/internal/feed"
	"github.com/sergei/buoycams/internal/models"
)

const (
	// Query limits match the provider's historical behavior: the newest
	// 50 captures for one station, the newest 200 across all stations.
	stationSnapshotLimit = 50
	allSnapshotLimit     = 200
)

// captureEvent assembles the wire shape for one snapshot: its image, the
// recognized banner time when extraction succeeded, and the meteo records
// observed within the ±30 minute match window around the capture.
func (s *Server) captureEvent(snap models.Snapshot) (feed.CaptureEvent, error) {
	ev := feed.CaptureEvent{
		StationID: snap.StationID,
		ImageURL:  "/images/" + snap.ImagePath,
	}
	if snap.RecognizedTime.Valid || snap.RecognizedStation.Valid {
		ev.RekognitionData = &feed.RekognitionData{
			Station: snap.RecognizedStation.String,
			Time:    snap.RecognizedTime.String,
		}
	}

	window := 30 * time.Minute
	records, err := s.store.GetMeteoWindow(snap.StationID, snap.CapturedAt.Add(-window), snap.CapturedAt.Add(window))
	if err != nil {
		return feed.CaptureEvent{}, err
	}
	for _, rec := range records {
		ev.MeteoRecords = append(ev.MeteoRecords, feed.RawSample{
			MeteoTimestamp: rec.ObservedAt.UTC().Format("2006-01-02T15:04:05"),
			WindSpeed:      reading(rec.WindSpeed),
			Gust:           reading(rec.Gust),
			WindDir:        reading(rec.WindDir),
		})
	}
	return ev, nil
}

func (s *Server) captureEvents(snaps []models.Snapshot) ([]feed.CaptureEvent, error) {
	events := make([]feed.CaptureEvent, 0, len(snaps))
	for _, snap := range snaps {
		ev, err := s.captureEvent(snap)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// reading re-emits a stored field, restoring the "MM" sentinel for missing
// values so responses round-trip the upstream convention.
func reading(ns sql.NullString) feed.Reading {
	if !ns.Valid {
		return "MM"
	}
	return feed.Reading(ns.String)
}
