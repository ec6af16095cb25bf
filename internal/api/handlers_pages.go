package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/sergei/buoycams/internal/models"
)

type IndexData struct {
	Stations  []models.Station
	Snapshots []SnapshotRow
}

type SnapshotRow struct {
	StationID  string
	CapturedAt string
	ImageURL   string
	ThumbURL   string
	Recognized string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	stations, err := s.store.GetActiveStations()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	snaps, err := s.store.GetAllSnapshots(20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := IndexData{Stations: stations}
	for _, snap := range snaps {
		row := SnapshotRow{
			StationID:  snap.StationID,
			CapturedAt: snap.CapturedAt.UTC().Format("01/02 15:04"),
			ImageURL:   "/images/" + snap.ImagePath,
			ThumbURL:   "/images/" + snap.ImagePath + "?thumb=1",
		}
		if snap.RecognizedTime.Valid {
			row.Recognized = snap.RecognizedTime.String + " UTC"
		}
		data.Snapshots = append(data.Snapshots, row)
	}

	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("render index: %v", err)
	}
}

type HealthStatus struct {
	Status   string          `json:"status"`
	Stations []StationHealth `json:"stations"`
	Errors   []string        `json:"errors,omitempty"`
}

type StationHealth struct {
	StationID  string    `json:"station_id"`
	LastSeen   time.Time `json:"last_seen,omitempty"`
	AgeMinutes int       `json:"age_minutes"`
	Stale      bool      `json:"stale"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	stations, err := s.store.GetActiveStations()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
		return
	}

	health := HealthStatus{
		Status:   "ok",
		Stations: make([]StationHealth, 0, len(stations)),
	}

	// Buoycams refresh every 30 minutes; two missed cycles is stale.
	staleThreshold := 90 * time.Minute
	now := time.Now()

	for _, st := range stations {
		snap, err := s.store.GetLatestSnapshot(st.StationID)
		if err != nil {
			health.Errors = append(health.Errors, st.StationID+": "+err.Error())
			continue
		}

		sh := StationHealth{StationID: st.StationID}
		if snap != nil {
			sh.LastSeen = snap.CreatedAt
			sh.AgeMinutes = int(now.Sub(snap.CreatedAt).Minutes())
			sh.Stale = now.Sub(snap.CreatedAt) > staleThreshold
		} else {
			sh.Stale = true
			sh.AgeMinutes = -1
		}

		if sh.Stale {
			health.Status = "degraded"
		}
		health.Stations = append(health.Stations, sh)
	}

	if len(health.Errors) > 0 {
		health.Status = "error"
	}

	json.NewEncoder(w).Encode(health)
}
