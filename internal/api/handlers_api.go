package api

import (
	"encoding/json"
	"net/http"

	"github.com/sergei/buoycams/internal/models"
)

// handleAPISnapshots serves capture events, newest first. With station_id
// (other than "all") the response covers one station; without it, the most
// recent captures across every station.
func (s *Server) handleAPISnapshots(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station_id")

	var snaps []models.Snapshot
	var err error
	if stationID != "" && stationID != "all" {
		snaps, err = s.store.GetSnapshots(stationID, stationSnapshotLimit)
	} else {
		snaps, err = s.store.GetAllSnapshots(allSnapshotLimit)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	events, err := s.captureEvents(snaps)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(events)
}

func (s *Server) handleAPIStations(w http.ResponseWriter, r *http.Request) {
	stations, err := s.store.GetActiveStations()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(stations)
}
