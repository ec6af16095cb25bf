package api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sergei/buoycams/internal/api"
	"github.com/sergei/buoycams/internal/feed"
	"github.com/sergei/buoycams/internal/images"
	"github.com/sergei/buoycams/internal/models"
	"github.com/sergei/buoycams/internal/store"
)

func setupTestServer(t *testing.T) (*api.Server, *store.Store, *images.Archive) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	s := store.New(db)
	if err := s.Migrate(); err != nil {
		t.Fatal(err)
	}
	archive := images.NewArchive(t.TempDir())
	return api.NewServer(s, archive, "8080"), s, archive
}

func seedSnapshot(t *testing.T, s *store.Store, archive *images.Archive, stationID string, capturedAt time.Time, recognized string) models.Snapshot {
	t.Helper()
	rel, err := archive.Store(stationID, capturedAt, []byte("jpeg bytes"))
	if err != nil {
		t.Fatal(err)
	}
	snap := models.Snapshot{
		StationID:  stationID,
		CapturedAt: capturedAt,
		ImagePath:  rel,
		ImageMD5:   rel,
	}
	if recognized != "" {
		snap.RecognizedStation = sql.NullString{String: stationID, Valid: true}
		snap.RecognizedTime = sql.NullString{String: recognized, Valid: true}
	}
	if err := s.InsertSnapshot(snap); err != nil {
		t.Fatal(err)
	}
	return snap
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	srv, s, _ := setupTestServer(t)

	if err := s.UpsertStation(models.Station{StationID: "41009", Active: true}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var health api.HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	// No snapshots yet, so the station is stale and the service degraded.
	if health.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", health.Status)
	}
	if len(health.Stations) != 1 || !health.Stations[0].Stale {
		t.Errorf("Stations = %+v, want one stale entry", health.Stations)
	}
}

func TestAPISnapshots_Shape(t *testing.T) {
	t.Parallel()
	srv, s, archive := setupTestServer(t)

	capturedAt := time.Date(2025, 11, 18, 16, 10, 0, 0, time.UTC)
	seedSnapshot(t, s, archive, "41009", capturedAt, "11/18/2025 1610")

	// One record inside the match window, one outside, one with MM wind.
	for _, rec := range []models.MeteoRecord{
		{StationID: "41009", ObservedAt: capturedAt.Add(-10 * time.Minute), WindSpeed: sql.NullString{String: "5.0", Valid: true}, Gust: sql.NullString{String: "7.2", Valid: true}, WindDir: sql.NullString{String: "120", Valid: true}},
		{StationID: "41009", ObservedAt: capturedAt.Add(20 * time.Minute)},
		{StationID: "41009", ObservedAt: capturedAt.Add(2 * time.Hour), WindSpeed: sql.NullString{String: "9.0", Valid: true}},
	} {
		if err := s.UpsertMeteoRecord(rec); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest("GET", "/api/snapshots?station_id=41009", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var events []feed.CaptureEvent
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatalf("unmarshal events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}

	ev := events[0]
	if ev.StationID != "41009" {
		t.Errorf("StationID = %q, want 41009", ev.StationID)
	}
	if !strings.HasPrefix(ev.ImageURL, "/images/41009/") {
		t.Errorf("ImageURL = %q, want archive path", ev.ImageURL)
	}
	if ev.RekognitionData == nil || ev.RekognitionData.Time != "11/18/2025 1610" {
		t.Errorf("RekognitionData = %+v, want banner time", ev.RekognitionData)
	}
	if len(ev.MeteoRecords) != 2 {
		t.Fatalf("len(MeteoRecords) = %d, want the 2 within ±30m", len(ev.MeteoRecords))
	}
	if ev.MeteoRecords[0].MeteoTimestamp != "2025-11-18T16:00:00" {
		t.Errorf("MeteoTimestamp = %q, want naive ISO form", ev.MeteoRecords[0].MeteoTimestamp)
	}
	if string(ev.MeteoRecords[0].WindSpeed) != "5.0" {
		t.Errorf("WindSpeed = %q, want 5.0", ev.MeteoRecords[0].WindSpeed)
	}
	if string(ev.MeteoRecords[1].WindSpeed) != "MM" {
		t.Errorf("missing WindSpeed = %q, want MM sentinel", ev.MeteoRecords[1].WindSpeed)
	}
}

func TestAPISnapshots_AllStations(t *testing.T) {
	t.Parallel()
	srv, s, archive := setupTestServer(t)

	base := time.Date(2025, 11, 18, 12, 0, 0, 0, time.UTC)
	seedSnapshot(t, s, archive, "41009", base, "")
	seedSnapshot(t, s, archive, "42036", base.Add(time.Hour), "")

	for _, target := range []string{"/api/snapshots", "/api/snapshots?station_id=all"} {
		req := httptest.NewRequest("GET", target, nil)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)

		var events []feed.CaptureEvent
		if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
			t.Fatalf("%s: unmarshal: %v", target, err)
		}
		if len(events) != 2 {
			t.Fatalf("%s: len(events) = %d, want 2", target, len(events))
		}
		// Newest first.
		if events[0].StationID != "42036" {
			t.Errorf("%s: events[0].StationID = %q, want 42036", target, events[0].StationID)
		}
	}
}

func TestImageHandler(t *testing.T) {
	t.Parallel()
	srv, s, archive := setupTestServer(t)

	capturedAt := time.Date(2025, 11, 18, 16, 10, 0, 0, time.UTC)
	snap := seedSnapshot(t, s, archive, "41009", capturedAt, "")

	req := httptest.NewRequest("GET", "/images/"+snap.ImagePath, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q, want image/jpeg", ct)
	}
	if w.Body.String() != "jpeg bytes" {
		t.Errorf("body = %q, want archived bytes", w.Body.String())
	}

	// Unknown paths 404 even if a file happens to exist on disk.
	req = httptest.NewRequest("GET", "/images/41009/2099/01/01/unknown.jpg", nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 404 {
		t.Errorf("unknown image: expected 404, got %d", w.Code)
	}
}

func TestIndexPage(t *testing.T) {
	t.Parallel()
	srv, s, archive := setupTestServer(t)

	if err := s.UpsertStation(models.Station{StationID: "41009", Active: true}); err != nil {
		t.Fatal(err)
	}
	seedSnapshot(t, s, archive, "41009", time.Date(2025, 11, 18, 16, 10, 0, 0, time.UTC), "11/18/2025 1610")

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "41009") {
		t.Error("expected station ID on index page")
	}
	if !strings.Contains(body, "11/18/2025 1610 UTC") {
		t.Error("expected recognized banner time on index page")
	}
}

// The feed controller consumes the server's wire shape end to end.
func TestFeedAgainstServer(t *testing.T) {
	t.Parallel()
	srv, s, archive := setupTestServer(t)

	capturedAt := time.Date(2025, 11, 18, 16, 10, 0, 0, time.UTC)
	seedSnapshot(t, s, archive, "41009", capturedAt, "11/18/2025 1610")
	if err := s.UpsertMeteoRecord(models.MeteoRecord{
		StationID:  "41009",
		ObservedAt: capturedAt,
		WindSpeed:  sql.NullString{String: "5.0", Valid: true},
	}); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ctrl := feed.NewController(feed.NewClient(ts.URL + "/api/snapshots"))
	if err := ctrl.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	samples := ctrl.Samples()
	if len(samples) != 1 {
		t.Fatalf("len(samples) = %d, want 1", len(samples))
	}
	if samples[0].WindSpeedKts != 9.7 {
		t.Errorf("WindSpeedKts = %v, want 9.7", samples[0].WindSpeedKts)
	}
	if samples[0].ImageDisplayTime != "11/18/2025 1610 UTC" {
		t.Errorf("ImageDisplayTime = %q, want banner time with suffix", samples[0].ImageDisplayTime)
	}
	if active := ctrl.Active(); active == nil || active.StationID != "41009" {
		t.Errorf("Active = %+v, want default selection", active)
	}
}
