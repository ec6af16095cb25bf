package feed

import (
	"testing"
	"time"
)

func sampleAt(t time.Time, station string) Sample {
	return Sample{
		Instant:     t,
		DisplayTime: t.UTC().Format(displayTimeFormat),
		StationID:   station,
	}
}

func TestSelection_DefaultLatest(t *testing.T) {
	var sel Selection
	base := time.Date(2025, 11, 18, 12, 0, 0, 0, time.UTC)
	samples := []Sample{
		sampleAt(base, "41009"),
		sampleAt(base.Add(time.Hour), "41009"),
		sampleAt(base.Add(2*time.Hour), "41009"),
	}

	sel.OnDataRefresh(samples)

	active := sel.Active()
	if active == nil {
		t.Fatal("expected a selection after refresh")
	}
	if !active.Instant.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("active = %v, want latest %v", active.Instant, base.Add(2*time.Hour))
	}
}

func TestSelection_EmptyRefreshKeepsNoSelection(t *testing.T) {
	var sel Selection
	sel.OnDataRefresh(nil)
	if sel.Active() != nil {
		t.Error("expected no selection after empty refresh")
	}
}

func TestSelection_PersistsAcrossRefresh(t *testing.T) {
	var sel Selection
	base := time.Date(2025, 11, 18, 12, 0, 0, 0, time.UTC)
	picked := sampleAt(base, "41009")
	sel.OnPointPicked(picked)

	// A refresh with a completely different sequence leaves the explicit
	// selection in place, even though the picked sample is absent from it.
	sel.OnDataRefresh([]Sample{
		sampleAt(base.Add(3*time.Hour), "42036"),
		sampleAt(base.Add(4*time.Hour), "42036"),
	})

	active := sel.Active()
	if active == nil {
		t.Fatal("expected selection to survive refresh")
	}
	if !active.Instant.Equal(base) || active.StationID != "41009" {
		t.Errorf("active = %v/%s, want picked sample", active.Instant, active.StationID)
	}
}

func TestSelection_FilterReset(t *testing.T) {
	var sel Selection
	base := time.Date(2025, 11, 18, 12, 0, 0, 0, time.UTC)
	sel.OnPointPicked(sampleAt(base, "41009"))

	sel.OnStationFilterChanged("42036")
	if sel.Active() != nil {
		t.Fatal("expected no selection after filter change")
	}

	// The default-latest policy re-engages on the next refresh.
	sel.OnDataRefresh([]Sample{sampleAt(base.Add(time.Hour), "42036")})
	active := sel.Active()
	if active == nil || active.StationID != "42036" {
		t.Errorf("active = %+v, want latest from new filter", active)
	}
}

func TestSelection_PickAlwaysWins(t *testing.T) {
	var sel Selection
	base := time.Date(2025, 11, 18, 12, 0, 0, 0, time.UTC)
	samples := []Sample{
		sampleAt(base, "41009"),
		sampleAt(base.Add(time.Hour), "41009"),
	}
	sel.OnDataRefresh(samples)

	sel.OnPointPicked(samples[0])
	active := sel.Active()
	if active == nil || !active.Instant.Equal(base) {
		t.Fatalf("active = %+v, want picked earliest sample", active)
	}

	// Re-picking the same point stays selected.
	sel.OnPointPicked(samples[0])
	active = sel.Active()
	if active == nil || !active.Instant.Equal(base) {
		t.Errorf("active = %+v after re-pick, want same sample", active)
	}
}
