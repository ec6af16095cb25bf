package feed

// Selection tracks which sample is active for detail display.
//
// Two states: nothing selected, or one sample selected. A refresh only
// engages the default-latest policy when nothing is selected; an existing
// selection survives refreshes even if the sample is no longer in the new
// sequence (the sample carries its display data by value). A station filter
// change clears the selection so the default re-engages; an explicit pick
// always wins.
type Selection struct {
	active *Sample
}

// OnDataRefresh applies the default selection policy for a freshly
// normalized sequence: select the latest sample, but only if nothing is
// selected yet.
func (s *Selection) OnDataRefresh(samples []Sample) {
	if s.active != nil || len(samples) == 0 {
		return
	}
	last := samples[len(samples)-1]
	s.active = &last
}

// OnStationFilterChanged clears the selection unconditionally.
func (s *Selection) OnStationFilterChanged(stationID string) {
	s.active = nil
}

// OnPointPicked selects the given sample unconditionally, including
// re-picking the current one.
func (s *Selection) OnPointPicked(sample Sample) {
	s.active = &sample
}

// Active returns the selected sample, or nil when nothing is selected. The
// returned value is owned by the selection; callers should copy it rather
// than mutate it.
func (s *Selection) Active() *Sample {
	return s.active
}
