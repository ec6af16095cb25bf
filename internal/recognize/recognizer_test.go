package recognize

import (
	"testing"
	"time"
)

func TestParseBanner(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    Banner
		wantOK  bool
	}{
		{
			name: "standard caption",
			text: "Station ID: 41009 11/18/2025 1610 UTC",
			want: Banner{
				Station:    "41009",
				Time:       "11/18/2025 1610",
				CapturedAt: time.Date(2025, 11, 18, 16, 10, 0, 0, time.UTC),
			},
			wantOK: true,
		},
		{
			name: "surrounding transcription noise",
			text: "The caption reads: Station ID: 42036  06/01/2025 0940 UTC, white on black.",
			want: Banner{
				Station:    "42036",
				Time:       "06/01/2025 0940",
				CapturedAt: time.Date(2025, 6, 1, 9, 40, 0, 0, time.UTC),
			},
			wantOK: true,
		},
		{
			name: "flexible whitespace",
			text: "Station  ID:41009   11/18/2025  1610 UTC",
			want: Banner{
				Station:    "41009",
				Time:       "11/18/2025  1610",
				CapturedAt: time.Date(2025, 11, 18, 16, 10, 0, 0, time.UTC),
			},
			wantOK: true,
		},
		{
			name:   "no banner",
			text:   "A grey ocean horizon with no visible text.",
			wantOK: false,
		},
		{
			name:   "impossible date",
			text:   "Station ID: 41009 13/45/2025 1610 UTC",
			wantOK: false,
		},
		{
			name:   "missing UTC suffix",
			text:   "Station ID: 41009 11/18/2025 1610",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseBanner(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Station != tt.want.Station {
				t.Errorf("Station = %q, want %q", got.Station, tt.want.Station)
			}
			if got.Time != tt.want.Time {
				t.Errorf("Time = %q, want %q", got.Time, tt.want.Time)
			}
			if !got.CapturedAt.Equal(tt.want.CapturedAt) {
				t.Errorf("CapturedAt = %v, want %v", got.CapturedAt, tt.want.CapturedAt)
			}
		})
	}
}
