package feed

import (
	"context"
	"log"
	"sync"

	"github.com/sergei/buoycams/internal/metrics"
)

// Controller owns the current sample sequence, the station list, and the
// selection, and drives refetches. Every refresh is a full replace; there is
// no merging or caching of prior responses.
//
// Each fetch is issued under a generation token and its response is applied
// only if no newer fetch has been issued since, so a slow earlier response
// can never overwrite a later one.
type Controller struct {
	client *Client

	mu        sync.Mutex
	gen       uint64
	station   string // "" means all stations
	samples   []Sample
	stations  []string
	selection Selection
	loading   bool
}

func NewController(client *Client) *Controller {
	return &Controller{client: client}
}

// Refresh fetches the current view and, if the response still corresponds to
// the latest issued request, replaces the sample sequence and applies the
// default selection policy. A failed fetch clears the loading flag and
// leaves the previous sequence untouched.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.gen++
	token := c.gen
	station := c.station
	c.loading = true
	c.mu.Unlock()

	events, err := c.client.FetchEvents(ctx, station)

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.gen {
		// Superseded by a newer request; drop this response.
		return nil
	}
	c.loading = false

	if err != nil {
		log.Printf("feed: refresh failed for station %q: %v", station, err)
		metrics.FeedRefreshes.WithLabelValues("error").Inc()
		return err
	}

	samples, stations := Normalize(events)
	c.samples = samples
	// Only the all-stations view is authoritative for the station list; a
	// single-station fetch leaves the previously recorded list alone.
	if station == "" {
		c.stations = stations
	}
	c.selection.OnDataRefresh(samples)
	metrics.FeedRefreshes.WithLabelValues("ok").Inc()
	return nil
}

// SetStation changes the station filter ("" for all stations), resets the
// selection so the default-latest policy re-engages, and refetches.
func (c *Controller) SetStation(ctx context.Context, stationID string) error {
	c.mu.Lock()
	c.station = stationID
	c.selection.OnStationFilterChanged(stationID)
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// PickPoint records an explicit user selection.
func (c *Controller) PickPoint(sample Sample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.OnPointPicked(sample)
}

// Samples returns the current normalized sequence.
func (c *Controller) Samples() []Sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.samples
}

// Stations returns the station list recorded by the last all-stations fetch.
func (c *Controller) Stations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stations
}

// Active returns a copy of the selected sample, or nil.
func (c *Controller) Active() *Sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.selection.Active(); s != nil {
		cp := *s
		return &cp
	}
	return nil
}

// Loading reports whether a fetch is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Station returns the current filter ("" for all stations).
func (c *Controller) Station() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.station
}
