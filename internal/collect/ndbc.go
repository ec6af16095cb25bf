package collect

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sergei/buoycams/internal/httputil"
	"github.com/sergei/buoycams/internal/metrics"
)

const (
	buoycamURL = "https://www.ndbc.noaa.gov/buoycam.php?station=%s"
	fiveDayURL = "https://www.ndbc.noaa.gov/data/5day2/%s_5day.txt"
)

// NDBC fetches buoycam images and 5-day meteorological files over HTTP.
type NDBC struct {
	client *http.Client
}

func NewNDBC() *NDBC {
	return &NDBC{client: httputil.NewClient()}
}

// FetchImage downloads the current buoycam JPEG for a station and returns
// the bytes together with their MD5 hex digest.
func (n *NDBC) FetchImage(stationID string) ([]byte, string, error) {
	body, err := n.fetch(fmt.Sprintf(buoycamURL, stationID), stationID, "buoycam")
	if err != nil {
		return nil, "", err
	}
	sum := md5.Sum(body)
	return body, hex.EncodeToString(sum[:]), nil
}

// FetchMeteo5Day downloads the 5-day standard meteorological file.
func (n *NDBC) FetchMeteo5Day(stationID string) (string, error) {
	body, err := n.fetch(fmt.Sprintf(fiveDayURL, stationID), stationID, "5day")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (n *NDBC) fetch(url, stationID, endpoint string) ([]byte, error) {
	var body []byte
	operation := func() error {
		resp, err := n.client.Get(url)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", endpoint, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("fetch %s: status %d", endpoint, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("fetch %s: status %d: %s", endpoint, resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, bo); err != nil {
		metrics.NDBCAPICallsTotal.WithLabelValues(stationID, endpoint, "error").Inc()
		return nil, err
	}
	metrics.NDBCAPICallsTotal.WithLabelValues(stationID, endpoint, "ok").Inc()
	return body, nil
}
