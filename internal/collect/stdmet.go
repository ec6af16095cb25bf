package collect

import (
	"fmt"
	"io"
	"time"

	"github.com/jlaffaye/ftp"
)

const (
	ndbcFTPHost    = "ftp.ndbc.noaa.gov:21"
	realtime2Path  = "/data/realtime2/%s.txt"
	ftpDialTimeout = 30 * time.Second
)

// StdmetClient retrieves the 45-day realtime2 standard meteorological file
// over anonymous FTP, used to backfill history beyond the 5-day window.
type StdmetClient struct {
	host string
}

func NewStdmetClient(host string) *StdmetClient {
	if host == "" {
		host = ndbcFTPHost
	}
	return &StdmetClient{host: host}
}

// FetchRealtime2 downloads the 45-day file for a station. The format is the
// same 19-column layout as the 5-day product.
func (c *StdmetClient) FetchRealtime2(stationID string) (string, error) {
	conn, err := ftp.Dial(c.host, ftp.DialWithTimeout(ftpDialTimeout))
	if err != nil {
		return "", fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		return "", fmt.Errorf("ftp login: %w", err)
	}

	resp, err := conn.Retr(fmt.Sprintf(realtime2Path, stationID))
	if err != nil {
		return "", fmt.Errorf("ftp retr: %w", err)
	}
	defer resp.Close()

	body, err := io.ReadAll(resp)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}
