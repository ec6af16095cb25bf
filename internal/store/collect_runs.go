package store

import (
	"database/sql"
	"time"
)

// CollectRun records a single upstream fetch for auditing.
type CollectRun struct {
	ID                int64
	StartedAt         time.Time
	FinishedAt        sql.NullTime
	Source            string // "ndbc", "ndbc-ftp"
	Endpoint          string // "buoycam", "5day", "realtime2"
	StationID         sql.NullString
	HTTPStatus        sql.NullInt64
	ResponseSizeBytes sql.NullInt64
	RecordsParsed     sql.NullInt64
	RecordsStored     sql.NullInt64
	ParseErrors       sql.NullInt64
	Success           bool
	ErrorMessage      sql.NullString
}

// StartCollectRun creates a new collect run record and returns it.
func (s *Store) StartCollectRun(source, endpoint, stationID string) (*CollectRun, error) {
	run := &CollectRun{
		StartedAt: time.Now().UTC(),
		Source:    source,
		Endpoint:  endpoint,
	}
	if stationID != "" {
		run.StationID = sql.NullString{String: stationID, Valid: true}
	}

	result, err := s.db.Exec(`
		INSERT INTO collect_runs (started_at, source, endpoint, station_id, success)
		VALUES (?, ?, ?, ?, FALSE)
	`, run.StartedAt, run.Source, run.Endpoint, run.StationID)
	if err != nil {
		return nil, err
	}

	run.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return run, nil
}

// CompleteCollectRun updates the collect run with results.
func (s *Store) CompleteCollectRun(run *CollectRun) error {
	if run == nil {
		return nil
	}
	run.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}

	_, err := s.db.Exec(`
		UPDATE collect_runs SET
			finished_at = ?,
			http_status = ?,
			response_size_bytes = ?,
			records_parsed = ?,
			records_stored = ?,
			parse_errors = ?,
			success = ?,
			error_message = ?
		WHERE id = ?
	`, run.FinishedAt, run.HTTPStatus, run.ResponseSizeBytes, run.RecordsParsed,
		run.RecordsStored, run.ParseErrors, run.Success, run.ErrorMessage, run.ID)
	return err
}

// GetRecentCollectErrors returns recent failed collect runs.
func (s *Store) GetRecentCollectErrors(limit int) ([]CollectRun, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, source, endpoint, station_id,
			   http_status, response_size_bytes, records_parsed, records_stored,
			   parse_errors, success, error_message
		FROM collect_runs
		WHERE success = FALSE
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []CollectRun
	for rows.Next() {
		var r CollectRun
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Source, &r.Endpoint,
			&r.StationID, &r.HTTPStatus, &r.ResponseSizeBytes, &r.RecordsParsed,
			&r.RecordsStored, &r.ParseErrors, &r.Success, &r.ErrorMessage); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
