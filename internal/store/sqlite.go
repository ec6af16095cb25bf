package store

import (
	"database/sql"
	"time"

	"github.com/sergei/buoycams/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) UpsertStation(st models.Station) error {
	_, err := s.db.Exec(`
		INSERT INTO stations (station_id, name, latitude, longitude, active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(station_id) DO UPDATE SET
			name = excluded.name,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			active = excluded.active
	`, st.StationID, st.Name, st.Latitude, st.Longitude, st.Active)
	return err
}

func (s *Store) GetActiveStations() ([]models.Station, error) {
	rows, err := s.db.Query(`
		SELECT station_id, name, latitude, longitude, active
		FROM stations WHERE active = TRUE ORDER BY station_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		var st models.Station
		if err := rows.Scan(&st.StationID, &st.Name, &st.Latitude, &st.Longitude, &st.Active); err != nil {
			return nil, err
		}
		stations = append(stations, st)
	}
	return stations, rows.Err()
}

// InsertSnapshot stores a capture. A capture at an already-recorded instant
// for the station is silently dropped.
func (s *Store) InsertSnapshot(snap models.Snapshot) error {
	_, err := s.db.Exec(`
		INSERT INTO snapshots (station_id, captured_at, image_path, image_md5, recognized_station, recognized_time)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(station_id, captured_at) DO NOTHING
	`, snap.StationID, snap.CapturedAt, snap.ImagePath, snap.ImageMD5, snap.RecognizedStation, snap.RecognizedTime)
	return err
}

// GetLatestSnapshot returns the most recent capture for a station, or nil.
func (s *Store) GetLatestSnapshot(stationID string) (*models.Snapshot, error) {
	row := s.db.QueryRow(`
		SELECT id, station_id, captured_at, image_path, image_md5, recognized_station, recognized_time, created_at
		FROM snapshots
		WHERE station_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, stationID)
	return scanSnapshot(row)
}

// GetSnapshots returns a station's captures, newest first.
func (s *Store) GetSnapshots(stationID string, limit int) ([]models.Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT id, station_id, captured_at, image_path, image_md5, recognized_station, recognized_time, created_at
		FROM snapshots
		WHERE station_id = ?
		ORDER BY captured_at DESC
		LIMIT ?
	`, stationID, limit)
	if err != nil {
		return nil, err
	}
	return scanSnapshots(rows)
}

// GetAllSnapshots returns the newest captures across every station.
func (s *Store) GetAllSnapshots(limit int) ([]models.Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT id, station_id, captured_at, image_path, image_md5, recognized_station, recognized_time, created_at
		FROM snapshots
		ORDER BY captured_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	return scanSnapshots(rows)
}

func (s *Store) GetSnapshotByImagePath(imagePath string) (*models.Snapshot, error) {
	row := s.db.QueryRow(`
		SELECT id, station_id, captured_at, image_path, image_md5, recognized_station, recognized_time, created_at
		FROM snapshots
		WHERE image_path = ?
	`, imagePath)
	return scanSnapshot(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshotInto(sc rowScanner, snap *models.Snapshot) error {
	return sc.Scan(&snap.ID, &snap.StationID, &snap.CapturedAt, &snap.ImagePath,
		&snap.ImageMD5, &snap.RecognizedStation, &snap.RecognizedTime, &snap.CreatedAt)
}

func scanSnapshot(row *sql.Row) (*models.Snapshot, error) {
	var snap models.Snapshot
	err := scanSnapshotInto(row, &snap)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func scanSnapshots(rows *sql.Rows) ([]models.Snapshot, error) {
	defer rows.Close()
	var snaps []models.Snapshot
	for rows.Next() {
		var snap models.Snapshot
		if err := scanSnapshotInto(rows, &snap); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (s *Store) UpsertMeteoRecord(rec models.MeteoRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO meteo_records (station_id, observed_at, wind_dir, wind_speed, gust,
			wave_height, dom_period, avg_period, mean_wave_dir, pressure, air_temp,
			water_temp, dewpoint, visibility, p_tendency, tide)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(station_id, observed_at) DO NOTHING
	`, rec.StationID, rec.ObservedAt, rec.WindDir, rec.WindSpeed, rec.Gust,
		rec.WaveHeight, rec.DomPeriod, rec.AvgPeriod, rec.MeanWaveDir, rec.Pressure,
		rec.AirTemp, rec.WaterTemp, rec.Dewpoint, rec.Visibility, rec.PTendency, rec.Tide)
	return err
}

// GetMeteoWindow returns a station's records with from <= observed_at <= to,
// oldest first.
func (s *Store) GetMeteoWindow(stationID string, from, to time.Time) ([]models.MeteoRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, station_id, observed_at, wind_dir, wind_speed, gust,
			wave_height, dom_period, avg_period, mean_wave_dir, pressure, air_temp,
			water_temp, dewpoint, visibility, p_tendency, tide, created_at
		FROM meteo_records
		WHERE station_id = ? AND observed_at >= ? AND observed_at <= ?
		ORDER BY observed_at ASC
	`, stationID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.MeteoRecord
	for rows.Next() {
		var rec models.MeteoRecord
		if err := rows.Scan(&rec.ID, &rec.StationID, &rec.ObservedAt, &rec.WindDir,
			&rec.WindSpeed, &rec.Gust, &rec.WaveHeight, &rec.DomPeriod, &rec.AvgPeriod,
			&rec.MeanWaveDir, &rec.Pressure, &rec.AirTemp, &rec.WaterTemp, &rec.Dewpoint,
			&rec.Visibility, &rec.PTendency, &rec.Tide, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
