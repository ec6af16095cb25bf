package collect

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/sergei/buoycams/internal/images"
	"github.com/sergei/buoycams/internal/metrics"
	"github.com/sergei/buoycams/internal/models"
	"github.com/sergei/buoycams/internal/recognize"
	"github.com/sergei/buoycams/internal/store"
)

// Scheduler polls NDBC for each configured station: the buoycam image every
// cycle, with MD5 dedup against the latest stored capture, and the 5-day
// meteo file alongside it.
type Scheduler struct {
	store        *store.Store
	ndbc         *NDBC
	stdmet       *StdmetClient
	recognizer   *recognize.Recognizer
	archive      *images.Archive
	stationIDs   []string
	pollInterval time.Duration
	forceProcess bool // store duplicates anyway
}

func NewScheduler(st *store.Store, ndbc *NDBC, archive *images.Archive, stationIDs []string) *Scheduler {
	return &Scheduler{
		store:        st,
		ndbc:         ndbc,
		stdmet:       NewStdmetClient(""),
		archive:      archive,
		stationIDs:   stationIDs,
		pollInterval: 30 * time.Minute,
	}
}

// SetRecognizer enables banner timestamp extraction. Without it every
// capture falls back to the download timestamp.
func (s *Scheduler) SetRecognizer(r *recognize.Recognizer) {
	s.recognizer = r
}

// SetForceProcess disables MD5 dedup, storing every downloaded image.
func (s *Scheduler) SetForceProcess(force bool) {
	s.forceProcess = force
}

func (s *Scheduler) Run(ctx context.Context) {
	s.collectAll(ctx)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("collect: shutting down")
			return
		case <-ticker.C:
			s.collectAll(ctx)
		}
	}
}

// CollectOnce runs a single collection cycle over all stations.
func (s *Scheduler) CollectOnce(ctx context.Context) error {
	return s.collectAll(ctx)
}

func (s *Scheduler) collectAll(ctx context.Context) error {
	var firstErr error
	for _, stationID := range s.stationIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.collectStation(ctx, stationID); err != nil {
			log.Printf("collect %s: %v", stationID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *Scheduler) collectStation(ctx context.Context, stationID string) error {
	run, err := s.store.StartCollectRun("ndbc", "buoycam", stationID)
	if err != nil {
		log.Printf("collect %s: start run: %v", stationID, err)
	}
	err = s.collectImage(ctx, stationID, run)
	if run != nil {
		run.Success = err == nil
		if err != nil {
			run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		}
		if cerr := s.store.CompleteCollectRun(run); cerr != nil {
			log.Printf("collect %s: complete run: %v", stationID, cerr)
		}
	}
	if err != nil {
		return err
	}
	return s.collectMeteo(stationID)
}

func (s *Scheduler) collectImage(ctx context.Context, stationID string, run *store.CollectRun) error {
	downloadedAt := time.Now().UTC()

	data, md5sum, err := s.ndbc.FetchImage(stationID)
	if err != nil {
		return err
	}
	if run != nil {
		run.HTTPStatus = sql.NullInt64{Int64: 200, Valid: true}
		run.ResponseSizeBytes = sql.NullInt64{Int64: int64(len(data)), Valid: true}
	}

	if !s.forceProcess {
		latest, err := s.store.GetLatestSnapshot(stationID)
		if err != nil {
			return fmt.Errorf("latest snapshot: %w", err)
		}
		if latest != nil && latest.ImageMD5 == md5sum {
			log.Printf("collect %s: skipping duplicate image", stationID)
			metrics.DuplicateImages.WithLabelValues(stationID).Inc()
			return nil
		}
	}

	snap := models.Snapshot{
		StationID:  stationID,
		CapturedAt: downloadedAt,
		ImageMD5:   md5sum,
	}

	if s.recognizer != nil {
		banner, err := s.recognizer.ReadBanner(ctx, data)
		if err != nil {
			// Recognition failure is not fatal; the download time
			// stands in for the banner time.
			log.Printf("collect %s: banner recognition failed: %v", stationID, err)
			metrics.RecognitionFailures.WithLabelValues(stationID).Inc()
		} else {
			snap.CapturedAt = banner.CapturedAt
			snap.RecognizedStation = sql.NullString{String: banner.Station, Valid: true}
			snap.RecognizedTime = sql.NullString{String: banner.Time, Valid: true}
		}
	}

	snap.ImagePath, err = s.archive.Store(stationID, snap.CapturedAt, data)
	if err != nil {
		return fmt.Errorf("archive image: %w", err)
	}

	if err := s.store.InsertSnapshot(snap); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	metrics.SnapshotsCollected.WithLabelValues(stationID).Inc()
	if run != nil {
		run.RecordsStored = sql.NullInt64{Int64: 1, Valid: true}
	}
	return nil
}

func (s *Scheduler) collectMeteo(stationID string) error {
	run, err := s.store.StartCollectRun("ndbc", "5day", stationID)
	if err != nil {
		log.Printf("collect %s: start run: %v", stationID, err)
	}

	storeErr := func() error {
		body, err := s.ndbc.FetchMeteo5Day(stationID)
		if err != nil {
			return err
		}
		if run != nil {
			run.HTTPStatus = sql.NullInt64{Int64: 200, Valid: true}
			run.ResponseSizeBytes = sql.NullInt64{Int64: int64(len(body)), Valid: true}
			if _, err := s.store.StoreRawPayload(&run.ID, "ndbc", "5day", stationID, []byte(body)); err != nil {
				log.Printf("collect %s: archive payload: %v", stationID, err)
			}
		}
		return s.storeMeteoRecords(stationID, body, "5day", run)
	}()

	if run != nil {
		run.Success = storeErr == nil
		if storeErr != nil {
			run.ErrorMessage = sql.NullString{String: storeErr.Error(), Valid: true}
		}
		if err := s.store.CompleteCollectRun(run); err != nil {
			log.Printf("collect %s: complete run: %v", stationID, err)
		}
	}
	return storeErr
}

func (s *Scheduler) storeMeteoRecords(stationID, body, source string, run *store.CollectRun) error {
	records, parseErrors := ParseMeteoFile(stationID, body)
	stored := 0
	for _, rec := range records {
		if err := s.store.UpsertMeteoRecord(rec); err != nil {
			return fmt.Errorf("upsert meteo record: %w", err)
		}
		stored++
	}
	metrics.MeteoRecordsStored.WithLabelValues(stationID, source).Add(float64(stored))
	if run != nil {
		run.RecordsParsed = sql.NullInt64{Int64: int64(len(records)), Valid: true}
		run.RecordsStored = sql.NullInt64{Int64: int64(stored), Valid: true}
		run.ParseErrors = sql.NullInt64{Int64: int64(parseErrors), Valid: true}
	}
	return nil
}

// BackfillHistory loads each station's 45-day realtime2 file over FTP. The
// format matches the 5-day product, so records merge into the same table.
func (s *Scheduler) BackfillHistory() error {
	for _, stationID := range s.stationIDs {
		run, err := s.store.StartCollectRun("ndbc-ftp", "realtime2", stationID)
		if err != nil {
			log.Printf("backfill %s: start run: %v", stationID, err)
		}

		backfillErr := func() error {
			body, err := s.stdmet.FetchRealtime2(stationID)
			if err != nil {
				return err
			}
			if run != nil {
				run.ResponseSizeBytes = sql.NullInt64{Int64: int64(len(body)), Valid: true}
			}
			return s.storeMeteoRecords(stationID, body, "realtime2", run)
		}()

		if run != nil {
			run.Success = backfillErr == nil
			if backfillErr != nil {
				run.ErrorMessage = sql.NullString{String: backfillErr.Error(), Valid: true}
			}
			if err := s.store.CompleteCollectRun(run); err != nil {
				log.Printf("backfill %s: complete run: %v", stationID, err)
			}
		}
		if backfillErr != nil {
			return fmt.Errorf("backfill %s: %w", stationID, backfillErr)
		}
		log.Printf("backfill %s: done", stationID)
	}
	return nil
}
