package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/sergei/buoycams/internal/api"
	"github.com/sergei/buoycams/internal/collect"
	"github.com/sergei/buoycams/internal/images"
	"github.com/sergei/buoycams/internal/models"
	"github.com/sergei/buoycams/internal/recognize"
	"github.com/sergei/buoycams/internal/store"
)

// defaultStations carries metadata for the stations polled out of the box.
// Stations passed via --stations that are not listed here are seeded with
// the bare ID.
var defaultStations = map[string]models.Station{
	"41009": {StationID: "41009", Name: "Canaveral East", Latitude: 28.501, Longitude: -80.184, Active: true},
	"42036": {StationID: "42036", Name: "West Tampa", Latitude: 28.500, Longitude: -84.516, Active: true},
	"42003": {StationID: "42003", Name: "East Gulf", Latitude: 25.925, Longitude: -85.616, Active: true},
}

var cli struct {
	DB           string   `help:"Path to the SQLite database." default:"data/buoycams.db"`
	Port         string   `help:"HTTP server port." default:"8080"`
	Stations     []string `help:"NDBC station IDs to poll." default:"41009,42036,42003"`
	ImageDir     string   `help:"Directory for archived buoycam images." default:"data/images"`
	NoPoll       bool     `help:"Disable polling (server only, for local dev)."`
	Once         bool     `help:"Run a single collection cycle and exit."`
	Backfill     bool     `help:"Backfill 45-day meteo history over FTP before starting."`
	ForceProcess bool     `help:"Store duplicate images instead of skipping them."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("buoycams"),
		kong.Description("Collects NOAA buoycam snapshots and serves them as a reconciliation feed."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	db, err := sql.Open("sqlite", cli.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("database migrated")

	for _, id := range cli.Stations {
		station, ok := defaultStations[id]
		if !ok {
			station = models.Station{StationID: id, Active: true}
		}
		if err := st.UpsertStation(station); err != nil {
			log.Fatalf("upsert station %s: %v", id, err)
		}
	}
	log.Println("stations seeded")

	archive := images.NewArchive(cli.ImageDir)
	scheduler := collect.NewScheduler(st, collect.NewNDBC(), archive, cli.Stations)
	scheduler.SetForceProcess(cli.ForceProcess)

	if rec, err := recognize.NewRecognizer(); err != nil {
		log.Printf("banner recognition disabled: %v", err)
	} else {
		scheduler.SetRecognizer(rec)
	}

	server := api.NewServer(st, archive, cli.Port)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cli.Backfill {
		log.Println("backfilling 45-day meteo history")
		if err := scheduler.BackfillHistory(); err != nil {
			log.Fatalf("backfill: %v", err)
		}
	}

	if cli.Once {
		log.Println("running single collection cycle")
		if err := scheduler.CollectOnce(ctx); err != nil {
			log.Fatalf("collect: %v", err)
		}
		log.Println("done")
		return
	}

	if !cli.NoPoll {
		go scheduler.Run(ctx)
	} else {
		log.Println("polling disabled (--no-poll)")
	}

	log.Printf("starting server on :%s", cli.Port)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
