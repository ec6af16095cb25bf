package api

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sergei/buoycams/internal/images"
	"github.com/sergei/buoycams/internal/store"
)

//go:embed templates/*
var templateFS embed.FS

type Server struct {
	store   *store.Store
	archive *images.Archive
	port    string
	tmpl    *template.Template
}

func NewServer(store *store.Store, archive *images.Archive, port string) *Server {
	tmpl := template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
	return &Server{
		store:   store,
		archive: archive,
		port:    port,
		tmpl:    tmpl,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/snapshots", s.handleAPISnapshots)
	mux.HandleFunc("/api/stations", s.handleAPIStations)
	mux.HandleFunc("/images/", s.handleImage)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
