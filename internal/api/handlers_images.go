package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/sergei/buoycams/internal/images"
)

// handleImage serves an archived buoycam JPEG by its archive-relative path.
// ?thumb=1 returns a scaled-down listing version.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/images/")
	if rel == "" {
		http.NotFound(w, r)
		return
	}

	// Only paths the store knows about are served.
	snap, err := s.store.GetSnapshotByImagePath(rel)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if snap == nil {
		http.NotFound(w, r)
		return
	}

	data, err := s.archive.Get(rel)
	if err != nil {
		log.Printf("image %s: %v", rel, err)
		http.NotFound(w, r)
		return
	}

	if r.URL.Query().Get("thumb") == "1" {
		thumb, err := images.Thumbnail(data)
		if err != nil {
			log.Printf("thumbnail %s: %v", rel, err)
		} else {
			data = thumb
		}
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(data)
}
