package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"
	"time"
)

func TestArchiveRoundTrip(t *testing.T) {
	a := NewArchive(t.TempDir())

	capturedAt := time.Date(2025, 11, 18, 16, 10, 0, 0, time.UTC)
	data := []byte("not really a jpeg")

	rel, err := a.Store("41009", capturedAt, data)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if rel != "41009/2025/11/18/20251118_161000.jpg" {
		t.Errorf("rel = %q, want station/date layout", rel)
	}

	got, err := a.Get(rel)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get returned %q, want %q", got, data)
	}
}

func TestArchiveGet_RejectsEscapingPaths(t *testing.T) {
	a := NewArchive(t.TempDir())
	for _, rel := range []string{"../secret", "/etc/passwd", "41009/../../x"} {
		if _, err := a.Get(rel); err == nil {
			t.Errorf("Get(%q) succeeded, want error", rel)
		}
	}
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestThumbnail_ScalesWideImages(t *testing.T) {
	data := encodeJPEG(t, 2880, 300)

	thumb, err := Thumbnail(data)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if img.Bounds().Dx() != 720 {
		t.Errorf("width = %d, want 720", img.Bounds().Dx())
	}
	if img.Bounds().Dy() != 75 {
		t.Errorf("height = %d, want 75", img.Bounds().Dy())
	}
}

func TestThumbnail_PassesThroughSmallImages(t *testing.T) {
	data := encodeJPEG(t, 400, 100)

	thumb, err := Thumbnail(data)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if !bytes.Equal(thumb, data) {
		t.Error("small image should pass through unchanged")
	}
}
