package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mlenoir/vidvault/internal/models"
	"github.com/mlenoir/vidvault/internal/services/storage"
	"github.com/mlenoir/vidvault/internal/utils"
)

func TestVideosListsCatalog(t *testing.T) {
	fs := newFakeStore()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	fs.objects = []models.StorageObject{
		{Key: "videos/1700000000000-My_Movie.mp4", Size: 1024, LastModified: base},
		{Key: "videos/1700000000000-My_Movie-poster.jpg", Size: 64, LastModified: base},
		{Key: "videos/1700000000000-My_Movie.srt", Size: 32, LastModified: base},
	}
	h := NewVideosHandler(&fakeFactory{store: fs}, utils.NewLogger("error"))

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp videosResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || len(resp.Videos) != 1 {
		t.Fatalf("count = %d with %d videos, want 1", resp.Count, len(resp.Videos))
	}
	v := resp.Videos[0]
	if v.Name != "My Movie" {
		t.Errorf("name = %q, want %q", v.Name, "My Movie")
	}
	if v.Poster == "" {
		t.Error("poster not associated")
	}
	if len(v.Subtitles) != 1 {
		t.Errorf("subtitles = %d, want 1", len(v.Subtitles))
	}
	if resp.Provider != models.ProviderR2 {
		t.Errorf("provider = %q, want r2", resp.Provider)
	}
	if !resp.AvailableProviders["r2"] {
		t.Error("availableProviders missing r2")
	}
}

func episodeObjects(base time.Time) []models.StorageObject {
	return []models.StorageObject{
		{Key: "videos/Boston.Legal.S01E01.mp4", Size: 100, LastModified: base},
		{Key: "videos/Boston.Legal.S01E02.mp4", Size: 100, LastModified: base},
		{Key: "videos/Boston.Legal.S02E01.mp4", Size: 100, LastModified: base},
		{Key: "videos/1700000000000-Standalone.mp4", Size: 100, LastModified: base},
	}
}

func TestVideosGroupedBySeries(t *testing.T) {
	fs := newFakeStore()
	fs.objects = episodeObjects(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	h := NewVideosHandler(&fakeFactory{store: fs}, utils.NewLogger("error"))

	req := httptest.NewRequest(http.MethodGet, "/api/videos?grouped=1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp groupedVideosResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 4 {
		t.Errorf("count = %d, want 4", resp.Count)
	}
	seasons, ok := resp.Grouped["Boston Legal"]
	if !ok {
		t.Fatalf("grouped keys = %v, want Boston Legal", resp.Grouped)
	}
	if len(seasons[1]) != 2 || len(seasons[2]) != 1 {
		t.Errorf("season sizes = %d/%d, want 2/1", len(seasons[1]), len(seasons[2]))
	}
	if len(resp.Ungrouped) != 1 || resp.Ungrouped[0].Name != "Standalone" {
		t.Errorf("ungrouped = %+v, want the standalone movie", resp.Ungrouped)
	}
}

func TestNextEpisode(t *testing.T) {
	fs := newFakeStore()
	fs.objects = episodeObjects(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	h := NewVideosHandler(&fakeFactory{store: fs}, utils.NewLogger("error"))

	get := func(t *testing.T, target string) (*httptest.ResponseRecorder, nextEpisodeResponse) {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		h.NextEpisode(rec, req)
		var resp nextEpisodeResponse
		if rec.Code == http.StatusOK {
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
		}
		return rec, resp
	}

	t.Run("within season", func(t *testing.T) {
		rec, resp := get(t, "/api/videos/next?key=videos/Boston.Legal.S01E01.mp4")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		if resp.Next == nil || resp.Next.Key != "videos/Boston.Legal.S01E02.mp4" {
			t.Errorf("next = %+v, want S01E02", resp.Next)
		}
	})

	t.Run("across season boundary", func(t *testing.T) {
		_, resp := get(t, "/api/videos/next?key=videos/Boston.Legal.S01E02.mp4")
		if resp.Next == nil || resp.Next.Key != "videos/Boston.Legal.S02E01.mp4" {
			t.Errorf("next = %+v, want S02E01", resp.Next)
		}
	})

	t.Run("last episode", func(t *testing.T) {
		rec, resp := get(t, "/api/videos/next?key=videos/Boston.Legal.S02E01.mp4")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if resp.Next != nil {
			t.Errorf("next = %+v, want null", resp.Next)
		}
	})

	t.Run("no episode metadata", func(t *testing.T) {
		_, resp := get(t, "/api/videos/next?key=videos/1700000000000-Standalone.mp4")
		if resp.Next != nil {
			t.Errorf("next = %+v, want null", resp.Next)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		rec, _ := get(t, "/api/videos/next")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		rec, _ := get(t, "/api/videos/next?key=videos/nope.mp4")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestVideosUnconfiguredProvider(t *testing.T) {
	h := NewVideosHandler(&fakeFactory{resolveErr: storage.ErrUnconfigured}, utils.NewLogger("error"))

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestVideosMethodNotAllowed(t *testing.T) {
	h := NewVideosHandler(&fakeFactory{store: newFakeStore()}, utils.NewLogger("error"))

	req := httptest.NewRequest(http.MethodPost, "/api/videos", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
