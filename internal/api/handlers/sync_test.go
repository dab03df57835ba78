package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mlenoir/vidvault/internal/models"
	"github.com/mlenoir/vidvault/internal/utils"
)

func newSyncHandler(fs *fakeStore) *SyncHandler {
	return NewSyncHandler(&fakeFactory{store: fs}, utils.NewLogger("error"))
}

func TestSyncGetWithoutCodeMintsOne(t *testing.T) {
	h := newSyncHandler(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/api/sync", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp syncGetResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Code) != 6 {
		t.Errorf("code %q, want 6 characters", resp.Code)
	}
	if !resp.IsNew {
		t.Error("isNew = false, want true")
	}
	if len(resp.Progress) != 0 {
		t.Errorf("progress has %d entries, want empty", len(resp.Progress))
	}
}

func TestSyncGetUnknownCode(t *testing.T) {
	h := newSyncHandler(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/api/sync?code=ABCDEF", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Sync code not found") {
		t.Errorf("body = %q, want not-found message", rec.Body.String())
	}
}

func TestSyncGetInvalidCode(t *testing.T) {
	h := newSyncHandler(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/api/sync?code=AB", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSyncGetReturnsStoredBlob(t *testing.T) {
	fs := newFakeStore()
	fs.blobs["ABCDEF"] = &models.RemoteProgressBlob{
		WatchProgress: models.ProgressMap{
			"videos/a.mp4": {CurrentTime: 30, Duration: 60, Percent: 50, UpdatedAt: 1000},
		},
		LastUpdated: 1000,
	}
	h := newSyncHandler(fs)

	req := httptest.NewRequest(http.MethodGet, "/api/sync?code=abcdef", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp syncGetResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "ABCDEF" {
		t.Errorf("code = %q, want normalized ABCDEF", resp.Code)
	}
	if resp.Progress["videos/a.mp4"].Percent != 50 {
		t.Errorf("percent = %v, want 50", resp.Progress["videos/a.mp4"].Percent)
	}
	if resp.LastUpdated != 1000 {
		t.Errorf("lastUpdated = %d, want 1000", resp.LastUpdated)
	}
}

func postSync(t *testing.T, h *SyncHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/sync", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSyncPostCreatesBlobOnFirstPush(t *testing.T) {
	fs := newFakeStore()
	h := newSyncHandler(fs)

	rec := postSync(t, h, syncPostRequest{
		Code: "ABCDEF",
		Progress: models.ProgressMap{
			"videos/a.mp4": {CurrentTime: 10, Duration: 100, Percent: 10, UpdatedAt: 500},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	blob, ok := fs.blobs["ABCDEF"]
	if !ok {
		t.Fatal("blob not stored")
	}
	if blob.WatchProgress["videos/a.mp4"].UpdatedAt != 500 {
		t.Errorf("stored updatedAt = %d, want 500", blob.WatchProgress["videos/a.mp4"].UpdatedAt)
	}
	if blob.LastUpdated == 0 {
		t.Error("lastUpdated not stamped")
	}
}

func TestSyncPostMergesLastWriteWins(t *testing.T) {
	fs := newFakeStore()
	fs.blobs["ABCDEF"] = &models.RemoteProgressBlob{
		WatchProgress: models.ProgressMap{
			"videos/old.mp4":  {CurrentTime: 5, Duration: 100, Percent: 5, UpdatedAt: 2000},
			"videos/keep.mp4": {CurrentTime: 50, Duration: 100, Percent: 50, UpdatedAt: 9000},
		},
		LastUpdated: 9000,
	}
	h := newSyncHandler(fs)

	rec := postSync(t, h, syncPostRequest{
		Code: "ABCDEF",
		Progress: models.ProgressMap{
			"videos/old.mp4":  {CurrentTime: 80, Duration: 100, Percent: 80, UpdatedAt: 5000},
			"videos/keep.mp4": {CurrentTime: 1, Duration: 100, Percent: 1, UpdatedAt: 1000},
			"videos/new.mp4":  {CurrentTime: 20, Duration: 100, Percent: 20, UpdatedAt: 3000},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	merged := fs.blobs["ABCDEF"].WatchProgress
	if merged["videos/old.mp4"].Percent != 80 {
		t.Errorf("old.mp4 percent = %v, want newer incoming 80", merged["videos/old.mp4"].Percent)
	}
	if merged["videos/keep.mp4"].Percent != 50 {
		t.Errorf("keep.mp4 percent = %v, want existing 50", merged["videos/keep.mp4"].Percent)
	}
	if merged["videos/new.mp4"].Percent != 20 {
		t.Errorf("new.mp4 percent = %v, want 20", merged["videos/new.mp4"].Percent)
	}

	var resp syncPostResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Code != "ABCDEF" {
		t.Errorf("response = %+v, want success for ABCDEF", resp)
	}
}

func TestSyncPostValidation(t *testing.T) {
	h := newSyncHandler(newFakeStore())

	cases := []struct {
		name string
		body syncPostRequest
	}{
		{"missing code", syncPostRequest{Progress: models.ProgressMap{}}},
		{"short code", syncPostRequest{Code: "AB", Progress: models.ProgressMap{}}},
		{"nil progress", syncPostRequest{Code: "ABCDEF"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postSync(t, h, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestSyncMethodNotAllowed(t *testing.T) {
	h := newSyncHandler(newFakeStore())

	req := httptest.NewRequest(http.MethodDelete, "/api/sync", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
