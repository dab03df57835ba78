package progress

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/mlenoir/vidvault/internal/localstore"
	"github.com/mlenoir/vidvault/internal/models"
	"github.com/mlenoir/vidvault/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	progressKey = "videoWatchProgress"
	recentKey   = "recentlyWatched"

	// Percent at or above which a video counts as watched
	watchedThreshold = 90.0
	// Percent below which a started video is not yet "in progress"
	inProgressFloor = 5.0

	maxRecentlyWatched = 20
)

// Store manages per-video watch progress in the local key-value store.
// Records are written wholesale on every save; merging against remote
// state is the sync engine's job, not the store's.
type Store struct {
	kv     localstore.Store
	logger *logrus.Logger
	now    func() time.Time
}

// NewStore creates a progress store on top of the given key-value capability
func NewStore(kv localstore.Store, logger *logrus.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

// All returns the full progress map. Missing or corrupt stored state is
// treated as an empty map, never an error.
func (s *Store) All() models.ProgressMap {
	raw, ok, err := s.kv.Get(progressKey)
	if err != nil || !ok {
		return models.ProgressMap{}
	}
	var progress models.ProgressMap
	if err := json.Unmarshal([]byte(raw), &progress); err != nil {
		s.logger.WithError(err).Warn("Corrupt progress data, starting empty")
		return models.ProgressMap{}
	}
	if progress == nil {
		progress = models.ProgressMap{}
	}
	return progress
}

// ReplaceAll overwrites the full progress map. Used by the sync engine
// after a merge.
func (s *Store) ReplaceAll(progress models.ProgressMap) error {
	raw, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	return s.kv.Set(progressKey, string(raw))
}

// Save records playback position for a video. Saving with an empty key or
// a non-positive duration is a silent no-op, which guards against writes
// fired before media metadata has loaded.
func (s *Store) Save(videoKey string, currentTime, duration float64) error {
	if videoKey == "" || duration <= 0 {
		return nil
	}

	progress := s.All()
	progress[videoKey] = models.ProgressRecord{
		CurrentTime: currentTime,
		Duration:    duration,
		Percent:     currentTime / duration * 100,
		UpdatedAt:   s.now().UnixMilli(),
	}
	if err := s.ReplaceAll(progress); err != nil {
		return err
	}

	return s.touchRecentlyWatched(videoKey)
}

// Get returns the progress record for a video, or nil if none exists
func (s *Store) Get(videoKey string) *models.ProgressRecord {
	progress := s.All()
	if rec, ok := progress[videoKey]; ok {
		return &rec
	}
	return nil
}

// Percent returns the progress for a video as an integer 0..100
func (s *Store) Percent(videoKey string) int {
	rec := s.Get(videoKey)
	if rec == nil {
		return 0
	}
	return int(math.Min(100, math.Round(rec.Percent)))
}

// IsWatched reports whether a video has reached the watched threshold
func (s *Store) IsWatched(videoKey string) bool {
	rec := s.Get(videoKey)
	return rec != nil && rec.Percent >= watchedThreshold
}

// MarkWatched records a video as fully watched
func (s *Store) MarkWatched(videoKey string, duration float64) error {
	return s.Save(videoKey, duration, duration)
}

// Clear removes the progress record for one video, if present
func (s *Store) Clear(videoKey string) error {
	progress := s.All()
	if _, ok := progress[videoKey]; !ok {
		return nil
	}
	delete(progress, videoKey)
	return s.ReplaceAll(progress)
}

// InProgress returns the "continue watching" set: videos started past the
// floor but not yet watched, most recently updated first
func (s *Store) InProgress() []models.InProgressVideo {
	progress := s.All()

	videos := make([]models.InProgressVideo, 0, len(progress))
	for key, rec := range progress {
		if rec.Percent <= inProgressFloor || rec.Percent >= watchedThreshold {
			continue
		}
		videos = append(videos, models.InProgressVideo{
			VideoKey:    key,
			Percent:     rec.Percent,
			CurrentTime: rec.CurrentTime,
			Duration:    rec.Duration,
			Position:    utils.FormatTime(rec.CurrentTime),
			Length:      utils.FormatTime(rec.Duration),
			UpdatedAt:   rec.UpdatedAt,
		})
	}

	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].UpdatedAt > videos[j].UpdatedAt
	})
	return videos
}

// RecentlyWatched returns video keys most recently saved, newest first
func (s *Store) RecentlyWatched() []string {
	raw, ok, err := s.kv.Get(recentKey)
	if err != nil || !ok {
		return nil
	}
	var recent []string
	if err := json.Unmarshal([]byte(raw), &recent); err != nil {
		return nil
	}
	return recent
}

// touchRecentlyWatched moves a key to the front of the bounded
// recently-watched list, dropping any prior occurrence
func (s *Store) touchRecentlyWatched(videoKey string) error {
	recent := s.RecentlyWatched()

	updated := make([]string, 0, len(recent)+1)
	updated = append(updated, videoKey)
	for _, key := range recent {
		if key != videoKey {
			updated = append(updated, key)
		}
	}
	if len(updated) > maxRecentlyWatched {
		updated = updated[:maxRecentlyWatched]
	}

	raw, err := json.Marshal(updated)
	if err != nil {
		return err
	}
	return s.kv.Set(recentKey, string(raw))
}
