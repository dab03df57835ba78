package syncer

import "github.com/mlenoir/vidvault/internal/models"

// Merge reconciles two progress maps under last-write-wins semantics,
// applied per video key. Keys present on only one side are kept. When a
// key exists on both sides, the record with the greater updatedAt wins;
// equal timestamps keep the incoming side. The server applies this with
// the stored blob as existing, the client with local state as existing,
// so both sides converge on the same result.
func Merge(existing, incoming models.ProgressMap) models.ProgressMap {
	merged := make(models.ProgressMap, len(existing)+len(incoming))
	for key, rec := range existing {
		merged[key] = rec
	}
	for key, rec := range incoming {
		if cur, ok := merged[key]; ok && cur.UpdatedAt > rec.UpdatedAt {
			continue
		}
		merged[key] = rec
	}
	return merged
}
