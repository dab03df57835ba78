package models

// ProgressRecord is the watch state for one video, keyed by the video's
// object-store key. UpdatedAt is epoch milliseconds and drives the
// last-write-wins merge during sync.
type ProgressRecord struct {
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
	Percent     float64 `json:"percent"`
	UpdatedAt   int64   `json:"updatedAt"`
}

// ProgressMap maps video keys to their progress records
type ProgressMap map[string]ProgressRecord

// RemoteProgressBlob is the JSON document persisted per sync code. The
// whole blob is read-modify-written on every sync call.
type RemoteProgressBlob struct {
	WatchProgress ProgressMap `json:"watchProgress"`
	LastUpdated   int64       `json:"lastUpdated"`
}

// InProgressVideo is one entry of the "continue watching" set. Position
// and Length carry the display rendering of CurrentTime and Duration.
type InProgressVideo struct {
	VideoKey    string  `json:"videoKey"`
	Percent     float64 `json:"percent"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
	Position    string  `json:"position"`
	Length      string  `json:"length"`
	UpdatedAt   int64   `json:"updatedAt"`
}
