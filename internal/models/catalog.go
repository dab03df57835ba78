package models

import "time"

// StorageObject is one entry from an object-store listing. It is an
// immutable snapshot; the catalog is rebuilt from a fresh listing on
// every request.
type StorageObject struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Subtitle is a subtitle file associated with a video entry
type Subtitle struct {
	Key      string `json:"key"`
	Filename string `json:"filename"`
	Language string `json:"language"`
}

// EpisodeInfo is a series/season/episode triple inferred from a filename
type EpisodeInfo struct {
	Series  string `json:"series"`
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
}

// VideoEntry is the catalog's unit of display: one video object plus its
// associated subtitles and poster
type VideoEntry struct {
	Key         string       `json:"key"`
	Name        string       `json:"name"`
	Size        int64        `json:"size"`
	Uploaded    time.Time    `json:"uploaded"`
	ContentType string       `json:"contentType"`
	Provider    Provider     `json:"provider"`
	Subtitles   []Subtitle   `json:"subtitles"`
	Poster      string       `json:"poster,omitempty"`
	EpisodeInfo *EpisodeInfo `json:"episodeInfo,omitempty"`
}

// Catalog is the full reconciliation result for one listing
type Catalog struct {
	Videos   []VideoEntry `json:"videos"`
	Provider Provider     `json:"provider"`
}

// GroupedCatalog arranges catalog entries by series and season, with
// videos lacking episode metadata collected under Ungrouped
type GroupedCatalog struct {
	Grouped   map[string]map[int][]VideoEntry `json:"grouped"`
	Ungrouped []VideoEntry                    `json:"ungrouped"`
}
