package catalog

import (
	"path"
	"sort"
	"strings"

	"github.com/mlenoir/vidvault/internal/models"
	"github.com/mlenoir/vidvault/internal/utils"
)

// assembly collects the files associated with one video identity while
// the listing is scanned
type assembly struct {
	video     models.StorageObject
	hasVideo  bool
	subtitles []models.Subtitle
	poster    string
}

// Build reconstructs a structured catalog from a flat object listing.
//
// Zero-size objects are directory placeholders and are skipped.
// Unrecognized extensions are dropped silently. When two posters (or two
// videos) claim the same identity, the first one in listing order wins;
// listing order is whatever the provider returned, so the tie-break is
// stable per listing but not across providers.
func Build(objects []models.StorageObject, provider models.Provider) models.Catalog {
	groups := make(map[string]*assembly)
	var order []string

	group := func(id string) *assembly {
		if a, ok := groups[id]; ok {
			return a
		}
		a := &assembly{}
		groups[id] = a
		order = append(order, id)
		return a
	}

	for _, obj := range objects {
		if obj.Size == 0 {
			continue
		}
		filename := path.Base(obj.Key)
		role := utils.ClassifyExtension(utils.ExtensionOf(filename))

		switch role {
		case models.RoleVideo:
			a := group(utils.MatchKey(filename))
			if !a.hasVideo {
				a.video = obj
				a.hasVideo = true
			}
		case models.RoleSubtitle:
			a := group(subtitleMatchKey(obj.Key))
			a.subtitles = append(a.subtitles, models.Subtitle{
				Key:      obj.Key,
				Filename: filename,
				Language: utils.ExtractSubtitleLanguage(filename),
			})
		case models.RolePoster:
			a := group(utils.MatchKey(filename))
			if a.poster == "" {
				a.poster = obj.Key
			}
		}
	}

	videos := make([]models.VideoEntry, 0, len(order))
	for _, id := range order {
		a := groups[id]
		if !a.hasVideo {
			continue
		}
		filename := path.Base(a.video.Key)
		name := utils.DisplayNameFromKey(filename)
		videos = append(videos, models.VideoEntry{
			Key:         a.video.Key,
			Name:        name,
			Size:        a.video.Size,
			Uploaded:    a.video.LastModified,
			ContentType: utils.ContentTypeFor(filename),
			Provider:    provider,
			Subtitles:   a.subtitles,
			Poster:      a.poster,
			EpisodeInfo: utils.ParseEpisodeInfo(name),
		})
	}

	sortVideos(videos)
	return models.Catalog{Videos: videos, Provider: provider}
}

// subtitleMatchKey derives the identity a subtitle file associates with.
// Subtitles either sit alongside their video (shared base name) or live
// under a "Subs/<episode-folder>/" path, in which case the folder name is
// the identity; the folder convention takes precedence.
func subtitleMatchKey(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		if !strings.EqualFold(seg, "Subs") {
			continue
		}
		// Need a folder between Subs and the filename
		if i+1 < len(segments)-1 {
			return utils.StripTimestampPrefix(segments[i+1])
		}
	}
	return utils.MatchKey(segments[len(segments)-1])
}

// sortVideos orders the flat catalog. Entries with episode metadata sort
// by season then episode; a dataset with no episode metadata at all falls
// back to newest-upload-first; anything else compares display names.
func sortVideos(videos []models.VideoEntry) {
	anyEpisodes := false
	for _, v := range videos {
		if v.EpisodeInfo != nil {
			anyEpisodes = true
			break
		}
	}

	sort.SliceStable(videos, func(i, j int) bool {
		a, b := videos[i], videos[j]
		if a.EpisodeInfo != nil && b.EpisodeInfo != nil {
			if a.EpisodeInfo.Season != b.EpisodeInfo.Season {
				return a.EpisodeInfo.Season < b.EpisodeInfo.Season
			}
			if a.EpisodeInfo.Episode != b.EpisodeInfo.Episode {
				return a.EpisodeInfo.Episode < b.EpisodeInfo.Episode
			}
			return a.Name < b.Name
		}
		if !anyEpisodes {
			return a.Uploaded.After(b.Uploaded)
		}
		return a.Name < b.Name
	})
}

// GroupBySeries arranges catalog entries as series -> season -> episodes,
// with videos lacking episode metadata under Ungrouped. Episodes within a
// season sort ascending.
func GroupBySeries(videos []models.VideoEntry) models.GroupedCatalog {
	grouped := make(map[string]map[int][]models.VideoEntry)
	var ungrouped []models.VideoEntry

	for _, v := range videos {
		if v.EpisodeInfo == nil {
			ungrouped = append(ungrouped, v)
			continue
		}
		seasons, ok := grouped[v.EpisodeInfo.Series]
		if !ok {
			seasons = make(map[int][]models.VideoEntry)
			grouped[v.EpisodeInfo.Series] = seasons
		}
		seasons[v.EpisodeInfo.Season] = append(seasons[v.EpisodeInfo.Season], v)
	}

	for _, seasons := range grouped {
		for _, episodes := range seasons {
			sort.SliceStable(episodes, func(i, j int) bool {
				return episodes[i].EpisodeInfo.Episode < episodes[j].EpisodeInfo.Episode
			})
		}
	}

	return models.GroupedCatalog{Grouped: grouped, Ungrouped: ungrouped}
}

// FindNextEpisode returns the episode following current within its series,
// or nil when current is the last one or carries no episode metadata
func FindNextEpisode(current models.VideoEntry, all []models.VideoEntry) *models.VideoEntry {
	info := current.EpisodeInfo
	if info == nil {
		info = utils.ParseEpisodeInfo(current.Name)
	}
	if info == nil {
		return nil
	}

	var series []models.VideoEntry
	for _, v := range all {
		vi := v.EpisodeInfo
		if vi == nil {
			vi = utils.ParseEpisodeInfo(v.Name)
		}
		if vi == nil || !strings.EqualFold(vi.Series, info.Series) {
			continue
		}
		v.EpisodeInfo = vi
		series = append(series, v)
	}

	sort.SliceStable(series, func(i, j int) bool {
		a, b := series[i].EpisodeInfo, series[j].EpisodeInfo
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		return a.Episode < b.Episode
	})

	for i, v := range series {
		if v.Key == current.Key && i+1 < len(series) {
			next := series[i+1]
			return &next
		}
	}
	return nil
}
