package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mlenoir/vidvault/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var videoExtensions = map[string]bool{
	"mp4": true, "webm": true, "ogg": true, "mov": true,
	"avi": true, "mkv": true, "m4v": true,
}

var subtitleExtensions = map[string]bool{
	"srt": true, "vtt": true, "ass": true, "ssa": true,
}

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "webp": true,
}

var contentTypes = map[string]string{
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"ogg":  "video/ogg",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"mkv":  "video/x-matroska",
	"m4v":  "video/x-m4v",
}

// timestampPrefix matches the epoch-millis prefix the upload path prepends
// to keys, e.g. "1700000000000-My_Movie.mp4"
var timestampPrefix = regexp.MustCompile(`^\d+-(.+)$`)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

var titleCaser = cases.Title(language.English)

// ExtensionOf returns the lowercased substring after the last dot, or an
// empty string if the filename has no extension
func ExtensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// ClassifyExtension maps a file extension to its catalog role
func ClassifyExtension(ext string) models.AssetRole {
	switch {
	case videoExtensions[ext]:
		return models.RoleVideo
	case subtitleExtensions[ext]:
		return models.RoleSubtitle
	case imageExtensions[ext]:
		return models.RolePoster
	default:
		return models.RoleUnrecognized
	}
}

// BaseName strips the extension and a trailing "-poster" suffix
func BaseName(filename string) string {
	base := filename
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return strings.TrimSuffix(base, "-poster")
}

// MatchKey derives the association identity used to pair subtitles and
// posters with their video: the base name with any upload timestamp
// prefix stripped
func MatchKey(filename string) string {
	return StripTimestampPrefix(BaseName(filename))
}

// StripTimestampPrefix removes a leading "<digits>-" upload prefix, if any
func StripTimestampPrefix(name string) string {
	if m := timestampPrefix.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return name
}

// DisplayNameFromKey turns a stored filename into its display name:
// timestamp prefix stripped, underscores replaced with spaces, extension
// removed
func DisplayNameFromKey(filename string) string {
	name := filename
	if m := timestampPrefix.FindStringSubmatch(filename); m != nil {
		name = strings.ReplaceAll(m[1], "_", " ")
	}
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	return name
}

// ContentTypeFor returns the MIME type for a video filename, defaulting
// to video/mp4
func ContentTypeFor(filename string) string {
	if ct, ok := contentTypes[ExtensionOf(filename)]; ok {
		return ct
	}
	return "video/mp4"
}

// SanitizeFilename replaces characters unsafe in object keys with underscores
func SanitizeFilename(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// Subtitle language patterns, tried in order. The order is a tie-break:
// a name like "2_eng,English.srt" matches the first pattern before the
// looser trailing-word one could fire.
var subtitleLanguagePatterns = []*regexp.Regexp{
	// 2_eng,English.srt -> full language name after the code
	regexp.MustCompile(`(?i)[_.][a-z]{2,3},([A-Za-z]+)\.(?:srt|vtt|ass|ssa)$`),
	// video_eng,... -> bare language code
	regexp.MustCompile(`(?i)_([a-z]{2,3}),`),
	// video_english.srt / video-english.srt -> trailing language word
	regexp.MustCompile(`(?i)[_-]([A-Za-z]+)\.(?:srt|vtt|ass|ssa)$`),
}

// ExtractSubtitleLanguage guesses the language of a subtitle file from
// common naming conventions, defaulting to English
func ExtractSubtitleLanguage(filename string) string {
	for _, pattern := range subtitleLanguagePatterns {
		if m := pattern.FindStringSubmatch(filename); m != nil {
			return titleCaser.String(strings.ToLower(m[1]))
		}
	}
	return "English"
}

// Episode patterns, tried in order; first match wins
var episodePatterns = []*regexp.Regexp{
	// Show.Name.S01E05
	regexp.MustCompile(`^(.+?)[.\s_-]*[Ss](\d+)[Ee](\d+)`),
	// Show Name Season 1 Episode 5
	regexp.MustCompile(`(?i)^(.+?)[.\s_-]*Season\s*(\d+)\s*Episode\s*(\d+)`),
	// Show.Name.1x05
	regexp.MustCompile(`^(.+?)[.\s_-]*(\d+)x(\d+)`),
}

var seriesSeparators = strings.NewReplacer(".", " ", "_", " ")

// ParseEpisodeInfo extracts a series/season/episode triple from a video
// name. Returns nil when the name carries no episode metadata; callers
// treat nil as "ungrouped", never as an error.
func ParseEpisodeInfo(name string) *models.EpisodeInfo {
	for _, pattern := range episodePatterns {
		m := pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		season, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		episode, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		return &models.EpisodeInfo{
			Series:  strings.TrimSpace(seriesSeparators.Replace(m[1])),
			Season:  season,
			Episode: episode,
		}
	}
	return nil
}

// FormatTime renders seconds as M:SS or H:MM:SS
func FormatTime(seconds float64) string {
	if seconds <= 0 {
		return "0:00"
	}
	total := int(seconds)
	hrs := total / 3600
	mins := (total % 3600) / 60
	secs := total % 60
	if hrs > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hrs, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}
