package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"grabbit/internal/i18n"
)

// Formatter renders user-visible text from pipeline results.
type Formatter struct {
	localizer *i18n.Localizer
}

func NewFormatter(localizer *i18n.Localizer) *Formatter {
	return &Formatter{localizer: localizer}
}

// TrackCard renders the metadata card shown before a quality choice.
func (f *Formatter) TrackCard(t *TrackMetadata) string {
	album := t.CollectionName
	if album == "" {
		album = "-"
	}
	return f.localizer.T("card.track",
		t.Title,
		strings.Join(t.Contributors, ", "),
		album,
		FormatDuration(t.Duration),
	)
}

// CollectionCard renders an album or playlist summary.
func (f *Formatter) CollectionCard(c *Collection) string {
	return f.localizer.T("card.collection", c.Name, len(c.Tracks), FormatDuration(c.TotalDuration()))
}

// VideoCard renders a direct video link's metadata card.
func (f *Formatter) VideoCard(v *VideoInfo) string {
	return f.localizer.T("card.video", v.Title, v.Author, FormatDuration(v.Duration))
}

// PostCard renders a social post's metadata card.
func (f *Formatter) PostCard(p *PostInfo) string {
	card := f.localizer.T("card.post", p.Owner, p.Likes, p.Comments, p.MediaCount)
	if p.Caption != "" {
		caption := p.Caption
		if len(caption) > 200 {
			caption = caption[:200] + "…"
		}
		card += "\n💬 " + caption
	}
	return card
}

// StoryCard renders a story card with the 24-hour expiry note. Stories
// carry everything needed in the link itself, so this never requires a
// resolver call.
func (f *Formatter) StoryCard(owner, itemID string) string {
	return f.localizer.T("card.story", owner, itemID) + "\n\n" + f.localizer.T("note.story_expiry")
}

// UserMessage maps a pipeline error to the short explanatory text shown
// to the user. Distinct failure classes need distinct guidance: a bad
// link, absent content, an oversized file and a transient failure each
// call for a different user action.
func (f *Formatter) UserMessage(err error) string {
	var tooLarge *TooLargeError
	switch {
	case errors.As(err, &tooLarge):
		return f.localizer.T("error.fetch.too_large",
			FormatSize(tooLarge.SizeBytes), FormatSize(tooLarge.LimitBytes))
	case errors.Is(err, ErrUnknownLink):
		return f.localizer.T("error.link.unknown")
	case errors.Is(err, ErrNotFound):
		return f.localizer.T("error.not_found")
	case errors.Is(err, ErrUnauthorized):
		return f.localizer.T("error.unauthorized")
	case errors.Is(err, ErrNoResults):
		return f.localizer.T("error.search.no_results")
	case errors.Is(err, ErrNoMatch):
		return f.localizer.T("error.search.no_match")
	case errors.Is(err, ErrSessionExpired):
		return f.localizer.T("error.session.expired")
	default:
		return f.localizer.T("error.generic")
	}
}

// FormatDuration renders a duration as M:SS or H:MM:SS.
func FormatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatSize renders a byte count in human-readable units.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	value := float64(bytes)
	units := []string{"KB", "MB", "GB"}
	idx := -1
	for value >= unit && idx < len(units)-1 {
		value /= unit
		idx++
	}
	return fmt.Sprintf("%.1f %s", value, units[idx])
}

var filenameUnsafeRegex = regexp.MustCompile(`[^\w\s.-]`)

// SanitizeFilename strips characters unsafe for filenames and bounds the
// length, preserving a usable stem for delivery.
func SanitizeFilename(name string) string {
	s := filenameUnsafeRegex.ReplaceAllString(name, "")
	s = strings.TrimSpace(s)
	if s == "" {
		s = "media"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
