// Package core wires link classification, metadata resolution,
// cross-platform search, best-match selection and media fetching into the
// per-user resolution pipeline behind the chat frontend.
package core

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"grabbit/pkg/linkref"
	"grabbit/pkg/match"
)

// TrackMetadata is the canonical description of a streaming track.
// Contributors keep the platform's credit order; it matters for display
// and for search-query construction. Immutable after creation.
type TrackMetadata struct {
	Title          string
	Contributors   []string
	CollectionName string
	Duration       time.Duration
	Popularity     int
}

// MatchSource converts track metadata into the scorer's source form.
func (t *TrackMetadata) MatchSource() match.Source {
	return match.Source{
		Title:        t.Title,
		Contributors: t.Contributors,
		Duration:     t.Duration,
	}
}

// Collection is a fully paginated album or playlist listing.
type Collection struct {
	Name   string
	Tracks []TrackMetadata
}

// TotalDuration sums the durations of all tracks in the collection.
func (c *Collection) TotalDuration() time.Duration {
	var total time.Duration
	for _, t := range c.Tracks {
		total += t.Duration
	}
	return total
}

// VideoInfo is the descriptive metadata of a directly linked video.
type VideoInfo struct {
	ID       string
	Title    string
	Author   string
	Duration time.Duration
}

// PostInfo is the descriptive metadata of a social post or reel.
type PostInfo struct {
	Shortcode  string
	Owner      string
	Caption    string
	Likes      int
	Comments   int
	MediaCount int
	IsVideo    bool
}

// MediaKind classifies a downloaded artifact for delivery.
type MediaKind int

const (
	// MediaAudio is an audio-only file.
	MediaAudio MediaKind = iota
	// MediaVideo is a video file.
	MediaVideo
	// MediaImage is a still image.
	MediaImage
	// MediaDocument is anything the transport should send as a plain file.
	MediaDocument
)

// String returns a stable lowercase name for metric labels.
func (k MediaKind) String() string {
	switch k {
	case MediaAudio:
		return "audio"
	case MediaVideo:
		return "video"
	case MediaImage:
		return "image"
	default:
		return "document"
	}
}

// Artifact is a downloaded media file on local disk. Ownership transfers
// to the delivery layer, which must call Remove after transmission.
type Artifact struct {
	LocalPath string
	SizeBytes int64
	Kind      MediaKind
}

// Remove deletes the artifact file. Removing an already-removed artifact
// is a no-op.
func (a Artifact) Remove() error {
	err := os.Remove(a.LocalPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ProgressFunc receives coarse download progress. Best effort: callers
// must tolerate it being nil and implementations must never fail a fetch
// because of it.
type ProgressFunc func(downloadedBytes, totalBytes int64)

// MetadataProvider fetches descriptive metadata from the streaming
// platform that owns an id.
type MetadataProvider interface {
	Track(ctx context.Context, id string) (*TrackMetadata, error)
	// Collection paginates the platform's listing until exhausted.
	Collection(ctx context.Context, kind linkref.Kind, id string) (*Collection, error)
}

// MediaSearcher issues a bounded search against the target platform's
// catalog. The platform's own relevance order is preserved.
type MediaSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]match.Candidate, error)
}

// MediaFetcher retrieves video metadata and binary media from the video
// platform. Fetch implementations enforce the configured size cap and
// delete oversized files before returning.
type MediaFetcher interface {
	VideoInfo(ctx context.Context, id string) (*VideoInfo, error)
	FetchAudio(ctx context.Context, id, quality string, progress ProgressFunc) (*Artifact, error)
	FetchVideo(ctx context.Context, id, quality string, progress ProgressFunc) (*Artifact, error)
}

// SocialProvider retrieves posts, reels and story items from the social
// platform. Download methods return one artifact per media item;
// oversized carousel items are skipped, not fatal.
type SocialProvider interface {
	PostInfo(ctx context.Context, shortcode string) (*PostInfo, error)
	DownloadPost(ctx context.Context, shortcode string) ([]Artifact, error)
	DownloadStory(ctx context.Context, owner, itemID string) ([]Artifact, error)
}

// Metrics receives pipeline counters. Implemented by the HTTP server;
// a nil Metrics disables recording.
type Metrics interface {
	RecordLink(platform, status string)
	RecordDownload(kind string)
	RecordTooLarge()
	RecordError(component, errorType string)
	RecordProcessingTime(stage string, d time.Duration)
	SetActiveSessions(count int)
}

// Prompt tells the chat frontend which follow-up choice to offer after an
// outcome. The frontend maps prompts to its own keyboard widgets.
type Prompt int

const (
	// PromptNone means the outcome is terminal.
	PromptNone Prompt = iota
	// PromptTrackActions offers audio-quality download choices for a track.
	PromptTrackActions
	// PromptFormatChoice offers audio vs video for a direct video link.
	PromptFormatChoice
	// PromptPostActions offers download/cancel for a social post.
	PromptPostActions
	// PromptStoryActions offers download/cancel for a story item.
	PromptStoryActions
	// PromptCollectionInfo shows collection details with no download.
	PromptCollectionInfo
)

// Outcome is what a pipeline call hands back to the delivery layer:
// text to display, an optional follow-up prompt, and any fetched media.
type Outcome struct {
	Info      string
	Prompt    Prompt
	Artifacts []Artifact
	Caption   string

	// Set when the outcome concerns a resolved track or video, so the
	// delivery layer can attach title/performer/duration to the upload.
	Track *TrackMetadata
	Video *VideoInfo
}
