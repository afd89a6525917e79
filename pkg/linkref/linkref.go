// Package linkref classifies raw chat input into platform link references.
//
// A Ref is the normalized (platform, kind, native id) triple the rest of the
// pipeline operates on. Classification is pure pattern matching with a fixed
// family priority: streaming first, then video, then social. Text that
// matches no family is not an error, it is simply not a link we handle.
package linkref

import "strings"

// Platform identifies the service family a link belongs to.
type Platform int

const (
	// PlatformUnknown is the zero value for unclassified input.
	PlatformUnknown Platform = iota
	// PlatformSpotify covers open.spotify.com URLs and spotify: URIs.
	PlatformSpotify
	// PlatformYouTube covers youtube.com, youtu.be and shorts URLs.
	PlatformYouTube
	// PlatformInstagram covers instagram.com post, reel and story URLs.
	PlatformInstagram
)

// String returns a stable lowercase name, suitable for log fields and
// metric labels.
func (p Platform) String() string {
	switch p {
	case PlatformSpotify:
		return "spotify"
	case PlatformYouTube:
		return "youtube"
	case PlatformInstagram:
		return "instagram"
	default:
		return "unknown"
	}
}

// Kind identifies the resource type addressed by a link.
type Kind int

const (
	// KindNone is the zero value for unclassified input.
	KindNone Kind = iota
	// KindTrack is a single streaming track.
	KindTrack
	// KindAlbum is a streaming album collection.
	KindAlbum
	// KindPlaylist is a streaming playlist collection.
	KindPlaylist
	// KindVideo is a single hosted video.
	KindVideo
	// KindPost is a social post, possibly a multi-item carousel.
	KindPost
	// KindReel is a social short-form video.
	KindReel
	// KindStory is a time-boxed social story item.
	KindStory
)

// String returns a stable lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindAlbum:
		return "album"
	case KindPlaylist:
		return "playlist"
	case KindVideo:
		return "video"
	case KindPost:
		return "post"
	case KindReel:
		return "reel"
	case KindStory:
		return "story"
	default:
		return "none"
	}
}

// Ref is a classified link. Immutable once produced by Classify.
//
// For stories NativeID is "owner/itemID" because the URL already carries
// everything needed to retrieve the item; every other kind holds an opaque
// platform id that requires a resolver round-trip.
type Ref struct {
	Platform Platform
	Kind     Kind
	NativeID string
}

// IsCollection reports whether the ref addresses a multi-track resource
// that requires paginated resolution.
func (r Ref) IsCollection() bool {
	return r.Kind == KindAlbum || r.Kind == KindPlaylist
}

// StoryParts splits a story ref's NativeID into its owner handle and
// numeric item id. Both are empty when the ref is not a story.
func (r Ref) StoryParts() (owner, itemID string) {
	if r.Kind != KindStory {
		return "", ""
	}
	parts := strings.SplitN(r.NativeID, "/", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}
