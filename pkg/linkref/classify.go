package linkref

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	spotifyURIRegex = regexp.MustCompile(`spotify:(track|album|playlist):([A-Za-z0-9]+)`)
	spotifyURLRegex = regexp.MustCompile(`(?:https?://)?open\.spotify\.com/(?:intl-[a-z]{2}(?:-[A-Za-z]{2})?/)?(track|album|playlist)/([A-Za-z0-9]+)`)

	youtubeLongRegex  = regexp.MustCompile(`(?:https?://)?(?:www\.|m\.|music\.)?youtube\.com/(?:watch\?(?:[^\s]*?&)?v=|shorts/|v/|embed/)([A-Za-z0-9_-]{6,})`)
	youtubeShortRegex = regexp.MustCompile(`(?:https?://)?youtu\.be/([A-Za-z0-9_-]{6,})`)

	instagramStoryRegex = regexp.MustCompile(`(?:https?://)?(?:www\.)?instagram\.com/stories/([A-Za-z0-9_.]+)/(\d+)`)
	instagramPostRegex  = regexp.MustCompile(`(?:https?://)?(?:www\.)?instagram\.com/(p|reels?)/([A-Za-z0-9_-]+)`)
)

// Classify inspects raw chat text and extracts the first recognizable link
// reference. Family priority is fixed: Spotify, then YouTube, then
// Instagram; within a family the more specific pattern is tried first.
// The second return value is false when no family matches.
func Classify(raw string) (Ref, bool) {
	text := strings.TrimSpace(norm.NFKC.String(raw))
	if text == "" {
		return Ref{}, false
	}

	if m := spotifyURIRegex.FindStringSubmatch(text); m != nil {
		return Ref{Platform: PlatformSpotify, Kind: spotifyKind(m[1]), NativeID: m[2]}, true
	}
	if m := spotifyURLRegex.FindStringSubmatch(text); m != nil {
		return Ref{Platform: PlatformSpotify, Kind: spotifyKind(m[1]), NativeID: m[2]}, true
	}

	if m := youtubeLongRegex.FindStringSubmatch(text); m != nil {
		return Ref{Platform: PlatformYouTube, Kind: KindVideo, NativeID: m[1]}, true
	}
	if m := youtubeShortRegex.FindStringSubmatch(text); m != nil {
		return Ref{Platform: PlatformYouTube, Kind: KindVideo, NativeID: m[1]}, true
	}

	// Stories before posts: the story path carries owner and item id
	// directly, so no resolver round-trip is needed later.
	if m := instagramStoryRegex.FindStringSubmatch(text); m != nil {
		return Ref{Platform: PlatformInstagram, Kind: KindStory, NativeID: m[1] + "/" + m[2]}, true
	}
	if m := instagramPostRegex.FindStringSubmatch(text); m != nil {
		kind := KindPost
		if strings.HasPrefix(m[1], "reel") {
			kind = KindReel
		}
		return Ref{Platform: PlatformInstagram, Kind: kind, NativeID: m[2]}, true
	}

	return Ref{}, false
}

func spotifyKind(s string) Kind {
	switch s {
	case "album":
		return KindAlbum
	case "playlist":
		return KindPlaylist
	default:
		return KindTrack
	}
}
