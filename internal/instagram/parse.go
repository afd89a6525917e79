package instagram

import (
	"regexp"
	"strconv"
	"strings"

	"grabbit/internal/core"
)

// mediaItem is one downloadable media URL extracted from a post page.
type mediaItem struct {
	URL     string
	IsVideo bool
}

var (
	usernameRegex   = regexp.MustCompile(`"username":"((?:[^"\\]|\\.)+)"`)
	captionRegex    = regexp.MustCompile(`"edge_media_to_caption":\{"edges":\[\{"node":\{"text":"((?:[^"\\]|\\.)*)"`)
	likesRegex      = regexp.MustCompile(`"edge_(?:media_preview_like|liked_by)":\{"count":(\d+)`)
	commentsRegex   = regexp.MustCompile(`"edge_media_to_(?:parent_)?comment":\{"count":(\d+)`)
	displayURLRegex = regexp.MustCompile(`"display_url":"((?:[^"\\]|\\.)+)"`)
	videoURLRegex   = regexp.MustCompile(`"video_url":"((?:[^"\\]|\\.)+)"`)

	sidecarMarker = `"edge_sidecar_to_children"`
	childMarker   = `{"node":{"__typename"`
)

// parsePost extracts post metadata from an embed page.
func parsePost(page string) *core.PostInfo {
	post := &core.PostInfo{}

	if m := usernameRegex.FindStringSubmatch(page); m != nil {
		post.Owner = unescapeJSON(m[1])
	}
	if m := captionRegex.FindStringSubmatch(page); m != nil {
		post.Caption = unescapeJSON(m[1])
	}
	if m := likesRegex.FindStringSubmatch(page); m != nil {
		post.Likes, _ = strconv.Atoi(m[1])
	}
	if m := commentsRegex.FindStringSubmatch(page); m != nil {
		post.Comments, _ = strconv.Atoi(m[1])
	}

	items := parseMediaItems(page)
	post.MediaCount = len(items)
	post.IsVideo = len(items) > 0 && items[0].IsVideo

	return post
}

// parseMediaItems extracts downloadable media URLs in display order. For
// carousels each child node contributes one item: its video URL when the
// child is a video, its display URL otherwise. Single-media posts use
// the page's primary video or display URL.
func parseMediaItems(page string) []mediaItem {
	if idx := strings.Index(page, sidecarMarker); idx >= 0 {
		return parseCarouselItems(page[idx:])
	}

	if m := videoURLRegex.FindStringSubmatch(page); m != nil {
		return []mediaItem{{URL: unescapeJSON(m[1]), IsVideo: true}}
	}
	if m := displayURLRegex.FindStringSubmatch(page); m != nil {
		return []mediaItem{{URL: unescapeJSON(m[1])}}
	}
	return nil
}

func parseCarouselItems(sidecar string) []mediaItem {
	var items []mediaItem
	seen := make(map[string]struct{})

	chunks := strings.Split(sidecar, childMarker)
	for _, chunk := range chunks[1:] {
		item, ok := parseChildItem(chunk)
		if !ok {
			continue
		}
		if _, dup := seen[item.URL]; dup {
			continue
		}
		seen[item.URL] = struct{}{}
		items = append(items, item)
	}
	return items
}

func parseChildItem(chunk string) (mediaItem, bool) {
	if m := videoURLRegex.FindStringSubmatch(chunk); m != nil {
		return mediaItem{URL: unescapeJSON(m[1]), IsVideo: true}, true
	}
	if m := displayURLRegex.FindStringSubmatch(chunk); m != nil {
		return mediaItem{URL: unescapeJSON(m[1])}, true
	}
	return mediaItem{}, false
}

func unescapeJSON(s string) string {
	// JSON allows \/ but Go string syntax does not.
	s = strings.ReplaceAll(s, `\/`, `/`)
	if unquoted, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return unquoted
	}
	return s
}
