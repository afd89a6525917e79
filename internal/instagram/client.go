// Package instagram provides the social-content provider: post, reel,
// carousel and story retrieval scraped from Instagram's public embed
// pages. No login session is used; content that requires one surfaces as
// not found.
package instagram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"grabbit/internal/core"
)

const (
	embedURLFormat = "https://www.instagram.com/p/%s/embed/captioned/"
	storyURLFormat = "https://www.instagram.com/stories/%s/%s/"

	// maxPageReadSize bounds how much of a scraped page is read.
	maxPageReadSize = 2 << 20
	// commonUserAgent is the user agent string used for all HTTP requests.
	commonUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	commonAcceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	defaultHTTPTimeout = 15 * time.Second
)

// Client scrapes post metadata and downloads media items, each
// independently subject to the configured size cap.
type Client struct {
	config *core.DownloadConfig
	logger *zap.Logger
	client *http.Client
}

func NewClient(config *core.DownloadConfig, logger *zap.Logger) *Client {
	return &Client{
		config: config,
		logger: logger,
		client: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// PostInfo fetches descriptive metadata for a post or reel shortcode.
func (c *Client) PostInfo(ctx context.Context, shortcode string) (*core.PostInfo, error) {
	page, err := c.fetchPage(ctx, fmt.Sprintf(embedURLFormat, shortcode))
	if err != nil {
		return nil, err
	}

	post := parsePost(page)
	post.Shortcode = shortcode
	if post.MediaCount == 0 {
		return nil, fmt.Errorf("post %s has no media: %w", shortcode, core.ErrNotFound)
	}

	c.logger.Debug("Resolved post metadata",
		zap.String("shortcode", shortcode),
		zap.String("owner", post.Owner),
		zap.Int("mediaCount", post.MediaCount))

	return post, nil
}

// DownloadPost retrieves every media item of a post. Carousel items are
// downloaded in order; an item over the size cap is deleted and skipped,
// never fatal for the whole post. A single-item post that is oversized
// reports TooLarge.
func (c *Client) DownloadPost(ctx context.Context, shortcode string) ([]core.Artifact, error) {
	page, err := c.fetchPage(ctx, fmt.Sprintf(embedURLFormat, shortcode))
	if err != nil {
		return nil, err
	}

	items := parseMediaItems(page)
	if len(items) == 0 {
		return nil, fmt.Errorf("post %s has no media: %w", shortcode, core.ErrNotFound)
	}
	return c.downloadItems(ctx, shortcode, items)
}

// DownloadStory retrieves a story item by owner handle and item id. An
// expired or inaccessible story is not found, not a generic failure.
func (c *Client) DownloadStory(ctx context.Context, owner, itemID string) ([]core.Artifact, error) {
	page, err := c.fetchPage(ctx, fmt.Sprintf(storyURLFormat, url.PathEscape(owner), url.PathEscape(itemID)))
	if err != nil {
		return nil, err
	}

	items := parseMediaItems(page)
	if len(items) == 0 {
		// Stories vanish 24 hours after posting.
		return nil, fmt.Errorf("story %s/%s unavailable: %w", owner, itemID, core.ErrNotFound)
	}
	return c.downloadItems(ctx, owner+"-"+itemID, items)
}

func (c *Client) downloadItems(ctx context.Context, label string, items []mediaItem) ([]core.Artifact, error) {
	var (
		artifacts []core.Artifact
		largest   int64
		oversized int
	)
	for i, item := range items {
		artifact, err := c.downloadItem(ctx, item)
		if err != nil {
			var tooLarge *core.TooLargeError
			if errors.As(err, &tooLarge) {
				oversized++
				if tooLarge.SizeBytes > largest {
					largest = tooLarge.SizeBytes
				}
				c.logger.Info("Skipping oversized carousel item",
					zap.String("post", label),
					zap.Int("item", i),
					zap.Int64("sizeBytes", tooLarge.SizeBytes))
				continue
			}
			// One broken item does not doom the rest, but a fully
			// failed post does.
			c.logger.Warn("Failed to download media item",
				zap.String("post", label),
				zap.Int("item", i),
				zap.Error(err))
			continue
		}
		artifacts = append(artifacts, *artifact)
	}

	if len(artifacts) == 0 {
		if oversized > 0 {
			return nil, &core.TooLargeError{SizeBytes: largest, LimitBytes: c.config.MaxFileSizeBytes}
		}
		return nil, fmt.Errorf("no media items downloadable for %s: %w", label, core.ErrUnavailable)
	}
	return artifacts, nil
}

func (c *Client) downloadItem(ctx context.Context, item mediaItem) (*core.Artifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", commonUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media request: %w", core.ErrUnavailable)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media status %d: %w", resp.StatusCode, core.ErrUnavailable)
	}

	if err := os.MkdirAll(c.config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	file, err := os.CreateTemp(c.config.Dir, "grab-*."+mediaExtension(item))
	if err != nil {
		return nil, fmt.Errorf("create download file: %w", err)
	}
	filePath := file.Name()

	// Read one byte past the cap so oversized items are detectable
	// without downloading them fully.
	written, copyErr := io.Copy(file, io.LimitReader(resp.Body, c.config.MaxFileSizeBytes+1))
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(filePath)
		return nil, fmt.Errorf("download media: %w", core.ErrUnavailable)
	}
	if written > c.config.MaxFileSizeBytes {
		_ = os.Remove(filePath)
		size := written
		if resp.ContentLength > size {
			size = resp.ContentLength
		}
		return nil, &core.TooLargeError{SizeBytes: size, LimitBytes: c.config.MaxFileSizeBytes}
	}

	kind := core.MediaImage
	if item.IsVideo {
		kind = core.MediaVideo
	}
	return &core.Artifact{LocalPath: filePath, SizeBytes: written, Kind: kind}, nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return "", err
	}

	// Set realistic browser headers.
	req.Header.Set("User-Agent", commonUserAgent)
	req.Header.Set("Accept", commonAcceptHeader)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Page request failed", zap.String("url", pageURL), zap.Error(err))
		return "", fmt.Errorf("page request: %w", core.ErrUnavailable)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", fmt.Errorf("page status %d: %w", resp.StatusCode, core.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("page status %d: %w", resp.StatusCode, core.ErrUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageReadSize))
	if err != nil {
		return "", fmt.Errorf("read page: %w", core.ErrUnavailable)
	}
	return string(body), nil
}

func mediaExtension(item mediaItem) string {
	if item.IsVideo {
		return "mp4"
	}
	if u, err := url.Parse(item.URL); err == nil {
		if ext := strings.TrimPrefix(path.Ext(u.Path), "."); ext != "" {
			return ext
		}
	}
	return "jpg"
}
