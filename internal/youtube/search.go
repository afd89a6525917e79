// Package youtube provides the target-platform search and media fetch
// providers: a results-page search that needs no credentials, and a
// stream downloader with a per-kind quality ladder and a hard size cap.
package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"grabbit/internal/core"
	"grabbit/pkg/match"
)

const (
	searchResultsURL = "https://www.youtube.com/results?search_query=%s"
	// maxSearchReadSize bounds how much of the results page is read.
	maxSearchReadSize = 2 << 20
	// commonUserAgent is the user agent string used for all HTTP requests.
	commonUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	commonAcceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	defaultHTTPTimeout = 15 * time.Second
)

var (
	videoRendererMarker = `"videoRenderer":`
	videoIDRegex        = regexp.MustCompile(`"videoId":"([A-Za-z0-9_-]{6,})"`)
	titleRunRegex       = regexp.MustCompile(`"title":\{"runs":\[\{"text":"((?:[^"\\]|\\.)*)"`)
	lengthTextRegex     = regexp.MustCompile(`(?s)"lengthText":.{0,300}?"simpleText":"([0-9:]+)"`)
	ownerTextRegex      = regexp.MustCompile(`"ownerText":\{"runs":\[\{"text":"((?:[^"\\]|\\.)*)"`)
)

// Searcher scrapes the public results page. No credentials required; the
// page's own relevance order is preserved.
type Searcher struct {
	logger *zap.Logger
	client *http.Client
}

func NewSearcher(logger *zap.Logger) *Searcher {
	return &Searcher{
		logger: logger,
		client: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Search issues a fresh remote query and returns at most limit
// candidates. An empty result is not an error.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]match.Candidate, error) {
	pageURL := fmt.Sprintf(searchResultsURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", commonUserAgent)
	req.Header.Set("Accept", commonAcceptHeader)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("Search request failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("search request: %w", core.ErrUnavailable)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("Search returned bad status",
			zap.String("query", query),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("search status %d: %w", resp.StatusCode, core.ErrUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchReadSize))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", core.ErrUnavailable)
	}

	candidates := parseSearchResults(string(body), limit)
	s.logger.Debug("Search completed",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)))
	return candidates, nil
}

// parseSearchResults extracts video entries from the embedded result
// JSON. Page order is kept; duplicate ids are dropped.
func parseSearchResults(page string, limit int) []match.Candidate {
	var candidates []match.Candidate
	seen := make(map[string]struct{})

	chunks := strings.Split(page, videoRendererMarker)
	for _, chunk := range chunks[1:] {
		if limit > 0 && len(candidates) >= limit {
			break
		}

		idMatch := videoIDRegex.FindStringSubmatch(chunk)
		titleMatch := titleRunRegex.FindStringSubmatch(chunk)
		if idMatch == nil || titleMatch == nil {
			continue
		}
		id := idMatch[1]
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		candidate := match.Candidate{
			ID:    id,
			Title: unescapeJSON(titleMatch[1]),
			URL:   "https://www.youtube.com/watch?v=" + id,
		}
		if m := lengthTextRegex.FindStringSubmatch(chunk); m != nil {
			candidate.Duration = parseClockDuration(m[1])
		}
		if m := ownerTextRegex.FindStringSubmatch(chunk); m != nil {
			candidate.Uploader = unescapeJSON(m[1])
		}
		candidates = append(candidates, candidate)
	}

	return candidates
}

// parseClockDuration parses "3:33" or "1:02:03" style durations. Unknown
// forms yield zero, which the scorer treats as "duration unknown".
func parseClockDuration(s string) time.Duration {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second
}

func unescapeJSON(s string) string {
	// JSON allows \/ but Go string syntax does not.
	s = strings.ReplaceAll(s, `\/`, `/`)
	if unquoted, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return unquoted
	}
	return s
}
