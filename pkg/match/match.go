// Package match selects the best target-platform recording for a source
// track described only by its metadata.
//
// There is no shared identifier between platforms, so selection is a
// weighted heuristic over title, contributor and duration agreement. The
// weights are hand-tuned constants; changing them changes which media
// users receive for identical queries, so they are kept exactly as is.
package match

import (
	"strings"
	"time"
)

// Source is the metadata of the track being searched for, as reported by
// the owning platform. Contributors are in credit order.
type Source struct {
	Title        string
	Contributors []string
	Duration     time.Duration
}

// Candidate is a single unranked search result from the target platform.
// A zero Duration means the platform did not report one.
type Candidate struct {
	ID       string
	Title    string
	Duration time.Duration
	Uploader string
	URL      string
}

// Scoring weights. Duration agreement only counts when both sides report
// a nonzero duration.
const (
	titleWeight        = 50
	contributorWeight  = 30
	durationTight      = 20
	durationLoose      = 10
	authoritativeBonus = 15
	undesiredPenalty   = 20

	durationTightWindow = 10 * time.Second
	durationLooseWindow = 30 * time.Second
)

// authoritativeKeywords mark uploads that are likely the canonical
// recording; undesiredKeywords mark variants users did not ask for.
var (
	authoritativeKeywords = []string{"official", "music video", "audio"}
	undesiredKeywords     = []string{"live", "cover", "remix", "karaoke"}
)

// Score computes the match score of a candidate against the source
// metadata. Scores start at zero, sum independent signals and may go
// negative. Fully deterministic for identical inputs.
func Score(c Candidate, src Source) int {
	title := strings.ToLower(c.Title)
	score := 0

	if src.Title != "" && strings.Contains(title, strings.ToLower(src.Title)) {
		score += titleWeight
	}
	for _, contributor := range src.Contributors {
		if contributor != "" && strings.Contains(title, strings.ToLower(contributor)) {
			score += contributorWeight
		}
	}
	if c.Duration > 0 && src.Duration > 0 {
		diff := c.Duration - src.Duration
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff < durationTightWindow:
			score += durationTight
		case diff < durationLooseWindow:
			score += durationLoose
		}
	}
	if containsAny(title, authoritativeKeywords) {
		score += authoritativeBonus
	}
	if containsAny(title, undesiredKeywords) {
		score -= undesiredPenalty
	}
	return score
}

// SelectBest returns the highest-scoring candidate. Ties keep the
// first-seen candidate, preserving the target platform's own relevance
// order. The maximum is returned even when its score is zero or negative;
// the second return value is false only for an empty candidate list.
func SelectBest(candidates []Candidate, src Source) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	bestScore := Score(best, src)
	for _, c := range candidates[1:] {
		if s := Score(c, src); s > bestScore {
			best = c
			bestScore = s
		}
	}
	return best, true
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
