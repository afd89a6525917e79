package youtube

import (
	"testing"
	"time"
)

const sampleResultsPage = `{"contents":[` +
	`{"videoRenderer":{"videoId":"dQw4w9WgXcQ","thumbnail":{},` +
	`"title":{"runs":[{"text":"Artist Y - Song X (Official Audio)"}]},` +
	`"lengthText":{"accessibility":{"accessibilityData":{"label":"3 minutes, 20 seconds"}},"simpleText":"3:20"},` +
	`"ownerText":{"runs":[{"text":"Artist Y"}]}}},` +
	`{"videoRenderer":{"videoId":"abc123XYZ_-",` +
	`"title":{"runs":[{"text":"Song X Live \u0026 Unplugged"}]},` +
	`"lengthText":{"simpleText":"1:02:05"},` +
	`"ownerText":{"runs":[{"text":"Some Channel"}]}}},` +
	`{"videoRenderer":{"videoId":"dQw4w9WgXcQ",` +
	`"title":{"runs":[{"text":"duplicate entry"}]}}},` +
	`{"videoRenderer":{"videoId":"noLength123",` +
	`"title":{"runs":[{"text":"Upcoming Premiere"}]}}}]}`

func TestParseSearchResults(t *testing.T) {
	candidates := parseSearchResults(sampleResultsPage, 5)

	if len(candidates) != 3 {
		t.Fatalf("parseSearchResults() returned %d candidates, want 3", len(candidates))
	}

	first := candidates[0]
	if first.ID != "dQw4w9WgXcQ" {
		t.Errorf("first.ID = %q, want dQw4w9WgXcQ", first.ID)
	}
	if first.Title != "Artist Y - Song X (Official Audio)" {
		t.Errorf("first.Title = %q", first.Title)
	}
	if first.Duration != 3*time.Minute+20*time.Second {
		t.Errorf("first.Duration = %v, want 3m20s", first.Duration)
	}
	if first.Uploader != "Artist Y" {
		t.Errorf("first.Uploader = %q, want Artist Y", first.Uploader)
	}
	if first.URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("first.URL = %q", first.URL)
	}

	second := candidates[1]
	if second.Title != "Song X Live & Unplugged" {
		t.Errorf("second.Title = %q, want JSON escape decoded", second.Title)
	}
	if second.Duration != time.Hour+2*time.Minute+5*time.Second {
		t.Errorf("second.Duration = %v, want 1h2m5s", second.Duration)
	}

	// Entries without a length are still candidates; the scorer treats
	// a zero duration as unknown.
	if candidates[2].Duration != 0 {
		t.Errorf("third.Duration = %v, want 0", candidates[2].Duration)
	}
}

func TestParseSearchResultsLimit(t *testing.T) {
	candidates := parseSearchResults(sampleResultsPage, 1)
	if len(candidates) != 1 {
		t.Errorf("parseSearchResults(limit=1) returned %d candidates", len(candidates))
	}
}

func TestParseSearchResultsEmptyPage(t *testing.T) {
	if got := parseSearchResults("<html>no scripts here</html>", 5); len(got) != 0 {
		t.Errorf("parseSearchResults() = %d candidates on empty page, want 0", len(got))
	}
}

func TestParseClockDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"0:45", 45 * time.Second},
		{"3:20", 3*time.Minute + 20*time.Second},
		{"1:02:03", time.Hour + 2*time.Minute + 3*time.Second},
		{"45", 0},
		{"x:yz", 0},
	}
	for _, tt := range tests {
		if got := parseClockDuration(tt.in); got != tt.want {
			t.Errorf("parseClockDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
