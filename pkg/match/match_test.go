package match

import (
	"testing"
	"time"
)

func TestScore(t *testing.T) {
	src := Source{
		Title:        "Song X",
		Contributors: []string{"Artist Y"},
		Duration:     200 * time.Second,
	}

	tests := []struct {
		name      string
		candidate Candidate
		want      int
	}{
		{
			name:      "title, contributor, tight duration and authoritative keyword",
			candidate: Candidate{Title: "Artist Y - Song X (Official Audio)", Duration: 200 * time.Second},
			want:      50 + 30 + 20 + 15,
		},
		{
			name:      "title match with undesired variants",
			candidate: Candidate{Title: "Song X Live Cover", Duration: 205 * time.Second},
			want:      50 + 20 - 20,
		},
		{
			name:      "loose duration band",
			candidate: Candidate{Title: "Artist Y - Song X", Duration: 215 * time.Second},
			want:      50 + 30 + 10,
		},
		{
			name:      "duration outside both bands",
			candidate: Candidate{Title: "Artist Y - Song X", Duration: 300 * time.Second},
			want:      50 + 30,
		},
		{
			name:      "unknown candidate duration skips the duration signal",
			candidate: Candidate{Title: "Artist Y - Song X"},
			want:      50 + 30,
		},
		{
			name:      "no overlap at all",
			candidate: Candidate{Title: "Something Else Entirely", Duration: 200 * time.Second},
			want:      20,
		},
		{
			name:      "case folded matching",
			candidate: Candidate{Title: "ARTIST Y - SONG X"},
			want:      50 + 30,
		},
		{
			name:      "negative total",
			candidate: Candidate{Title: "unrelated live remix"},
			want:      -20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.candidate, src); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreContributorsAdditive(t *testing.T) {
	src := Source{
		Title:        "Duet",
		Contributors: []string{"First Artist", "Second Artist"},
	}
	c := Candidate{Title: "First Artist & Second Artist - Duet"}
	if got := Score(c, src); got != 50+30+30 {
		t.Errorf("Score() = %d, want %d", got, 50+30+30)
	}
}

func TestScoreKeywordMonotonicity(t *testing.T) {
	src := Source{Title: "Song X", Contributors: []string{"Artist Y"}}
	base := Candidate{Title: "Artist Y - Song X"}
	withOfficial := Candidate{Title: "Artist Y - Song X official"}
	withLive := Candidate{Title: "Artist Y - Song X live"}

	baseScore := Score(base, src)
	if got := Score(withOfficial, src); got != baseScore+15 {
		t.Errorf("authoritative keyword delta = %d, want +15", got-baseScore)
	}
	if got := Score(withLive, src); got != baseScore-20 {
		t.Errorf("undesired keyword delta = %d, want -20", got-baseScore)
	}
}

func TestSelectBest(t *testing.T) {
	src := Source{
		Title:        "Song X",
		Contributors: []string{"Artist Y"},
		Duration:     200 * time.Second,
	}
	candidates := []Candidate{
		{ID: "a", Title: "Artist Y - Song X (Official Audio)", Duration: 200 * time.Second},
		{ID: "b", Title: "Song X Live Cover", Duration: 205 * time.Second},
	}

	got, ok := SelectBest(candidates, src)
	if !ok {
		t.Fatal("SelectBest() returned no candidate")
	}
	if got.ID != "a" {
		t.Errorf("SelectBest() picked %q, want %q", got.ID, "a")
	}
}

func TestSelectBestDeterministic(t *testing.T) {
	src := Source{Title: "Song", Contributors: []string{"Artist"}, Duration: 180 * time.Second}
	candidates := []Candidate{
		{ID: "a", Title: "Artist - Song remix", Duration: 180 * time.Second},
		{ID: "b", Title: "Artist - Song", Duration: 240 * time.Second},
		{ID: "c", Title: "Song audio", Duration: 181 * time.Second},
	}
	first, _ := SelectBest(candidates, src)
	for i := 0; i < 10; i++ {
		got, _ := SelectBest(candidates, src)
		if got.ID != first.ID {
			t.Fatalf("SelectBest() not deterministic: got %q then %q", first.ID, got.ID)
		}
	}
}

func TestSelectBestTieKeepsFirst(t *testing.T) {
	src := Source{Title: "Song", Contributors: []string{"Artist"}}
	candidates := []Candidate{
		{ID: "first", Title: "Artist - Song"},
		{ID: "second", Title: "Song by Artist"},
	}
	got, ok := SelectBest(candidates, src)
	if !ok || got.ID != "first" {
		t.Errorf("SelectBest() tie = %q, want first-seen candidate", got.ID)
	}
}

func TestSelectBestEmpty(t *testing.T) {
	if _, ok := SelectBest(nil, Source{Title: "anything"}); ok {
		t.Error("SelectBest(nil) = ok, want no candidate")
	}
}

func TestSelectBestSingleNegative(t *testing.T) {
	src := Source{Title: "Song X"}
	candidates := []Candidate{{ID: "only", Title: "unrelated live recording"}}
	got, ok := SelectBest(candidates, src)
	if !ok {
		t.Fatal("SelectBest() rejected the only candidate")
	}
	if got.ID != "only" {
		t.Errorf("SelectBest() = %q, want %q", got.ID, "only")
	}
	if score := Score(candidates[0], src); score > 0 {
		t.Fatalf("test candidate score = %d, expected non-positive", score)
	}
}

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"plain", "Artist Song", "Artist Song"},
		{"strips punctuation", "Artist feat. Other - Song (Remastered)!", "Artist feat Other - Song Remastered"},
		{"keeps ampersand and hyphen", "Simon & Garfunkel - Sound", "Simon & Garfunkel - Sound"},
		{"collapses whitespace", "Artist    Song\t Title", "Artist Song Title"},
		{"trims", "  Artist Song  ", "Artist Song"},
		{"keeps non-ascii letters", "Beyoncé Déjà Vu", "Beyoncé Déjà Vu"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeQuery(tt.query)
			if got != tt.want {
				t.Errorf("SanitizeQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
			if again := SanitizeQuery(got); again != got {
				t.Errorf("SanitizeQuery() not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	src := Source{
		Title:        "Song X (feat. Someone)",
		Contributors: []string{"Artist Y", "Artist Z"},
	}
	want := "Artist Y Artist Z Song X feat Someone"
	if got := BuildQuery(src); got != want {
		t.Errorf("BuildQuery() = %q, want %q", got, want)
	}
}
