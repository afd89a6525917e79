package flood

import "testing"

func TestAllowUnderLimit(t *testing.T) {
	gate := New(3)
	defer gate.Stop()

	for i := 0; i < 3; i++ {
		if !gate.Allow(100) {
			t.Fatalf("Allow() = false on request %d, want true under limit", i+1)
		}
	}
}

func TestAllowBlocksOverLimit(t *testing.T) {
	gate := New(2)
	defer gate.Stop()

	gate.Allow(100)
	gate.Allow(100)

	if gate.Allow(100) {
		t.Error("Allow() = true over the per-minute limit, want false")
	}
}

func TestAllowIsPerUser(t *testing.T) {
	gate := New(1)
	defer gate.Stop()

	if !gate.Allow(100) {
		t.Fatal("Allow() = false for first user")
	}
	if gate.Allow(100) {
		t.Error("Allow() = true for first user over limit")
	}
	if !gate.Allow(200) {
		t.Error("Allow() = false for second user, limits must be independent")
	}
}

func TestGetStats(t *testing.T) {
	gate := New(5)
	defer gate.Stop()

	gate.Allow(100)
	gate.Allow(200)

	stats := gate.GetStats()
	if stats.ActiveUsers != 2 {
		t.Errorf("GetStats().ActiveUsers = %d, want 2", stats.ActiveUsers)
	}
	if stats.LimitPerMinute != 5 {
		t.Errorf("GetStats().LimitPerMinute = %d, want 5", stats.LimitPerMinute)
	}
	if stats.WindowSeconds != 60 {
		t.Errorf("GetStats().WindowSeconds = %d, want 60", stats.WindowSeconds)
	}
}
