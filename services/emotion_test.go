package services

import (
	"testing"
)

func TestComputeMoodScore(t *testing.T) {
	tests := []struct {
		emotion    string
		confidence int
		want       int
	}{
		{"Happy", 100, 9},
		{"Happy", 50, 5},
		{"Happy", 83, 7},
		{"Surprised", 100, 7},
		{"Neutral", 100, 6},
		{"Neutral", 75, 5},
		{"Sad", 100, 3},
		{"Angry", 100, 2},
		{"Angry", 10, 1},
		{"Fearful", 100, 2},
		{"Disgusted", 100, 3},
		{"Unknown", 100, 6},
		{"Unknown", 0, 1},
	}
	for _, tt := range tests {
		if got := ComputeMoodScore(tt.emotion, tt.confidence); got != tt.want {
			t.Errorf("ComputeMoodScore(%q, %d) = %d, want %d", tt.emotion, tt.confidence, got, tt.want)
		}
	}
}

func TestRankEmotions(t *testing.T) {
	ranked := RankEmotions(map[string]float64{
		"happy":   0.82,
		"sad":     0.05,
		"neutral": 0.13,
	})
	if len(ranked) != 3 {
		t.Fatalf("len(ranked) = %d, want 3", len(ranked))
	}
	want := []EmotionSample{
		{Name: "Happy", Confidence: 82},
		{Name: "Neutral", Confidence: 13},
		{Name: "Sad", Confidence: 5},
	}
	for i, w := range want {
		if ranked[i] != w {
			t.Errorf("ranked[%d] = %+v, want %+v", i, ranked[i], w)
		}
	}
}

func TestRankEmotionsTieBreak(t *testing.T) {
	// Equal confidences keep the model's label order: neutral before happy.
	ranked := RankEmotions(map[string]float64{
		"happy":   0.5,
		"neutral": 0.5,
	})
	if ranked[0].Name != "Neutral" || ranked[1].Name != "Happy" {
		t.Errorf("tie order = [%s, %s], want [Neutral, Happy]", ranked[0].Name, ranked[1].Name)
	}
}

func TestRankEmotionsEmpty(t *testing.T) {
	if got := RankEmotions(nil); len(got) != 0 {
		t.Errorf("RankEmotions(nil) = %v, want empty", got)
	}
}

func TestShouldPersist(t *testing.T) {
	const base = int64(1_700_000_000_000)
	tests := []struct {
		last, now int64
		want      bool
	}{
		{0, base, true},
		{base, base + 9_999, false},
		{base, base + 10_000, true},
		{base, base + 10_001, true},
	}
	for _, tt := range tests {
		if got := ShouldPersist(tt.last, tt.now); got != tt.want {
			t.Errorf("ShouldPersist(%d, %d) = %v, want %v", tt.last, tt.now, got, tt.want)
		}
	}
}

func TestAutoLogTickBelowFloor(t *testing.T) {
	// Nothing is persisted at or below the floor, so no database is needed.
	svc := &EmotionService{
		lastLogged: make(map[uint]int64),
		nowMs:      func() int64 { return 0 },
	}

	dominant, persisted, err := svc.AutoLogTick(1, map[string]float64{"neutral": 0.60, "happy": 0.40}, "widget", "s1")
	if err != nil {
		t.Fatalf("AutoLogTick: %v", err)
	}
	if persisted {
		t.Error("persisted = true for dominant confidence at the floor")
	}
	if dominant == nil || dominant.Name != "Neutral" || dominant.Confidence != 60 {
		t.Errorf("dominant = %+v, want Neutral/60", dominant)
	}
}

func TestAutoLogTickThrottled(t *testing.T) {
	now := int64(1_700_000_000_000)
	svc := &EmotionService{
		lastLogged: map[uint]int64{1: now - 5_000},
		nowMs:      func() int64 { return now },
	}

	dominant, persisted, err := svc.AutoLogTick(1, map[string]float64{"happy": 0.90}, "widget", "s1")
	if err != nil {
		t.Fatalf("AutoLogTick: %v", err)
	}
	if persisted {
		t.Error("persisted = true inside the throttle window")
	}
	if dominant == nil || dominant.Name != "Happy" {
		t.Errorf("dominant = %+v, want Happy", dominant)
	}
	if svc.lastLogged[1] != now-5_000 {
		t.Errorf("throttle timestamp advanced on a skipped tick")
	}
}

func TestAutoLogTickNoFace(t *testing.T) {
	svc := &EmotionService{
		lastLogged: make(map[uint]int64),
		nowMs:      func() int64 { return 0 },
	}

	dominant, persisted, err := svc.AutoLogTick(1, nil, "widget", "s1")
	if err != nil {
		t.Fatalf("AutoLogTick: %v", err)
	}
	if dominant != nil || persisted {
		t.Errorf("dominant = %+v, persisted = %v, want nil/false for empty distribution", dominant, persisted)
	}
}
