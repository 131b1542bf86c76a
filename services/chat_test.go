package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bhishma-ai/bhishma/models"
)

func entriesWithScores(scores ...int) []models.MoodEntry {
	entries := make([]models.MoodEntry, len(scores))
	for i, s := range scores {
		entries[i] = models.MoodEntry{MoodScore: s}
	}
	return entries
}

func TestMoodTrend(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   string
	}{
		{"empty", nil, TrendStable},
		{"single entry", []int{2}, TrendStable},
		{"improving", []int{3, 3, 3, 7, 7, 7}, TrendImproving},
		{"declining", []int{8, 8, 8, 4, 4, 4}, TrendDeclining},
		{"flat", []int{5, 5, 5, 5, 5, 5}, TrendStable},
		{"within threshold", []int{5, 5, 5, 6, 6, 6}, TrendStable},
		{"just over threshold", []int{5, 5, 5, 7, 6, 7}, TrendImproving},
		{"four entries improving", []int{2, 2, 2, 8}, TrendImproving},
		{"four entries declining", []int{8, 8, 8, 2}, TrendDeclining},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MoodTrend(entriesWithScores(tt.scores...)); got != tt.want {
				t.Errorf("MoodTrend(%v) = %s, want %s", tt.scores, got, tt.want)
			}
		})
	}
}

func TestContainsCrisisKeywords(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"I had a nice day at the park", false},
		{"I want to end my life", true},
		{"thinking about SUICIDE", true},
		{"struggling with self-harm urges", true},
		{"I might kill myself", true},
		{"self harm", true},
		{"my plants are dying", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ContainsCrisisKeywords(tt.message); got != tt.want {
			t.Errorf("ContainsCrisisKeywords(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}

func TestConversationTitle(t *testing.T) {
	short := "feeling a bit anxious today"
	if got := conversationTitle(short); got != short {
		t.Errorf("conversationTitle(%q) = %q, want unchanged", short, got)
	}

	long := strings.Repeat("a", 80)
	if got := conversationTitle(long); len([]rune(got)) != conversationTitleRunes {
		t.Errorf("truncated length = %d runes, want %d", len([]rune(got)), conversationTitleRunes)
	}

	// Truncation lands on a rune boundary even for multibyte text.
	multibyte := strings.Repeat("こんにちは", 20)
	got := conversationTitle(multibyte)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated title is not valid UTF-8: %q", got)
	}
	if len([]rune(got)) != conversationTitleRunes {
		t.Errorf("multibyte truncated length = %d runes, want %d", len([]rune(got)), conversationTitleRunes)
	}
	if !strings.HasPrefix(multibyte, got) {
		t.Error("truncated title is not a prefix of the message")
	}
}
