package controllers

import (
	"testing"

	"github.com/bhishma-ai/bhishma/models"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw  string
		def  int
		max  int
		want int
	}{
		{"", 50, 200, 50},
		{"10", 50, 200, 10},
		{"500", 50, 200, 200},
		{"0", 50, 200, 50},
		{"-3", 50, 200, 50},
		{"abc", 50, 200, 50},
	}
	for _, tt := range tests {
		if got := parseLimit(tt.raw, tt.def, tt.max); got != tt.want {
			t.Errorf("parseLimit(%q, %d, %d) = %d, want %d", tt.raw, tt.def, tt.max, got, tt.want)
		}
	}
}

func TestValidUsername(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"alice", true},
		{"Alice-42", true},
		{"ab", false},
		{"has space", false},
		{"under_score", false},
		{"émile", false},
	}
	for _, tt := range tests {
		if got := validUsername(tt.name); got != tt.want {
			t.Errorf("validUsername(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSanitizeUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"John Doe", "John-Doe"},
		{"jane.doe_99", "jane-doe-99"},
		{"---", "user"},
		{"", "user"},
		{"émile!", "mile"},
	}
	for _, tt := range tests {
		if got := sanitizeUsername(tt.in); got != tt.want {
			t.Errorf("sanitizeUsername(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseInsight(t *testing.T) {
	text := "TITLE: Breathe and Reset\nCONTENT: A short pause can shift your whole day. Try one minute of slow breathing this afternoon."
	got, ok := parseInsight(text)
	if !ok {
		t.Fatal("parseInsight failed on well-formed text")
	}
	if got.Title != "Breathe and Reset" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Content == "" {
		t.Error("Content is empty")
	}

	if _, ok := parseInsight("just a sentence with no markers"); ok {
		t.Error("parseInsight succeeded on text without markers")
	}
	if _, ok := parseInsight("TITLE: only a title"); ok {
		t.Error("parseInsight succeeded without CONTENT")
	}
}

func TestNormalizeDifficulty(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"easy", models.GameDifficultyEasy},
		{"  Hard ", models.GameDifficultyHard},
		{"normal", models.GameDifficultyNormal},
		{"", models.GameDifficultyNormal},
		{"nightmare", models.GameDifficultyNormal},
	}
	for _, tt := range tests {
		if got := normalizeDifficulty(tt.raw); got != tt.want {
			t.Errorf("normalizeDifficulty(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestDefaultPreferences(t *testing.T) {
	pref := models.DefaultPreferences(7)
	if pref.UserID != 7 {
		t.Errorf("UserID = %d", pref.UserID)
	}
	if !pref.EmailNotifications || !pref.PushNotifications || !pref.SessionReminders ||
		!pref.MoodReminders || !pref.WeeklyReports {
		t.Error("all non-SMS toggles should default on")
	}
	if pref.SMSNotifications {
		t.Error("SMS notifications should default off")
	}
}

func TestApplyPreferenceUpdate(t *testing.T) {
	off := false
	on := true

	pref := models.DefaultPreferences(1)
	applyPreferenceUpdate(&pref, preferenceUpdate{
		SMSNotifications: &on,
		WeeklyReports:    &off,
	})

	if !pref.SMSNotifications {
		t.Error("SMSNotifications not applied")
	}
	if pref.WeeklyReports {
		t.Error("WeeklyReports not applied")
	}
	// Absent fields keep their values.
	if !pref.EmailNotifications || !pref.PushNotifications || !pref.SessionReminders || !pref.MoodReminders {
		t.Error("untouched toggles changed")
	}
}
