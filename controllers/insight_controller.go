package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bhishma-ai/bhishma/models"
	"github.com/bhishma-ai/bhishma/utils"
)

const (
	dailyInsightPrompt = `Generate a short, uplifting daily mental health insight for a wellness app user.
Respond in exactly this format:
TITLE: <a short title, max 8 words>
CONTENT: <2-3 supportive sentences with one practical tip>`

	moodAnalysisPromptTemplate = `You are a compassionate mental health assistant. A user's mood entries from the past week are listed below (scores are 1-10, higher is better).

%s

Write a brief, supportive analysis (3-4 sentences) of their mood patterns, and suggest one small, concrete action for tomorrow. Do not diagnose. Address the user directly.`
)

var fallbackInsight = insight{
	Title:   "One Step at a Time",
	Content: "Small consistent actions build lasting wellbeing. Take a few deep breaths right now and notice one thing you are grateful for today.",
}

type insight struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// InsightController generates AI wellness insights. Responses are cached per
// user per day so the model is called at most once per insight type.
type InsightController struct {
	db     *gorm.DB
	gemini *utils.GeminiClient
}

// NewInsightController creates a new controller instance.
func NewInsightController(db *gorm.DB, gemini *utils.GeminiClient) *InsightController {
	return &InsightController{db: db, gemini: gemini}
}

// Daily returns today's insight for the user.
func (i *InsightController) Daily(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cacheKey := fmt.Sprintf("insight:daily:%d:%s", userID, time.Now().Format("2006-01-02"))
	if raw, ok := utils.CacheGetBytes(cacheKey); ok {
		var cached insight
		if err := json.Unmarshal(raw, &cached); err == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	result := fallbackInsight
	if i.gemini.Configured() {
		text, err := i.gemini.GenerateContent(ctx.Request.Context(), dailyInsightPrompt)
		if err != nil {
			utils.Sugar.Warnw("daily insight generation failed", "user_id", userID, "error", err)
		} else if parsed, ok := parseInsight(text); ok {
			result = parsed
		}
	}

	utils.CacheSetJSON(cacheKey, result, 24*time.Hour)
	utils.Success(ctx, result)
}

// MoodAnalysis generates a supportive reading of the past week's entries.
func (i *InsightController) MoodAnalysis(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	since := time.Now().AddDate(0, 0, -7)
	var entries []models.MoodEntry
	if err := i.db.Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at ASC").Find(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to load mood history")
		return
	}
	if len(entries) == 0 {
		utils.Success(ctx, gin.H{
			"analysis":    "Not enough mood data yet. Log your mood for a few days and check back for a personalized analysis.",
			"entry_count": 0,
		})
		return
	}

	cacheKey := fmt.Sprintf("insight:analysis:%d:%s", userID, time.Now().Format("2006-01-02"))
	if raw, ok := utils.CacheGetBytes(cacheKey); ok {
		var cached gin.H
		if err := json.Unmarshal(raw, &cached); err == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	analysis := "Your mood entries show you are staying engaged with your wellbeing. Keep logging how you feel, and try to notice which activities line up with your better days."
	if i.gemini.Configured() {
		prompt := fmt.Sprintf(moodAnalysisPromptTemplate, summarizeEntries(entries))
		text, err := i.gemini.GenerateContent(ctx.Request.Context(), prompt)
		if err != nil {
			utils.Sugar.Warnw("mood analysis generation failed", "user_id", userID, "error", err)
		} else if text != "" {
			analysis = text
		}
	}

	payload := gin.H{"analysis": analysis, "entry_count": len(entries)}
	utils.CacheSetJSON(cacheKey, payload, 24*time.Hour)
	utils.Success(ctx, payload)
}

// parseInsight extracts the TITLE:/CONTENT: pair from a model response.
func parseInsight(text string) (insight, bool) {
	var out insight
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "TITLE:"):
			out.Title = strings.TrimSpace(strings.TrimPrefix(line, "TITLE:"))
		case strings.HasPrefix(line, "CONTENT:"):
			out.Content = strings.TrimSpace(strings.TrimPrefix(line, "CONTENT:"))
		}
	}
	return out, out.Title != "" && out.Content != ""
}

func summarizeEntries(entries []models.MoodEntry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s: score %d", e.CreatedAt.Format("Mon Jan 2"), e.MoodScore)
		if len(e.Emotions) > 0 {
			fmt.Fprintf(&b, ", emotions: %s", strings.Join(e.Emotions, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
