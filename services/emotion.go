package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/bhishma-ai/bhishma/models"
)

const (
	// Detections below this dominant confidence are displayed but never
	// persisted, keeping low-confidence noise out of mood history.
	confidenceFloor = 60

	// Minimum gap between persisted detections per user. The continuous
	// widget ticks every ~300ms; without this the store would flood.
	logIntervalMs = 10000
)

// faceLabelOrder is the fixed emission order of the face expression model.
// It doubles as the tie-break order when two labels share a rounded
// confidence; reproducible but otherwise arbitrary.
var faceLabelOrder = []string{"neutral", "happy", "sad", "angry", "fearful", "disgusted", "surprised"}

// baseScoreTable maps an emotion label to its full-confidence mood score.
var baseScoreTable = map[string]int{
	"Happy":     9,
	"Surprised": 7,
	"Neutral":   6,
	"Sad":       3,
	"Angry":     2,
	"Fearful":   2,
	"Disgusted": 3,
}

// EmotionSample is one ranked label from a detection tick.
type EmotionSample struct {
	Name       string `json:"name"`
	Confidence int    `json:"confidence"`
}

// RankEmotions orders a raw confidence distribution (values in [0,1]) by
// descending rounded percent, names capitalized. The sort is stable over the
// model's label order, so equal confidences keep a reproducible order.
func RankEmotions(distribution map[string]float64) []EmotionSample {
	samples := make([]EmotionSample, 0, len(distribution))
	seen := make(map[string]bool, len(distribution))
	for _, label := range faceLabelOrder {
		if conf, ok := distribution[label]; ok {
			samples = append(samples, EmotionSample{Name: capitalize(label), Confidence: roundPercent(conf)})
			seen[label] = true
		}
	}
	// Labels outside the known set go last, alphabetically, for determinism.
	extras := make([]string, 0)
	for label := range distribution {
		if !seen[label] {
			extras = append(extras, label)
		}
	}
	sort.Strings(extras)
	for _, label := range extras {
		samples = append(samples, EmotionSample{Name: capitalize(label), Confidence: roundPercent(distribution[label])})
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Confidence > samples[j].Confidence
	})
	return samples
}

// ShouldPersist reports whether enough time has passed since the last
// persisted detection. The 10s boundary is inclusive.
func ShouldPersist(lastLoggedAtMs, nowMs int64) bool {
	return nowMs-lastLoggedAtMs >= logIntervalMs
}

// ComputeMoodScore maps a detected emotion and its confidence percent to the
// 1-10 mood scale shared with manual entries. Unknown emotions fall back to a
// neutral-ish 6. Rounding is half-up; the result is clamped to [1,10].
func ComputeMoodScore(emotionName string, confidencePercent int) int {
	base, ok := baseScoreTable[emotionName]
	if !ok {
		base = 6
	}
	adjusted := int(math.Round(float64(base) * float64(confidencePercent) / 100))
	if adjusted < 1 {
		return 1
	}
	if adjusted > 10 {
		return 10
	}
	return adjusted
}

// EmotionService turns per-tick confidence distributions into throttled
// detection records and derived mood entries.
type EmotionService struct {
	db *gorm.DB

	mu         sync.Mutex
	lastLogged map[uint]int64

	// nowMs is swappable for tests.
	nowMs func() int64
}

// NewEmotionService creates an emotion service bound to the given database.
func NewEmotionService(db *gorm.DB) *EmotionService {
	return &EmotionService{
		db:         db,
		lastLogged: make(map[uint]int64),
		nowMs:      func() int64 { return time.Now().UnixMilli() },
	}
}

// AutoLogTick ranks a tick's distribution and, when the dominant emotion
// clears the confidence floor and the per-user throttle is open, persists an
// EmotionDetection plus a derived ai_detected MoodEntry. Returns the dominant
// sample (nil when no face data) and whether a record was persisted.
//
// The throttle timestamp advances before the write is issued, so a tick
// overlapping a slow write cannot double-log.
func (s *EmotionService) AutoLogTick(userID uint, distribution map[string]float64, contextTag, sessionID string) (*EmotionSample, bool, error) {
	ranked := RankEmotions(distribution)
	if len(ranked) == 0 {
		return nil, false, nil
	}
	dominant := ranked[0]

	if dominant.Confidence <= confidenceFloor {
		return &dominant, false, nil
	}

	s.mu.Lock()
	now := s.nowMs()
	if !ShouldPersist(s.lastLogged[userID], now) {
		s.mu.Unlock()
		return &dominant, false, nil
	}
	s.lastLogged[userID] = now
	s.mu.Unlock()

	if err := s.persistDetection(userID, dominant, ranked, contextTag, sessionID); err != nil {
		return &dominant, false, err
	}
	return &dominant, true, nil
}

// LogDetection persists a detection immediately, bypassing the confidence
// floor but honoring the throttle. Backs the manual "save mood" action.
func (s *EmotionService) LogDetection(userID uint, distribution map[string]float64, contextTag, sessionID string) (*EmotionSample, bool, error) {
	ranked := RankEmotions(distribution)
	if len(ranked) == 0 {
		return nil, false, nil
	}
	dominant := ranked[0]

	s.mu.Lock()
	now := s.nowMs()
	if !ShouldPersist(s.lastLogged[userID], now) {
		s.mu.Unlock()
		return &dominant, false, nil
	}
	s.lastLogged[userID] = now
	s.mu.Unlock()

	if err := s.persistDetection(userID, dominant, ranked, contextTag, sessionID); err != nil {
		return &dominant, false, err
	}
	return &dominant, true, nil
}

// RecentDetections lists the latest persisted detections, newest first.
func (s *EmotionService) RecentDetections(userID uint, limit int) ([]models.EmotionDetection, error) {
	if limit <= 0 {
		limit = 20
	}
	var detections []models.EmotionDetection
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&detections).Error; err != nil {
		return nil, fmt.Errorf("load emotion detections: %w", err)
	}
	return detections, nil
}

func (s *EmotionService) persistDetection(userID uint, dominant EmotionSample, ranked []EmotionSample, contextTag, sessionID string) error {
	all := make(map[string]int, len(ranked))
	for _, sample := range ranked {
		all[strings.ToLower(sample.Name)] = sample.Confidence
	}

	confidence := dominant.Confidence
	entry := models.MoodEntry{
		UserID:              userID,
		MoodScore:           ComputeMoodScore(dominant.Name, dominant.Confidence),
		Emotions:            []string{dominant.Name},
		EntrySource:         models.MoodSourceAIDetected,
		DetectionConfidence: &confidence,
	}
	detection := models.EmotionDetection{
		UserID:          userID,
		DetectedEmotion: dominant.Name,
		Confidence:      dominant.Confidence,
		AllEmotions:     all,
		Context:         contextTag,
		SessionID:       sessionID,
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&detection).Error; err != nil {
			return fmt.Errorf("insert emotion detection: %w", err)
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("insert mood entry: %w", err)
		}
		return nil
	})
}

func roundPercent(confidence float64) int {
	return int(math.Round(confidence * 100))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
