package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bhishma-ai/bhishma/models"
	"github.com/bhishma-ai/bhishma/utils"
)

// Mood trend labels derived from the last week of entries.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

const contextMessageLimit = 10

// crisisKeywords trigger the immediate safety response without calling the
// model at all.
var crisisKeywords = []string{"suicide", "self-harm", "self harm", "end my life", "kill myself"}

const crisisResponse = "I'm really concerned about you. Please reach out to a crisis helpline immediately: National Suicide Prevention Lifeline: 988. You can also text HOME to 741741. Would you like me to help you find a counselor?"

const companionPromptTemplate = `You are Bhishma AI, a caring and empathetic mental health companion. You are NOT a therapist or medical professional.

Your personality:
- Warm, caring, and non-judgmental
- Use the person's name (%s) occasionally to personalize
- Be conversational and friendly, not clinical
- Validate emotions and provide support
- Offer gentle suggestions for coping strategies

User context:
- Recent mood trend: %s
%s
Guidelines:
- NEVER provide medical advice or diagnoses
- Always recommend professional help for serious concerns
- Keep responses concise (2-4 sentences)
- Ask gentle follow-up questions
- Suggest app features when relevant (yoga, breathing exercises, counseling)`

// MoodTrend classifies a week of entries, oldest first, by comparing the
// average of the last three scores against the first three. Fewer than two
// entries read as stable.
func MoodTrend(entries []models.MoodEntry) string {
	if len(entries) < 2 {
		return TrendStable
	}
	n := 3
	if len(entries) < n {
		n = len(entries)
	}
	var recent, older float64
	for _, e := range entries[len(entries)-n:] {
		recent += float64(e.MoodScore)
	}
	for _, e := range entries[:n] {
		older += float64(e.MoodScore)
	}
	recent /= float64(n)
	older /= float64(n)

	switch {
	case recent > older+1:
		return TrendImproving
	case recent < older-1:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// ContainsCrisisKeywords reports whether a message needs the safety response.
func ContainsCrisisKeywords(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range crisisKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ChatService persists companion conversations and produces replies through
// the LLM client.
type ChatService struct {
	db  *gorm.DB
	llm utils.ChatCompleter
}

// NewChatService creates a chat service.
func NewChatService(db *gorm.DB, llm utils.ChatCompleter) *ChatService {
	return &ChatService{db: db, llm: llm}
}

// ChatReply is the outcome of one companion turn.
type ChatReply struct {
	ConversationID uint   `json:"conversation_id"`
	Reply          string `json:"reply"`
	Crisis         bool   `json:"crisis"`
}

// Respond stores the user's message, builds the model context (recent turns,
// weekly mood trend, user name, detected emotion), and returns the
// assistant's reply. Crisis messages short-circuit to the safety response.
func (s *ChatService) Respond(ctx context.Context, userID uint, conversationID uint, message string, detectedEmotion *string) (ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return ChatReply{}, fmt.Errorf("empty message")
	}

	conv, err := s.ensureConversation(userID, conversationID, message)
	if err != nil {
		return ChatReply{}, err
	}

	userMsg := models.ChatMessage{
		ConversationID:  conv.ID,
		UserID:          userID,
		Role:            models.ChatRoleUser,
		Content:         utils.Sanitize(message),
		DetectedEmotion: detectedEmotion,
	}
	if err := s.db.Create(&userMsg).Error; err != nil {
		return ChatReply{}, fmt.Errorf("store user message: %w", err)
	}

	reply := ChatReply{ConversationID: conv.ID}
	if ContainsCrisisKeywords(message) {
		reply.Reply = crisisResponse
		reply.Crisis = true
	} else {
		text, err := s.complete(ctx, userID, conv.ID, message, detectedEmotion)
		if err != nil {
			return ChatReply{}, err
		}
		reply.Reply = text
	}

	assistantMsg := models.ChatMessage{
		ConversationID: conv.ID,
		UserID:         userID,
		Role:           models.ChatRoleAssistant,
		Content:        reply.Reply,
	}
	if err := s.db.Create(&assistantMsg).Error; err != nil {
		return ChatReply{}, fmt.Errorf("store assistant message: %w", err)
	}
	return reply, nil
}

// Conversations lists a user's conversations, newest first.
func (s *ChatService) Conversations(userID uint) ([]models.ChatConversation, error) {
	var convs []models.ChatConversation
	if err := s.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}
	return convs, nil
}

// Messages lists a conversation's messages in order.
func (s *ChatService) Messages(userID, conversationID uint) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	if err := s.db.Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Order("created_at ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	return msgs, nil
}

// WeeklyMoodTrend loads the past week of entries and classifies them.
func (s *ChatService) WeeklyMoodTrend(userID uint) string {
	var entries []models.MoodEntry
	weekAgo := time.Now().AddDate(0, 0, -7)
	if err := s.db.Where("user_id = ? AND created_at >= ?", userID, weekAgo).
		Order("created_at ASC").Find(&entries).Error; err != nil {
		utils.Sugar.Warnw("mood trend lookup failed", "user_id", userID, "error", err)
		return TrendStable
	}
	return MoodTrend(entries)
}

const conversationTitleRunes = 50

// conversationTitle derives a new conversation's title from its first
// message, truncated on a rune boundary so multibyte text stays intact.
func conversationTitle(message string) string {
	runes := []rune(message)
	if len(runes) > conversationTitleRunes {
		return string(runes[:conversationTitleRunes])
	}
	return message
}

func (s *ChatService) ensureConversation(userID, conversationID uint, message string) (models.ChatConversation, error) {
	var conv models.ChatConversation
	if conversationID != 0 {
		err := s.db.Where("id = ? AND user_id = ?", conversationID, userID).First(&conv).Error
		if err == nil {
			return conv, nil
		}
		if err != gorm.ErrRecordNotFound {
			return conv, fmt.Errorf("load conversation: %w", err)
		}
	}
	conv = models.ChatConversation{UserID: userID, Title: conversationTitle(message)}
	if err := s.db.Create(&conv).Error; err != nil {
		return conv, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

func (s *ChatService) complete(ctx context.Context, userID, conversationID uint, message string, detectedEmotion *string) (string, error) {
	var user models.User
	name := "there"
	if err := s.db.First(&user, userID).Error; err == nil && user.FullName != "" {
		name = user.FullName
	}

	emotionLine := ""
	if detectedEmotion != nil && *detectedEmotion != "" {
		emotionLine = fmt.Sprintf("- Current detected emotion: %s\n", *detectedEmotion)
	}
	system := fmt.Sprintf(companionPromptTemplate, name, s.WeeklyMoodTrend(userID), emotionLine)

	var history []models.ChatMessage
	if err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").Limit(contextMessageLimit).
		Find(&history).Error; err != nil {
		utils.Sugar.Warnw("chat history lookup failed", "conversation_id", conversationID, "error", err)
	}

	messages := []utils.ChatTurn{{Role: "system", Content: system}}
	// history is newest-first and includes the just-stored user message.
	start := len(history) - 1
	if start > 6 {
		start = 6
	}
	for i := start; i >= 1; i-- {
		messages = append(messages, utils.ChatTurn{Role: history[i].Role, Content: history[i].Content})
	}
	messages = append(messages, utils.ChatTurn{Role: "user", Content: message})

	text, err := s.llm.ChatCompletion(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return text, nil
}
