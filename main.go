package main

import (
	"github.com/bhishma-ai/bhishma/config"
	"github.com/bhishma-ai/bhishma/models"
	"github.com/bhishma-ai/bhishma/routes"
	"github.com/bhishma-ai/bhishma/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.ActivityRecord{},
		&models.RewardAccount{},
		&models.RewardTransaction{},
		&models.MoodEntry{},
		&models.EmotionDetection{},
		&models.JournalEntry{},
		&models.YogaSession{},
		&models.UserYogaProgress{},
		&models.Therapist{},
		&models.CounselingBooking{},
		&models.ChatConversation{},
		&models.ChatMessage{},
		&models.MindGameScore{},
		&models.UserPreference{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
