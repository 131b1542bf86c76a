package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bhishma-ai/bhishma/services"
	"github.com/bhishma-ai/bhishma/utils"
)

// DetectionController manages browser-driven emotion detection sessions. The
// browser runs the face model and posts each tick's confidence distribution;
// the server owns session state, throttling, and persistence.
type DetectionController struct {
	emotions *services.EmotionService
	sessions *services.DetectionManager
}

// NewDetectionController creates a new controller instance.
func NewDetectionController(db *gorm.DB) *DetectionController {
	svc := services.NewEmotionService(db)
	return &DetectionController{
		emotions: svc,
		sessions: services.NewDetectionManager(svc),
	}
}

// CreateSession opens a detection session in the model-loading state.
func (d *DetectionController) CreateSession(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	type request struct {
		Context string `json:"context"`
	}
	var req request
	_ = ctx.ShouldBindJSON(&req)

	session := d.sessions.Create(userID, req.Context)
	if err := session.BeginModelLoad(); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to initialize session")
		return
	}

	utils.Success(ctx, gin.H{
		"session_id": session.ID,
		"state":      session.State(),
	})
}

// ModelReady marks the browser's face model as loaded.
func (d *DetectionController) ModelReady(ctx *gin.Context) {
	session, ok := d.session(ctx)
	if !ok {
		return
	}

	if err := session.ModelReady(); err != nil {
		utils.Error(ctx, http.StatusConflict, 40940, err.Error())
		return
	}

	utils.Success(ctx, gin.H{"state": session.State()})
}

// Start begins detection. Browser-driven sessions pass no frame source and
// feed ticks through Tick.
func (d *DetectionController) Start(ctx *gin.Context) {
	session, ok := d.session(ctx)
	if !ok {
		return
	}

	if err := session.Start(ctx.Request.Context(), nil); err != nil {
		if errors.Is(err, services.ErrSessionStopped) {
			utils.Error(ctx, http.StatusGone, 41040, "session already stopped")
			return
		}
		utils.Error(ctx, http.StatusConflict, 40941, err.Error())
		return
	}

	utils.Success(ctx, gin.H{"state": session.State()})
}

// Status reports the session's lifecycle state, the last dominant emotion,
// and the error that ended it, if any.
func (d *DetectionController) Status(ctx *gin.Context) {
	session, ok := d.session(ctx)
	if !ok {
		return
	}

	resp := gin.H{
		"session_id": session.ID,
		"state":      session.State(),
		"dominant":   session.Dominant(),
	}
	if err := session.LastError(); err != nil {
		resp["error"] = err.Error()
	}
	utils.Success(ctx, resp)
}

// CameraDenied records that the user refused camera access. The session ends
// and its status carries the denial.
func (d *DetectionController) CameraDenied(ctx *gin.Context) {
	session, ok := d.session(ctx)
	if !ok {
		return
	}

	session.DenyCamera()
	utils.Success(ctx, gin.H{
		"state": session.State(),
		"error": services.ErrPermissionDenied.Error(),
	})
}

// Pause suspends detection without ending the session.
func (d *DetectionController) Pause(ctx *gin.Context) {
	session, ok := d.session(ctx)
	if !ok {
		return
	}

	if err := session.Pause(); err != nil {
		utils.Error(ctx, http.StatusConflict, 40942, err.Error())
		return
	}

	utils.Success(ctx, gin.H{"state": session.State()})
}

// Resume restarts detection after a pause.
func (d *DetectionController) Resume(ctx *gin.Context) {
	session, ok := d.session(ctx)
	if !ok {
		return
	}

	if err := session.Resume(); err != nil {
		utils.Error(ctx, http.StatusConflict, 40943, err.Error())
		return
	}

	utils.Success(ctx, gin.H{"state": session.State()})
}

// Stop ends the session permanently and removes it from the manager.
func (d *DetectionController) Stop(ctx *gin.Context) {
	userID, _ := getUserID(ctx)
	session, ok := d.session(ctx)
	if !ok {
		return
	}

	session.Stop()
	d.sessions.Remove(session.ID, userID)

	utils.Success(ctx, gin.H{"state": session.State()})
}

// Tick ingests one detection tick from the browser. An empty distribution
// means no face was found for this frame.
func (d *DetectionController) Tick(ctx *gin.Context) {
	session, ok := d.session(ctx)
	if !ok {
		return
	}

	type request struct {
		Emotions map[string]float64 `json:"emotions"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	dominant, persisted, err := session.Ingest(req.Emotions)
	if err != nil {
		if errors.Is(err, services.ErrSessionStopped) {
			utils.Error(ctx, http.StatusGone, 41040, "session already stopped")
			return
		}
		utils.Error(ctx, http.StatusConflict, 40944, err.Error())
		return
	}

	utils.Success(ctx, gin.H{
		"dominant":  dominant,
		"persisted": persisted,
		"state":     session.State(),
	})
}

// Save logs the current distribution immediately, bypassing the confidence
// floor but not the 10 second throttle.
func (d *DetectionController) Save(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	type request struct {
		Emotions  map[string]float64 `json:"emotions" binding:"required"`
		Context   string             `json:"context"`
		SessionID string             `json:"session_id"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid request payload")
		return
	}

	dominant, persisted, err := d.emotions.LogDetection(userID, req.Emotions, req.Context, req.SessionID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to save detection")
		return
	}

	utils.Success(ctx, gin.H{
		"dominant":  dominant,
		"persisted": persisted,
	})
}

// Recent returns the latest persisted detections.
func (d *DetectionController) Recent(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	limit := parseLimit(ctx.Query("limit"), 20, 100)
	detections, err := d.emotions.RecentDetections(userID, limit)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load detections")
		return
	}

	utils.Success(ctx, detections)
}

func (d *DetectionController) session(ctx *gin.Context) (*services.DetectionSession, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return nil, false
	}

	session := d.sessions.Get(ctx.Param("id"), userID)
	if session == nil {
		utils.Error(ctx, http.StatusNotFound, 40440, "detection session not found")
		return nil, false
	}
	return session, true
}
