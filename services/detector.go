package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bhishma-ai/bhishma/utils"
)

// Detection session states.
const (
	StateIdle         = "idle"
	StateModelLoading = "model_loading"
	StateReady        = "ready"
	StateDetecting    = "detecting"
	StatePaused       = "paused"
	StateStopped      = "stopped"
)

const defaultTickInterval = 300 * time.Millisecond

var (
	// ErrNoFace signals a frame with no detectable face. Expected and
	// frequent; callers clear display state and move on.
	ErrNoFace = errors.New("no face detected")

	// ErrPermissionDenied signals the camera could not be opened.
	ErrPermissionDenied = errors.New("camera permission denied")

	// ErrSessionStopped is returned for operations on a terminal session.
	ErrSessionStopped = errors.New("detection session stopped")

	errNotDetecting = errors.New("session is not detecting")
)

// FrameSource abstracts the face-inference collaborator: each capture yields
// a label->confidence distribution in [0,1], or ErrNoFace.
type FrameSource interface {
	Capture(ctx context.Context) (map[string]float64, error)
	Close() error
}

// DetectionSession drives the continuous emotion detection loop for one user.
// Lifecycle: Idle -> ModelLoading -> Ready -> Detecting <-> Paused -> Stopped.
// Stopped is terminal; a fresh session is created to detect again.
type DetectionSession struct {
	ID         string
	UserID     uint
	ContextTag string

	svc      *EmotionService
	interval time.Duration

	mu       sync.Mutex
	state    string
	dominant *EmotionSample
	lastErr  error
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewDetectionSession creates a session in Idle.
func NewDetectionSession(svc *EmotionService, userID uint, contextTag string) *DetectionSession {
	if contextTag == "" {
		contextTag = "general"
	}
	return &DetectionSession{
		ID:         uuid.NewString(),
		UserID:     userID,
		ContextTag: contextTag,
		svc:        svc,
		interval:   defaultTickInterval,
		state:      StateIdle,
	}
}

// State returns the current lifecycle state.
func (d *DetectionSession) State() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Dominant returns the last displayed dominant emotion, nil when cleared.
func (d *DetectionSession) Dominant() *EmotionSample {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dominant
}

// LastError returns the error that ended the session, if any. A clean Stop
// leaves it nil; a camera permission denial surfaces here so the API can
// tell the user why detection ended.
func (d *DetectionSession) LastError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// BeginModelLoad moves Idle to ModelLoading.
func (d *DetectionSession) BeginModelLoad() error {
	return d.transition(StateIdle, StateModelLoading)
}

// ModelReady moves ModelLoading to Ready.
func (d *DetectionSession) ModelReady() error {
	return d.transition(StateModelLoading, StateReady)
}

// Start enters Detecting from Ready. When a FrameSource is supplied the
// session runs its own tick loop until Stop or context cancellation; with a
// nil source the caller feeds ticks through Ingest (browser-driven mode).
func (d *DetectionSession) Start(ctx context.Context, source FrameSource) error {
	d.mu.Lock()
	if d.state == StateStopped {
		d.mu.Unlock()
		return ErrSessionStopped
	}
	if d.state != StateReady {
		d.mu.Unlock()
		return errors.New("session is not ready")
	}
	d.state = StateDetecting
	if source == nil {
		d.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.mu.Unlock()

	go d.runLoop(loopCtx, source)
	return nil
}

// Pause suspends ticks without tearing the session down.
func (d *DetectionSession) Pause() error {
	return d.transition(StateDetecting, StatePaused)
}

// Resume re-enters Detecting from Paused.
func (d *DetectionSession) Resume() error {
	return d.transition(StatePaused, StateDetecting)
}

// Stop halts future ticks immediately and clears display state. An in-flight
// capture may finish, but its result is discarded. Idempotent.
func (d *DetectionSession) Stop() {
	d.mu.Lock()
	if d.state == StateStopped {
		d.mu.Unlock()
		return
	}
	d.state = StateStopped
	d.dominant = nil
	cancel := d.cancel
	done := d.done
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// DenyCamera ends the session because the camera could not be opened on the
// client. The denial is kept as the session's last error so a later status
// read can tell the user why detection never ran.
func (d *DetectionSession) DenyCamera() {
	d.mu.Lock()
	if d.state == StateStopped {
		d.mu.Unlock()
		return
	}
	d.lastErr = ErrPermissionDenied
	d.mu.Unlock()

	utils.Sugar.Warnw("camera permission denied", "session_id", d.ID)
	d.Stop()
}

// Ingest processes one tick's distribution in browser-driven mode. An empty
// distribution means no face: display state clears, nothing persists.
func (d *DetectionSession) Ingest(distribution map[string]float64) (*EmotionSample, bool, error) {
	d.mu.Lock()
	if d.state == StateStopped {
		d.mu.Unlock()
		return nil, false, ErrSessionStopped
	}
	if d.state != StateDetecting {
		d.mu.Unlock()
		return nil, false, errNotDetecting
	}
	d.mu.Unlock()

	dominant, persisted, err := d.svc.AutoLogTick(d.UserID, distribution, d.ContextTag, d.ID)

	d.mu.Lock()
	// A Stop that raced the tick wins: discard the stale result.
	if d.state == StateStopped {
		d.mu.Unlock()
		return nil, false, ErrSessionStopped
	}
	d.dominant = dominant
	d.mu.Unlock()
	return dominant, persisted, err
}

func (d *DetectionSession) runLoop(ctx context.Context, source FrameSource) {
	defer close(d.done)
	defer source.Close()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if d.State() != StateDetecting {
			if d.State() == StateStopped {
				return
			}
			continue // paused
		}

		distribution, err := source.Capture(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			if errors.Is(err, ErrNoFace) {
				d.mu.Lock()
				if d.state != StateStopped {
					d.dominant = nil
				}
				d.mu.Unlock()
				continue
			}
			if errors.Is(err, ErrPermissionDenied) {
				// The camera is gone; the session cannot keep detecting.
				utils.Sugar.Warnw("camera permission denied", "session_id", d.ID)
				d.mu.Lock()
				d.state = StateStopped
				d.dominant = nil
				d.lastErr = ErrPermissionDenied
				d.mu.Unlock()
				return
			}
			utils.Sugar.Warnw("frame capture failed", "session_id", d.ID, "error", err)
			continue
		}

		if _, _, err := d.Ingest(distribution); err != nil {
			if errors.Is(err, ErrSessionStopped) {
				return
			}
			if !errors.Is(err, errNotDetecting) {
				utils.Sugar.Warnw("auto-log tick failed", "session_id", d.ID, "error", err)
			}
		}
	}
}

func (d *DetectionSession) transition(from, to string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateStopped {
		return ErrSessionStopped
	}
	if d.state != from {
		return errors.New("invalid state transition")
	}
	d.state = to
	return nil
}

// DetectionManager tracks live sessions for the HTTP API.
type DetectionManager struct {
	svc *EmotionService

	mu       sync.Mutex
	sessions map[string]*DetectionSession
}

// NewDetectionManager creates an empty manager.
func NewDetectionManager(svc *EmotionService) *DetectionManager {
	return &DetectionManager{svc: svc, sessions: make(map[string]*DetectionSession)}
}

// Create registers a fresh session for a user.
func (m *DetectionManager) Create(userID uint, contextTag string) *DetectionSession {
	session := NewDetectionSession(m.svc, userID, contextTag)
	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()
	return session
}

// Get returns a session owned by the user, or nil.
func (m *DetectionManager) Get(sessionID string, userID uint) *DetectionSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok || session.UserID != userID {
		return nil
	}
	return session
}

// Remove stops and forgets a session.
func (m *DetectionManager) Remove(sessionID string, userID uint) {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	if ok && session.UserID == userID {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()
	if ok && session.UserID == userID {
		session.Stop()
	}
}
