package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

// throttledEmotionService never persists, so sessions can be exercised
// without a database.
func throttledEmotionService() *EmotionService {
	now := int64(1_700_000_000_000)
	return &EmotionService{
		lastLogged: map[uint]int64{1: now},
		nowMs:      func() int64 { return now },
	}
}

func readySession(t *testing.T) *DetectionSession {
	t.Helper()
	session := NewDetectionSession(throttledEmotionService(), 1, "widget")
	if err := session.BeginModelLoad(); err != nil {
		t.Fatalf("BeginModelLoad: %v", err)
	}
	if err := session.ModelReady(); err != nil {
		t.Fatalf("ModelReady: %v", err)
	}
	return session
}

func TestSessionLifecycle(t *testing.T) {
	session := NewDetectionSession(throttledEmotionService(), 1, "widget")
	if session.State() != StateIdle {
		t.Fatalf("initial state = %s, want idle", session.State())
	}

	steps := []struct {
		name string
		do   func() error
		want string
	}{
		{"BeginModelLoad", session.BeginModelLoad, StateModelLoading},
		{"ModelReady", session.ModelReady, StateReady},
		{"Start", func() error { return session.Start(context.Background(), nil) }, StateDetecting},
		{"Pause", session.Pause, StatePaused},
		{"Resume", session.Resume, StateDetecting},
	}
	for _, step := range steps {
		if err := step.do(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if session.State() != step.want {
			t.Fatalf("after %s state = %s, want %s", step.name, session.State(), step.want)
		}
	}

	session.Stop()
	if session.State() != StateStopped {
		t.Fatalf("after Stop state = %s, want stopped", session.State())
	}
	if session.Dominant() != nil {
		t.Error("Dominant not cleared by Stop")
	}
}

func TestSessionInvalidTransitions(t *testing.T) {
	session := NewDetectionSession(throttledEmotionService(), 1, "widget")

	if err := session.ModelReady(); err == nil {
		t.Error("ModelReady from idle succeeded")
	}
	if err := session.Start(context.Background(), nil); err == nil {
		t.Error("Start from idle succeeded")
	}
	if err := session.Pause(); err == nil {
		t.Error("Pause from idle succeeded")
	}
}

func TestSessionStopIsTerminal(t *testing.T) {
	session := readySession(t)
	session.Stop()
	session.Stop() // idempotent

	if err := session.Start(context.Background(), nil); !errors.Is(err, ErrSessionStopped) {
		t.Errorf("Start after stop err = %v, want ErrSessionStopped", err)
	}
	if err := session.Pause(); !errors.Is(err, ErrSessionStopped) {
		t.Errorf("Pause after stop err = %v, want ErrSessionStopped", err)
	}
	if _, _, err := session.Ingest(map[string]float64{"happy": 0.9}); !errors.Is(err, ErrSessionStopped) {
		t.Errorf("Ingest after stop err = %v, want ErrSessionStopped", err)
	}
}

func TestSessionIngest(t *testing.T) {
	session := readySession(t)

	if _, _, err := session.Ingest(map[string]float64{"happy": 0.9}); err == nil {
		t.Fatal("Ingest before Start succeeded")
	}

	if err := session.Start(context.Background(), nil); err != nil {
		t.Fatalf("Start: %v", err)
	}

	dominant, persisted, err := session.Ingest(map[string]float64{"happy": 0.9, "sad": 0.1})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if persisted {
		t.Error("persisted = true while throttled")
	}
	if dominant == nil || dominant.Name != "Happy" || dominant.Confidence != 90 {
		t.Errorf("dominant = %+v, want Happy/90", dominant)
	}
	if got := session.Dominant(); got == nil || got.Name != "Happy" {
		t.Errorf("session.Dominant() = %+v, want Happy", got)
	}

	// An empty distribution means no face: display clears.
	if _, _, err := session.Ingest(nil); err != nil {
		t.Fatalf("Ingest(nil): %v", err)
	}
	if session.Dominant() != nil {
		t.Error("Dominant not cleared on no-face tick")
	}

	if err := session.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if _, _, err := session.Ingest(map[string]float64{"happy": 0.9}); err == nil {
		t.Error("Ingest while paused succeeded")
	}
}

func TestDetectionManager(t *testing.T) {
	manager := NewDetectionManager(throttledEmotionService())

	session := manager.Create(1, "chat")
	if session.ContextTag != "chat" {
		t.Errorf("ContextTag = %q, want chat", session.ContextTag)
	}

	if got := manager.Get(session.ID, 1); got != session {
		t.Error("Get did not return the created session")
	}
	if got := manager.Get(session.ID, 2); got != nil {
		t.Error("Get returned a session owned by another user")
	}
	if got := manager.Get("missing", 1); got != nil {
		t.Error("Get returned a session for an unknown id")
	}

	manager.Remove(session.ID, 1)
	if got := manager.Get(session.ID, 1); got != nil {
		t.Error("session still present after Remove")
	}
	if session.State() != StateStopped {
		t.Errorf("removed session state = %s, want stopped", session.State())
	}
}

type fakeFrameSource struct {
	frames chan map[string]float64
	err    error
	closed chan struct{}
}

func (f *fakeFrameSource) Capture(ctx context.Context) (map[string]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	select {
	case frame := <-f.frames:
		return frame, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeFrameSource) Close() error {
	close(f.closed)
	return nil
}

func TestSessionLoopStop(t *testing.T) {
	session := readySession(t)
	session.interval = time.Millisecond

	source := &fakeFrameSource{
		frames: make(chan map[string]float64),
		closed: make(chan struct{}),
	}
	if err := session.Start(context.Background(), source); err != nil {
		t.Fatalf("Start: %v", err)
	}

	session.Stop()
	if session.State() != StateStopped {
		t.Fatalf("state = %s, want stopped", session.State())
	}

	select {
	case <-source.closed:
	case <-time.After(time.Second):
		t.Fatal("frame source not closed after Stop")
	}
}

func TestSessionLoopPermissionDenied(t *testing.T) {
	session := readySession(t)
	session.interval = time.Millisecond

	source := &fakeFrameSource{
		err:    ErrPermissionDenied,
		closed: make(chan struct{}),
	}
	if err := session.Start(context.Background(), source); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-source.closed:
	case <-time.After(time.Second):
		t.Fatal("loop did not shut down on permission denial")
	}
	if session.State() != StateStopped {
		t.Errorf("state = %s, want stopped after permission denial", session.State())
	}
	if !errors.Is(session.LastError(), ErrPermissionDenied) {
		t.Errorf("LastError() = %v, want ErrPermissionDenied", session.LastError())
	}
}

func TestDenyCamera(t *testing.T) {
	session := readySession(t)

	session.DenyCamera()
	if session.State() != StateStopped {
		t.Fatalf("state = %s, want stopped", session.State())
	}
	if !errors.Is(session.LastError(), ErrPermissionDenied) {
		t.Errorf("LastError() = %v, want ErrPermissionDenied", session.LastError())
	}

	// Denial after the session already ended changes nothing.
	done := readySession(t)
	done.Stop()
	done.DenyCamera()
	if done.LastError() != nil {
		t.Errorf("LastError() after clean stop = %v, want nil", done.LastError())
	}
}

func TestStopLeavesNoError(t *testing.T) {
	session := readySession(t)
	session.Stop()
	if session.LastError() != nil {
		t.Errorf("LastError() = %v, want nil after clean Stop", session.LastError())
	}
}

func TestSessionDefaultContextTag(t *testing.T) {
	session := NewDetectionSession(throttledEmotionService(), 1, "")
	if session.ContextTag != "general" {
		t.Errorf("ContextTag = %q, want general", session.ContextTag)
	}
	if session.ID == "" {
		t.Error("session ID is empty")
	}
}
