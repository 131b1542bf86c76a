package utils

import "testing"

func TestLoggerUsableBeforeInit(t *testing.T) {
	if Logger == nil || Sugar == nil {
		t.Fatal("package loggers must never be nil")
	}
	// Must not panic even though InitLogger has not run.
	Sugar.Infow("pre-init log", "key", "value")
	Sugar.Warnw("pre-init warn", "error", "none")
	Logger.Info("pre-init structured log")
}
