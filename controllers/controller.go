package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bhishma-ai/bhishma/middleware"
)

// getUserID extracts the authenticated user id stored by the auth middleware.
func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// parseLimit parses a limit query parameter with a default and an upper cap.
func parseLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
