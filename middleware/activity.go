package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bhishma-ai/bhishma/services"
	"github.com/bhishma-ai/bhishma/utils"
)

// ActivityRecorder marks the authenticated user as active today after any
// successful mutating request. The recorder feeds the streak engine, so only
// requests that actually changed something count.
func ActivityRecorder(rewards *services.RewardService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		if ctx.Request.Method == http.MethodGet || ctx.Request.Method == http.MethodOptions {
			return
		}
		if ctx.Writer.Status() >= http.StatusBadRequest {
			return
		}

		v, ok := ctx.Get(ContextUserIDKey)
		if !ok {
			return
		}
		userID, ok := v.(uint)
		if !ok {
			return
		}

		go func() {
			if _, err := rewards.RecordDailyActivity(userID); err != nil {
				utils.Sugar.Warnw("record daily activity", "user_id", userID, "error", err)
			}
		}()
	}
}
