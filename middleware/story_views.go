package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rizqiaditya/stories/utils"
)

// ViewRecorder persists one view of a story.
type ViewRecorder interface {
	RecordView(ctx context.Context, storyID string, at time.Time) error
}

// StoryViewRecorder counts successful reads of the story named by the :id path parameter.
func StoryViewRecorder(rec ViewRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != "GET" {
			return
		}
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}
		id := c.Param("id")
		if id == "" {
			return
		}
		if err := rec.RecordView(c.Request.Context(), id, time.Now()); err != nil {
			utils.Sugar.Warnf("record view for story %s failed: %v", id, err)
		}
	}
}
