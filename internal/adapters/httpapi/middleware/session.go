package middleware

import (
	"context"
	"net/http"
	"time"

	"postboard/internal/core/board"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// CookieName carries the visitor's board id.
	CookieName = "postboard_session"
	// BoardIDKey is the gin context key holding the board id.
	BoardIDKey = "boardID"
)

type BoardOpener interface {
	Open(ctx context.Context, id string) (*board.Board, error)
}

// Session resolves the visitor's board from the session cookie, creating a
// new board (and cookie) when the cookie is missing or stale.
func Session(opener BoardOpener, maxAge time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, _ := c.Cookie(CookieName)

		b, err := opener.Open(c.Request.Context(), current)
		if err != nil {
			logger.Error("could not open board", zap.String("cookie", current), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not open board"})
			return
		}

		if b.ID != current {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CookieName, b.ID, int(maxAge.Seconds()), "/", "", false, true)
		}
		c.Set(BoardIDKey, b.ID)
		c.Next()
	}
}
