package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/zzy/curiosity-engine-go/internal/errors"
)

// groupedQuestions buckets history into today, yesterday, and earlier by
// the server's local midnight boundaries.
func (h *Handler) groupedQuestions(c *gin.Context) {
	now := time.Now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Unix()
	startOfYesterday := startOfToday - int64((24 * time.Hour).Seconds())

	ctx := c.Request.Context()

	today, err := h.questions.ListQuestionsSince(ctx, startOfToday)
	if err != nil {
		h.respondError(c, apperrors.NewPersistenceError("list today", err))
		return
	}
	yesterday, err := h.questions.ListQuestionsBetween(ctx, startOfYesterday, startOfToday)
	if err != nil {
		h.respondError(c, apperrors.NewPersistenceError("list yesterday", err))
		return
	}
	earlier, err := h.questions.ListQuestionsBefore(ctx, startOfYesterday)
	if err != nil {
		h.respondError(c, apperrors.NewPersistenceError("list earlier", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"today":     emptyIfNilQuestions(today),
		"yesterday": emptyIfNilQuestions(yesterday),
		"earlier":   emptyIfNilQuestions(earlier),
	})
}
