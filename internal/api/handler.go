// Package api exposes the question and answer pipeline over HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zzy/curiosity-engine-go/internal/answer"
	apperrors "github.com/zzy/curiosity-engine-go/internal/errors"
	"github.com/zzy/curiosity-engine-go/internal/logger"
	"github.com/zzy/curiosity-engine-go/internal/metrics"
	"github.com/zzy/curiosity-engine-go/internal/ratelimit"
	"github.com/zzy/curiosity-engine-go/internal/search"
	"github.com/zzy/curiosity-engine-go/internal/sentry"
	"github.com/zzy/curiosity-engine-go/internal/share"
	"github.com/zzy/curiosity-engine-go/internal/storage"
	"github.com/zzy/curiosity-engine-go/internal/suggest"
)

// searchLimit caps the number of search hits returned.
const searchLimit = 20

// Handler carries the dependencies for all API routes.
type Handler struct {
	svc       *answer.Service
	questions storage.QuestionRepository
	answers   storage.AnswerRepository
	index     *search.Index
	pool      *suggest.Pool
	limiter   *ratelimit.KeyedLimiter
	metrics   *metrics.Metrics
	log       *logger.Logger
}

// NewHandler creates the API handler. index, limiter, and metrics may be nil.
func NewHandler(svc *answer.Service, questions storage.QuestionRepository, answers storage.AnswerRepository,
	index *search.Index, pool *suggest.Pool, limiter *ratelimit.KeyedLimiter,
	m *metrics.Metrics, log *logger.Logger) *Handler {
	return &Handler{
		svc:       svc,
		questions: questions,
		answers:   answers,
		index:     index,
		pool:      pool,
		limiter:   limiter,
		metrics:   m,
		log:       log,
	}
}

// Register mounts all API routes on the group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/questions", h.SubmitQuestion)
	rg.GET("/questions", h.ListQuestions)
	rg.GET("/questions/:id", h.GetQuestion)
	rg.DELETE("/questions/:id", h.DeleteQuestion)
	rg.POST("/questions/:id/retry", h.RetryQuestion)
	rg.GET("/questions/:id/share", h.ShareQuestion)
	rg.GET("/suggestions", h.GetSuggestions)
}

type submitRequest struct {
	Content  string `json:"content" binding:"required"`
	Category string `json:"category"`
}

// SubmitQuestion stores a new question and runs a fetch cycle for it. The
// question survives a failed fetch, so the response always carries its id.
func (h *Handler) SubmitQuestion(c *gin.Context) {
	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		h.countError("rate_limit")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many questions, slow down"})
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.countError("validation")
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	question, answerID, err := h.svc.Submit(c.Request.Context(), req.Content, req.Category)
	if err != nil {
		if question != nil {
			// Stored but unanswered. The client retries via the retry route.
			h.respondFetchError(c, question.ID, err)
			return
		}
		h.respondError(c, err)
		return
	}

	h.rebuildIndex(c)

	ans, err := h.answers.GetAnswerByID(c.Request.Context(), answerID)
	if err != nil {
		h.respondError(c, apperrors.NewPersistenceError("get answer", err))
		return
	}
	question.Answered = true

	c.JSON(http.StatusCreated, gin.H{
		"question": question,
		"answer":   ans,
	})
}

// ListQuestions returns question history. With ?q= it searches instead;
// with ?group=1 it returns today/yesterday/earlier buckets.
func (h *Handler) ListQuestions(c *gin.Context) {
	if query := c.Query("q"); query != "" {
		h.searchQuestions(c, query)
		return
	}
	if c.Query("group") == "1" {
		h.groupedQuestions(c)
		return
	}

	questions, err := h.questions.ListQuestions(c.Request.Context())
	if err != nil {
		h.respondError(c, apperrors.NewPersistenceError("list questions", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": emptyIfNilQuestions(questions)})
}

// GetQuestion returns one question and its answer. A question that has no
// stored answer yet is returned with a null answer.
func (h *Handler) GetQuestion(c *gin.Context) {
	id, ok := h.questionID(c)
	if !ok {
		return
	}

	question, err := h.questions.GetQuestionByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, apperrors.NewPersistenceError("get question", err))
		return
	}
	if question == nil {
		h.respondError(c, apperrors.ErrQuestionNotFound)
		return
	}

	ans, err := h.svc.Load(c.Request.Context(), id)
	if err != nil && !errors.Is(err, apperrors.ErrAnswerNotFound) {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"question": question,
		"answer":   ans, // nil when not yet answered
	})
}

// DeleteQuestion removes a question; stored answers cascade.
func (h *Handler) DeleteQuestion(c *gin.Context) {
	id, ok := h.questionID(c)
	if !ok {
		return
	}

	question, err := h.questions.GetQuestionByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, apperrors.NewPersistenceError("get question", err))
		return
	}
	if question == nil {
		h.respondError(c, apperrors.ErrQuestionNotFound)
		return
	}

	if err := h.questions.DeleteQuestion(c.Request.Context(), id); err != nil {
		h.respondError(c, apperrors.NewPersistenceError("delete question", err))
		return
	}

	h.rebuildIndex(c)
	c.Status(http.StatusNoContent)
}

// RetryQuestion reruns the fetch cycle for an existing question.
func (h *Handler) RetryQuestion(c *gin.Context) {
	id, ok := h.questionID(c)
	if !ok {
		return
	}

	answerID, err := h.svc.Fetch(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	ans, err := h.answers.GetAnswerByID(c.Request.Context(), answerID)
	if err != nil {
		h.respondError(c, apperrors.NewPersistenceError("get answer", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": ans})
}

// ShareQuestion renders the question and answer as shareable text.
func (h *Handler) ShareQuestion(c *gin.Context) {
	id, ok := h.questionID(c)
	if !ok {
		return
	}

	question, err := h.questions.GetQuestionByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, apperrors.NewPersistenceError("get question", err))
		return
	}
	if question == nil {
		h.respondError(c, apperrors.ErrQuestionNotFound)
		return
	}

	ans, err := h.svc.Load(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	text, err := share.Text(question, ans)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// GetSuggestions returns random starter questions.
func (h *Handler) GetSuggestions(c *gin.Context) {
	count := suggest.DefaultCount
	if raw := c.Query("count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 20 {
			count = n
		}
	}

	questions := h.pool.Random(count, c.Query("category"))
	c.JSON(http.StatusOK, gin.H{"suggestions": questions})
}

func (h *Handler) searchQuestions(c *gin.Context, query string) {
	// BM25 over the in-memory index first; substring search against the
	// store when the index has nothing for us.
	if h.index != nil && h.index.Size() > 0 {
		results, err := h.index.Search(query, searchLimit)
		if err == nil {
			questions := make([]storage.Question, 0, len(results))
			for _, r := range results {
				questions = append(questions, r.Question)
			}
			c.JSON(http.StatusOK, gin.H{"questions": questions})
			return
		}
		h.log.WithError(err).Warn("index search failed, falling back to store")
	}

	questions, err := h.questions.SearchQuestions(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, apperrors.NewPersistenceError("search questions", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": emptyIfNilQuestions(questions)})
}

func (h *Handler) questionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.countError("validation")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question id"})
		return 0, false
	}
	return id, true
}

// rebuildIndex refreshes the search index after a data change. Failure only
// degrades search, so it is logged and not surfaced.
func (h *Handler) rebuildIndex(c *gin.Context) {
	if h.index == nil {
		return
	}
	questions, err := h.questions.ListQuestions(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Warn("listing questions for index rebuild failed")
		return
	}
	if err := h.index.Rebuild(questions); err != nil {
		h.log.WithError(err).Warn("search index rebuild failed")
	}
}

// respondFetchError reports a failed fetch for a question that was stored.
func (h *Handler) respondFetchError(c *gin.Context, questionID int64, err error) {
	status, errType := classify(err)
	h.countError(errType)
	if status >= http.StatusInternalServerError {
		sentry.CaptureException(c.Request.Context(), err)
		h.log.WithError(err).WithField("question_id", questionID).Error("fetch failed after submit")
	}
	c.JSON(status, gin.H{
		"error":       apperrors.GetUserMessage(err),
		"question_id": questionID,
	})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status, errType := classify(err)
	h.countError(errType)
	if status >= http.StatusInternalServerError {
		sentry.CaptureException(c.Request.Context(), err)
		h.log.WithError(err).Error("request failed")
	}
	c.JSON(status, gin.H{"error": apperrors.GetUserMessage(err)})
}

func (h *Handler) countError(errType string) {
	if h.metrics != nil {
		h.metrics.HTTPErrorsTotal.WithLabelValues(errType).Inc()
	}
}

// classify maps a pipeline error onto an HTTP status and a metric label.
func classify(err error) (int, string) {
	var (
		validationErr  *apperrors.ValidationError
		transportErr   *apperrors.TransportError
		remoteErr      *apperrors.RemoteError
		persistenceErr *apperrors.PersistenceError
	)
	switch {
	case errors.Is(err, apperrors.ErrQuestionNotFound),
		errors.Is(err, apperrors.ErrAnswerNotFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &validationErr), errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, apperrors.ErrRateLimitExceeded):
		return http.StatusTooManyRequests, "rate_limit"
	case errors.As(err, &transportErr), errors.Is(err, apperrors.ErrEmptyResponse):
		return http.StatusBadGateway, "upstream"
	case errors.As(err, &remoteErr):
		return http.StatusBadGateway, "upstream"
	case errors.As(err, &persistenceErr):
		return http.StatusInternalServerError, "internal"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func emptyIfNilQuestions(questions []storage.Question) []storage.Question {
	if questions == nil {
		return []storage.Question{}
	}
	return questions
}
