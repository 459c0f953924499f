// Package answer coordinates the question-to-answer pipeline: load the
// question, call the model, recover structured content, persist the answer,
// and mark the question answered. One invocation is one fetch cycle; there
// is no internal retry.
package answer

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/zzy/curiosity-engine-go/internal/errors"
	"github.com/zzy/curiosity-engine-go/internal/extract"
	"github.com/zzy/curiosity-engine-go/internal/keyword"
	"github.com/zzy/curiosity-engine-go/internal/llm"
	"github.com/zzy/curiosity-engine-go/internal/metrics"
	"github.com/zzy/curiosity-engine-go/internal/related"
	"github.com/zzy/curiosity-engine-go/internal/storage"
)

// DefaultMaxQuestionLength bounds submitted question content in runes.
const DefaultMaxQuestionLength = 500

// Service runs fetch cycles against the persistence and LLM collaborators.
type Service struct {
	questions storage.QuestionRepository
	answers   storage.AnswerRepository
	client    llm.ChatClient
	keywords  *keyword.Extractor
	generator *related.Generator
	metrics   *metrics.Metrics

	// Concurrent fetches for the same question id are coalesced so one
	// question cannot accumulate duplicate answer rows from double taps.
	group singleflight.Group

	maxQuestionLen int
}

// NewService creates the pipeline service. metrics may be nil.
func NewService(questions storage.QuestionRepository, answers storage.AnswerRepository,
	client llm.ChatClient, m *metrics.Metrics, maxQuestionLen int) *Service {
	if maxQuestionLen <= 0 {
		maxQuestionLen = DefaultMaxQuestionLength
	}
	return &Service{
		questions:      questions,
		answers:        answers,
		client:         client,
		keywords:       keyword.NewExtractor(keyword.Chinese()),
		generator:      related.NewGenerator(),
		metrics:        m,
		maxQuestionLen: maxQuestionLen,
	}
}

// Submit validates and stores a new question, then runs a fetch cycle for
// it. The question row survives a failed fetch so the caller can retry.
func (s *Service) Submit(ctx context.Context, content, category string) (*storage.Question, int64, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, 0, apperrors.NewValidationError("content", "question content is empty")
	}
	if utf8.RuneCountInString(content) > s.maxQuestionLen {
		return nil, 0, apperrors.NewValidationError("content", "question content too long")
	}
	if category == "" {
		category = storage.DefaultCategory
	}

	q := &storage.Question{
		Content:   content,
		Timestamp: time.Now().Unix(),
		Category:  category,
	}
	id, err := s.questions.InsertQuestion(ctx, q)
	if err != nil {
		return nil, 0, apperrors.NewPersistenceError("insert question", err)
	}
	q.ID = id

	answerID, err := s.Fetch(ctx, id)
	return q, answerID, err
}

// Fetch runs one fetch cycle for the question id and returns the persisted
// answer's id. Concurrent calls for the same id share one cycle.
func (s *Service) Fetch(ctx context.Context, questionID int64) (int64, error) {
	key := strconv.FormatInt(questionID, 10)
	result, err, shared := s.group.Do(key, func() (any, error) {
		return s.fetch(ctx, questionID)
	})
	if shared && s.metrics != nil {
		s.metrics.SingleflightDedupTotal.Inc()
	}
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

func (s *Service) fetch(ctx context.Context, questionID int64) (answerID int64, err error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.FetchRequestsTotal.WithLabelValues(fetchStatus(err)).Inc()
			s.metrics.FetchDurationSeconds.Observe(time.Since(start).Seconds())
		}
	}()

	question, err := s.questions.GetQuestionByID(ctx, questionID)
	if err != nil {
		return 0, apperrors.NewPersistenceError("get question", err)
	}
	if question == nil {
		return 0, apperrors.ErrQuestionNotFound
	}

	content, err := s.complete(ctx, question.Content)
	if err != nil {
		return 0, err
	}

	res := extract.Extract(content)
	if s.metrics != nil {
		s.metrics.ObserveExtraction(
			string(res.Strategies.Answer),
			string(res.Strategies.Related),
			string(res.Strategies.Experiments),
			string(res.Strategies.Games))
	}

	// The answer row must exist before the flag flips. A failure here
	// leaves the question unanswered and the cycle retryable.
	answerID, err = s.answers.InsertAnswer(ctx, &storage.Answer{
		QuestionID:       questionID,
		Content:          res.Content.Answer,
		RelatedQuestions: res.Content.RelatedQuestions,
		Experiments:      res.Content.Experiments,
		Games:            res.Content.Games,
	})
	if err != nil {
		return 0, apperrors.NewPersistenceError("insert answer", err)
	}

	if err := s.questions.SetQuestionAnswered(ctx, questionID, true); err != nil {
		// The answer row is already in place; readers that check for an
		// existing answer regardless of the flag still see it.
		return 0, apperrors.NewPersistenceError("update answered flag", err)
	}

	slog.InfoContext(ctx, "fetch cycle completed",
		"question_id", questionID,
		"answer_id", answerID,
		"related_strategy", res.Strategies.Related,
		"duration_ms", time.Since(start).Milliseconds())
	return answerID, nil
}

func (s *Service) complete(ctx context.Context, question string) (string, error) {
	start := time.Now()
	content, err := s.client.Complete(ctx, question)
	if s.metrics != nil {
		provider := string(s.client.Provider())
		status := "success"
		if err != nil {
			status = "error"
		}
		s.metrics.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
		s.metrics.LLMDurationSeconds.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	}
	return content, err
}

// Load returns the stored answer for a question. When the stored answer has
// no related questions, follow-ups are synthesized for display from the
// question's keywords; the stored row is left untouched.
func (s *Service) Load(ctx context.Context, questionID int64) (*storage.Answer, error) {
	question, err := s.questions.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("get question", err)
	}
	if question == nil {
		return nil, apperrors.ErrQuestionNotFound
	}

	a, err := s.answers.GetAnswerByQuestionID(ctx, questionID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("get answer", err)
	}
	if a == nil {
		return nil, apperrors.ErrAnswerNotFound
	}

	if len(a.RelatedQuestions) == 0 {
		keywords := s.keywords.Extract(question.Content)
		a.RelatedQuestions = s.generator.Generate(question.Content, keywords)
	}
	return a, nil
}

// fetchStatus maps a cycle outcome onto a metric label.
func fetchStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, apperrors.ErrQuestionNotFound):
		return "question_not_found"
	case errors.Is(err, apperrors.ErrEmptyResponse):
		return "empty_response"
	default:
		var (
			transportErr   *apperrors.TransportError
			remoteErr      *apperrors.RemoteError
			persistenceErr *apperrors.PersistenceError
		)
		switch {
		case errors.As(err, &transportErr):
			return "transport_error"
		case errors.As(err, &remoteErr):
			return "remote_error"
		case errors.As(err, &persistenceErr):
			return "persistence_error"
		}
		return "error"
	}
}
