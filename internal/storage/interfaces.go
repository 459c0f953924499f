// Package storage provides repository interfaces for data access abstraction.
// These interfaces enable dependency inversion and facilitate testing by
// decoupling the fetch pipeline and HTTP handlers from the concrete store.
package storage

import (
	"context"
)

// QuestionRepository defines the interface for question data operations.
type QuestionRepository interface {
	InsertQuestion(ctx context.Context, q *Question) (int64, error)
	GetQuestionByID(ctx context.Context, id int64) (*Question, error)
	UpdateQuestion(ctx context.Context, q *Question) error
	SetQuestionAnswered(ctx context.Context, id int64, answered bool) error
	DeleteQuestion(ctx context.Context, id int64) error
	ListQuestions(ctx context.Context) ([]Question, error)
	ListQuestionsSince(ctx context.Context, start int64) ([]Question, error)
	ListQuestionsBetween(ctx context.Context, start, end int64) ([]Question, error)
	ListQuestionsBefore(ctx context.Context, end int64) ([]Question, error)
	SearchQuestions(ctx context.Context, term string) ([]Question, error)
	CountQuestions(ctx context.Context) (int, error)
}

// AnswerRepository defines the interface for answer data operations.
type AnswerRepository interface {
	InsertAnswer(ctx context.Context, a *Answer) (int64, error)
	GetAnswerByID(ctx context.Context, id int64) (*Answer, error)
	GetAnswerByQuestionID(ctx context.Context, questionID int64) (*Answer, error)
	CountAnswers(ctx context.Context) (int, error)
}
