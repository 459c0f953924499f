package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// slowQueryThreshold is the duration above which a query is logged as slow.
const slowQueryThreshold = 100 * time.Millisecond

// InsertQuestion inserts a question and returns the generated id.
// When q.ID is non-zero the row is replaced (replace-on-conflict by id).
func (db *DB) InsertQuestion(ctx context.Context, q *Question) (int64, error) {
	start := time.Now()

	var (
		res sql.Result
		err error
	)
	if q.ID != 0 {
		res, err = db.conn.ExecContext(ctx,
			`INSERT OR REPLACE INTO questions (id, content, timestamp, category, answered) VALUES (?, ?, ?, ?, ?)`,
			q.ID, q.Content, q.Timestamp, q.Category, q.Answered)
	} else {
		res, err = db.conn.ExecContext(ctx,
			`INSERT INTO questions (content, timestamp, category, answered) VALUES (?, ?, ?, ?)`,
			q.Content, q.Timestamp, q.Category, q.Answered)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to insert question", "error", err)
		return 0, fmt.Errorf("insert question: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert question id: %w", err)
	}
	if q.ID != 0 {
		id = q.ID
	}

	warnSlow(ctx, "InsertQuestion", start)
	return id, nil
}

// GetQuestionByID retrieves a question by id. Returns (nil, nil) when absent.
func (db *DB) GetQuestionByID(ctx context.Context, id int64) (*Question, error) {
	var q Question
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, content, timestamp, category, answered FROM questions WHERE id = ?`, id).
		Scan(&q.ID, &q.Content, &q.Timestamp, &q.Category, &q.Answered)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query question", "question_id", id, "error", err)
		return nil, fmt.Errorf("query question: %w", err)
	}
	return &q, nil
}

// UpdateQuestion updates all mutable fields of a question.
func (db *DB) UpdateQuestion(ctx context.Context, q *Question) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE questions SET content = ?, timestamp = ?, category = ?, answered = ? WHERE id = ?`,
		q.Content, q.Timestamp, q.Category, q.Answered, q.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to update question", "question_id", q.ID, "error", err)
		return fmt.Errorf("update question: %w", err)
	}
	return nil
}

// SetQuestionAnswered flips the answered flag for a question.
func (db *DB) SetQuestionAnswered(ctx context.Context, id int64, answered bool) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE questions SET answered = ? WHERE id = ?`, answered, id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to update answered flag", "question_id", id, "error", err)
		return fmt.Errorf("update answered flag: %w", err)
	}
	return nil
}

// DeleteQuestion removes a question; its answers cascade via the foreign key.
func (db *DB) DeleteQuestion(ctx context.Context, id int64) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete question", "question_id", id, "error", err)
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}

// ListQuestions retrieves all questions ordered newest first.
func (db *DB) ListQuestions(ctx context.Context) ([]Question, error) {
	return db.queryQuestions(ctx,
		`SELECT id, content, timestamp, category, answered FROM questions ORDER BY timestamp DESC, id DESC`)
}

// ListQuestionsSince retrieves questions with timestamp >= start, newest first.
func (db *DB) ListQuestionsSince(ctx context.Context, start int64) ([]Question, error) {
	return db.queryQuestions(ctx,
		`SELECT id, content, timestamp, category, answered FROM questions WHERE timestamp >= ? ORDER BY timestamp DESC, id DESC`,
		start)
}

// ListQuestionsBetween retrieves questions with start <= timestamp < end, newest first.
func (db *DB) ListQuestionsBetween(ctx context.Context, start, end int64) ([]Question, error) {
	return db.queryQuestions(ctx,
		`SELECT id, content, timestamp, category, answered FROM questions WHERE timestamp >= ? AND timestamp < ? ORDER BY timestamp DESC, id DESC`,
		start, end)
}

// ListQuestionsBefore retrieves questions with timestamp < end, newest first.
func (db *DB) ListQuestionsBefore(ctx context.Context, end int64) ([]Question, error) {
	return db.queryQuestions(ctx,
		`SELECT id, content, timestamp, category, answered FROM questions WHERE timestamp < ? ORDER BY timestamp DESC, id DESC`,
		end)
}

// SearchQuestions searches question content by substring match, newest first.
func (db *DB) SearchQuestions(ctx context.Context, term string) ([]Question, error) {
	if len(term) > 100 {
		return nil, errors.New("search term too long")
	}

	start := time.Now()
	pattern := "%" + sanitizeSearchTerm(term) + "%"
	questions, err := db.queryQuestions(ctx,
		`SELECT id, content, timestamp, category, answered FROM questions WHERE content LIKE ? ESCAPE '\' ORDER BY timestamp DESC, id DESC`,
		pattern)
	if err != nil {
		return nil, err
	}

	warnSlow(ctx, "SearchQuestions", start)
	return questions, nil
}

func (db *DB) queryQuestions(ctx context.Context, query string, args ...any) ([]Question, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query questions", "error", err)
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var questions []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Content, &q.Timestamp, &q.Category, &q.Answered); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return questions, nil
}

// CountQuestions returns the total number of stored questions.
func (db *DB) CountQuestions(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

// InsertAnswer inserts an answer and returns the generated id.
// When a.ID is non-zero the row is replaced (replace-on-conflict by id).
func (db *DB) InsertAnswer(ctx context.Context, a *Answer) (int64, error) {
	related, err := json.Marshal(emptyIfNil(a.RelatedQuestions))
	if err != nil {
		return 0, fmt.Errorf("marshal related questions: %w", err)
	}
	experiments, err := json.Marshal(emptyIfNil(a.Experiments))
	if err != nil {
		return 0, fmt.Errorf("marshal experiments: %w", err)
	}
	games, err := json.Marshal(emptyIfNil(a.Games))
	if err != nil {
		return 0, fmt.Errorf("marshal games: %w", err)
	}

	createdAt := a.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}

	var imageURL any
	if a.ImageURL != "" {
		imageURL = a.ImageURL
	}

	start := time.Now()
	var res sql.Result
	if a.ID != 0 {
		res, err = db.conn.ExecContext(ctx,
			`INSERT OR REPLACE INTO answers (id, question_id, content, image_url, related_questions, experiments, games, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.QuestionID, a.Content, imageURL, string(related), string(experiments), string(games), createdAt)
	} else {
		res, err = db.conn.ExecContext(ctx,
			`INSERT INTO answers (question_id, content, image_url, related_questions, experiments, games, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.QuestionID, a.Content, imageURL, string(related), string(experiments), string(games), createdAt)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to insert answer", "question_id", a.QuestionID, "error", err)
		return 0, fmt.Errorf("insert answer: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert answer id: %w", err)
	}
	if a.ID != 0 {
		id = a.ID
	}

	warnSlow(ctx, "InsertAnswer", start)
	return id, nil
}

// GetAnswerByID retrieves an answer by id. Returns (nil, nil) when absent.
func (db *DB) GetAnswerByID(ctx context.Context, id int64) (*Answer, error) {
	return db.queryAnswer(ctx,
		`SELECT id, question_id, content, image_url, related_questions, experiments, games, created_at FROM answers WHERE id = ?`,
		id)
}

// GetAnswerByQuestionID retrieves the most recent answer for a question.
// Returns (nil, nil) when the question has no stored answer.
func (db *DB) GetAnswerByQuestionID(ctx context.Context, questionID int64) (*Answer, error) {
	return db.queryAnswer(ctx,
		`SELECT id, question_id, content, image_url, related_questions, experiments, games, created_at FROM answers WHERE question_id = ? ORDER BY id DESC LIMIT 1`,
		questionID)
}

func (db *DB) queryAnswer(ctx context.Context, query string, args ...any) (*Answer, error) {
	var (
		a           Answer
		imageURL    sql.NullString
		related     string
		experiments string
		games       string
	)
	err := db.conn.QueryRowContext(ctx, query, args...).
		Scan(&a.ID, &a.QuestionID, &a.Content, &imageURL, &related, &experiments, &games, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query answer", "error", err)
		return nil, fmt.Errorf("query answer: %w", err)
	}

	a.ImageURL = imageURL.String
	if err := json.Unmarshal([]byte(related), &a.RelatedQuestions); err != nil {
		return nil, fmt.Errorf("unmarshal related questions: %w", err)
	}
	if err := json.Unmarshal([]byte(experiments), &a.Experiments); err != nil {
		return nil, fmt.Errorf("unmarshal experiments: %w", err)
	}
	if err := json.Unmarshal([]byte(games), &a.Games); err != nil {
		return nil, fmt.Errorf("unmarshal games: %w", err)
	}
	return &a, nil
}

// CountAnswers returns the total number of stored answers.
func (db *DB) CountAnswers(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM answers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count answers: %w", err)
	}
	return count, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func warnSlow(ctx context.Context, operation string, start time.Time) {
	if duration := time.Since(start); duration > slowQueryThreshold {
		slog.WarnContext(ctx, "slow database operation",
			"operation", operation,
			"duration_ms", duration.Milliseconds())
	}
}
