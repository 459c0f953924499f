package storage

import (
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode and foreign keys are configured in db.go.
func InitSchema(db *sql.DB) error {
	if err := createQuestionsTable(db); err != nil {
		return err
	}
	return createAnswersTable(db)
}

func createQuestionsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		category TEXT NOT NULL DEFAULT '科学',
		answered INTEGER NOT NULL DEFAULT 0
	)`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create questions table: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_questions_timestamp ON questions(timestamp DESC)`); err != nil {
		return fmt.Errorf("failed to create questions timestamp index: %w", err)
	}
	return nil
}

func createAnswersTable(db *sql.DB) error {
	// related_questions, experiments and games are stored as JSON arrays,
	// mirroring how the mobile client serialized them.
	query := `
	CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		image_url TEXT,
		related_questions TEXT NOT NULL DEFAULT '[]',
		experiments TEXT NOT NULL DEFAULT '[]',
		games TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create answers table: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_answers_question_id ON answers(question_id)`); err != nil {
		return fmt.Errorf("failed to create answers question_id index: %w", err)
	}
	return nil
}
