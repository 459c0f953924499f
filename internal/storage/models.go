package storage

// DefaultCategory is assigned to questions stored without one. Matches the
// schema-level column default.
const DefaultCategory = "科学"

// Question represents a user-submitted question.
// Answered flips to true only after an answer row was durably stored.
type Question struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // Unix seconds
	Category  string `json:"category"`
	Answered  bool   `json:"answered"`
}

// Answer represents a stored answer for a question.
// RelatedQuestions holds at most 3 entries; Experiments and Games are
// unbounded by contract (in practice bounded by what the model returns).
type Answer struct {
	ID               int64    `json:"id"`
	QuestionID       int64    `json:"question_id"`
	Content          string   `json:"content"`
	ImageURL         string   `json:"image_url,omitempty"` // unused by the fetch pipeline
	RelatedQuestions []string `json:"related_questions"`
	Experiments      []string `json:"experiments"`
	Games            []string `json:"games"`
	CreatedAt        int64    `json:"created_at"` // Unix seconds
}
