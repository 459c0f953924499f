package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DB {
	t.Helper()
	db, err := NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insertTestQuestion(t *testing.T, db *DB, content string, timestamp int64) int64 {
	t.Helper()
	id, err := db.InsertQuestion(context.Background(), &Question{
		Content:   content,
		Timestamp: timestamp,
		Category:  DefaultCategory,
	})
	require.NoError(t, err)
	return id
}

func TestQuestionRoundTrip(t *testing.T) {
	t.Parallel()
	db := newTestStore(t)
	ctx := context.Background()

	id, err := db.InsertQuestion(ctx, &Question{
		Content:   "为什么天空是蓝色的？",
		Timestamp: 1700000000,
		Category:  "科学",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := db.GetQuestionByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "为什么天空是蓝色的？", got.Content)
	assert.Equal(t, int64(1700000000), got.Timestamp)
	assert.Equal(t, "科学", got.Category)
	assert.False(t, got.Answered)
}

func TestGetQuestionByIDMissing(t *testing.T) {
	t.Parallel()
	db := newTestStore(t)

	got, err := db.GetQuestionByID(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateQuestion(t *testing.T) {
	t.Parallel()
	db := newTestStore(t)
	ctx := context.Background()

	id := insertTestQuestion(t, db, "旧内容？", 100)

	require.NoError(t, db.UpdateQuestion(ctx, &Question{
		ID:        id,
		Content:   "新内容？",
		Timestamp: 200,
		Category:  "历史",
		Answered:  true,
	}))

	got, err := db.GetQuestionByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "新内容？", got.Content)
	assert.Equal(t, int64(200), got.Timestamp)
	assert.Equal(t, "历史", got.Category)
	assert.True(t, got.Answered)
}

func TestSetQuestionAnswered(t *testing.T) {
	t.Parallel()
	db := newTestStore(t)
	ctx := context.Background()

	id := insertTestQuestion(t, db, "问题？", 100)

	require.NoError(t, db.SetQuestionAnswered(ctx, id, true))
	got, err := db.GetQuestionByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Answered)

	require.NoError(t, db.SetQuestionAnswered(ctx, id, false))
	got, err = db.GetQuestionByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Answered)
}

func TestDeleteQuestionCascadesAnswers(t *testing.T) {
	t.Parallel()
	db := newTestStore(t)
	ctx := context.Background()

	id := insertTestQuestion(t, db, "问题？", 100)
	answerID, err := db.InsertAnswer(ctx, &Answer{QuestionID: id, Content: "回答"})
	require.NoError(t, err)

	require.NoError(t, db.DeleteQuestion(ctx, id))

	q, err := db.GetQuestionByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, q)

	a, err := db.GetAnswerByID(ctx, answerID)
	require.NoError(t, err)
	assert.Nil(t, a, "answer should cascade with its question")
}

func TestListQuestionsOrdering(t *testing.T) {
	t.Parallel()
	db := newTestStore(t)
	ctx := context.Background()

	oldID := insertTestQuestion(t, db, "最早的问题？", 100)
	// Two rows share a timestamp; the later id wins the tie.
	midID := insertTestQuestion(t, db, "中间的问题？", 200)
	tieID := insertTestQuestion(t, db, "并列的问题？", 200)
	newID := insertTestQuestion(t, db, "最新的问题？", 300)

	got, err := db.ListQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 4)

	ids := []int64{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
	assert.Equal(t, []int64{newID, tieID, midID, oldID}, ids)
}

func TestListQuestionsTimeWindows(t *testing.T) {
	t.Parallel()
	db := newTestStore(t)
	ctx := context.Background()

	earlyID := insertTestQuestion(t, db, "早？", 100)
	boundaryID := insertTestQuestion(t, db, "边界？", 200)
	lateID := insertTestQuestion(t, db, "晚？", 300)

	since, err := db.ListQuestionsSince(ctx, 200)
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, lateID, since[0].ID)
	assert.Equal(t, boundaryID, since[1].ID, "start boundary is inclusive")

	between, err := db.ListQuestionsBetween(ctx, 100, 300)
	require.NoError(t, err)
	require.Len(t, between, 2)
	assert.Equal(t, boundaryID, between[0].ID)
	assert.Equal(t, earlyID, between[1].ID, "end boundary is exclusive")

	before, err := db.ListQuestionsBefore(ctx, 200)
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.Equal(t, earlyID, before[0].ID)
}

func TestSearchQuestions(t *testing.T) {
	t.Parallel()
	db := newTestStore(t)
	ctx := context.Background()

	insertTestQuestion(t, db, "为什么恐龙灭绝了？", 100)
	insertTestQuestion(t, db, "恐龙有羽毛吗？", 200)
	insertTestQuestion(t, db, "月亮为什么会变化？", 300)
	insertTestQuestion(t, db, "100% 的水是什么？", 400)

	got, err := db.SearchQuestions(ctx, "恐龙")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "恐龙有羽毛吗？", got[0].Content)

	// LIKE wildcards in the term match literally, not as wildcards.
	got, err = db.SearchQuestions(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = db.SearchQuestions(ctx, "%")
	require.NoError(t, err)
	require.Len(t, got, 1, "bare wildcard must not match everything")

	_, err = db.SearchQuestions(ctx, strings.Repeat("a", 101))
	assert.Error(t, err, "over-length term rejected")
}

func TestSanitizeSearchTerm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"50%", "50\\%"},
		{"a_b", "a\\_b"},
		{`back\slash`, `back\\slash`},
		{`%_\`, `\%\_\\`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeSearchTerm(tt.in))
	}
}

func TestAnswerRoundTrip(t *testing.T) {
	t.Parallel()
	db := newTestStore(t)
	ctx := context.Background()

	qid := insertTestQuestion(t, db, "为什么彩虹有颜色？", 100)

	id, err := db.InsertAnswer(ctx, &Answer{
		QuestionID:       qid,
		Content:          "因为光的折射🌈",
		RelatedQuestions: []string{"Q1？", "Q2？"},
		Experiments:      []string{"三棱镜实验"},
		Games:            []string{"颜色排序"},
		CreatedAt:        1700000000,
	})
	require.NoError(t, err)

	got, err := db.GetAnswerByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, qid, got.QuestionID)
	assert.Equal(t, "因为光的折射🌈", got.Content)
	assert.Equal(t, []string{"Q1？", "Q2？"}, got.RelatedQuestions)
	assert.Equal(t, []string{"三棱镜实验"}, got.Experiments)
	assert.Equal(t, []string{"颜色排序"}, got.Games)
	assert.Equal(t, int64(1700000000), got.CreatedAt)
	assert.Empty(t, got.ImageURL)
}

func TestAnswerNilListsStoredAsEmpty(t *testing.T) {
	t.Parallel()
	db := newTestStore(t)
	ctx := context.Background()

	qid := insertTestQuestion(t, db, "问题？", 100)
	id, err := db.InsertAnswer(ctx, &Answer{QuestionID: qid, Content: "回答"})
	require.NoError(t, err)

	got, err := db.GetAnswerByID(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, got.RelatedQuestions)
	assert.Empty(t, got.RelatedQuestions)
	assert.NotNil(t, got.Experiments)
	assert.Empty(t, got.Experiments)
	assert.NotNil(t, got.Games)
	assert.Empty(t, got.Games)
	assert.NotZero(t, got.CreatedAt, "created_at defaults to now")
}

func TestGetAnswerByQuestionIDReturnsLatest(t *testing.T) {
	t.Parallel()
	db := newTestStore(t)
	ctx := context.Background()

	qid := insertTestQuestion(t, db, "问题？", 100)
	_, err := db.InsertAnswer(ctx, &Answer{QuestionID: qid, Content: "第一个回答"})
	require.NoError(t, err)
	latestID, err := db.InsertAnswer(ctx, &Answer{QuestionID: qid, Content: "第二个回答"})
	require.NoError(t, err)

	got, err := db.GetAnswerByQuestionID(ctx, qid)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, latestID, got.ID)
	assert.Equal(t, "第二个回答", got.Content)
}

func TestGetAnswerByQuestionIDMissing(t *testing.T) {
	t.Parallel()
	db := newTestStore(t)

	got, err := db.GetAnswerByQuestionID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInsertAnswerRejectsUnknownQuestion(t *testing.T) {
	t.Parallel()
	db := newTestStore(t)

	_, err := db.InsertAnswer(context.Background(), &Answer{QuestionID: 999, Content: "回答"})
	assert.Error(t, err, "foreign key constraint enforced")
}

func TestCounts(t *testing.T) {
	t.Parallel()
	db := newTestStore(t)
	ctx := context.Background()

	qc, err := db.CountQuestions(ctx)
	require.NoError(t, err)
	assert.Zero(t, qc)

	qid := insertTestQuestion(t, db, "问题？", 100)
	insertTestQuestion(t, db, "另一个问题？", 200)
	_, err = db.InsertAnswer(ctx, &Answer{QuestionID: qid, Content: "回答"})
	require.NoError(t, err)

	qc, err = db.CountQuestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, qc)

	ac, err := db.CountAnswers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ac)
}
