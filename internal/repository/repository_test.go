package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-metrics/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store := NewSQLiteStore(filepath.Join(t.TempDir(), "qa_test.db"))
	require.NoError(t, store.Init(), "Init should not return an error")
	t.Cleanup(func() { store.Close() })

	base := time.Date(2025, 6, 6, 14, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return store
}

func TestSQLiteStore_Init(t *testing.T) {
	store := newTestStore(t)

	reopened := NewSQLiteStore(store.dbPath)
	assert.NoError(t, reopened.Init(), "Init on an existing database should not fail")
	assert.NoError(t, reopened.Close())
}

func TestSQLiteStore_CreateAndGetQuestion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateQuestion(ctx, domain.Question{
		Title:       "Why is eu slower?",
		Description: "p50 doubled after deploy",
		Tags:        []string{"latency", "eu"},
		Region:      "eu",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.GetQuestion(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Why is eu slower?", got.Title)
	assert.Equal(t, "p50 doubled after deploy", got.Description)
	assert.Equal(t, []string{"latency", "eu"}, got.Tags)
	assert.Equal(t, "eu", got.Region)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestSQLiteStore_GetQuestionNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetQuestion(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteStore_ListQuestions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	questions, err := store.ListQuestions(ctx)
	require.NoError(t, err)
	assert.NotNil(t, questions)
	assert.Len(t, questions, 0)

	for _, title := range []string{"first", "second", "third"} {
		_, err := store.CreateQuestion(ctx, domain.Question{Title: title, Region: "us"})
		require.NoError(t, err)
	}

	questions, err = store.ListQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, "first", questions[0].Title)
	assert.Equal(t, "third", questions[2].Title)
	assert.Equal(t, []string{}, questions[0].Tags, "missing tags load as an empty list")

	// case: cancelled context
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.ListQuestions(cancelled)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}

func TestSQLiteStore_Answers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	q1, err := store.CreateQuestion(ctx, domain.Question{Title: "q1", Region: "us"})
	require.NoError(t, err)
	q2, err := store.CreateQuestion(ctx, domain.Question{Title: "q2", Region: "ap"})
	require.NoError(t, err)

	a1, err := store.CreateAnswer(ctx, domain.Answer{QuestionID: q1.ID, Answer: "restart it"})
	require.NoError(t, err)
	assert.NotEmpty(t, a1.ID)
	assert.Equal(t, q1.ID, a1.QuestionID)

	_, err = store.CreateAnswer(ctx, domain.Answer{QuestionID: q1.ID, Answer: "check the cache"})
	require.NoError(t, err)
	_, err = store.CreateAnswer(ctx, domain.Answer{QuestionID: q2.ID, Answer: "scale out"})
	require.NoError(t, err)

	forQ1, err := store.ListAnswers(ctx, q1.ID)
	require.NoError(t, err)
	require.Len(t, forQ1, 2)
	assert.Equal(t, "restart it", forQ1[0].Answer)
	assert.Equal(t, "check the cache", forQ1[1].Answer)

	all, err := store.ListAnswers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := store.ListAnswers(ctx, "missing")
	require.NoError(t, err)
	assert.Len(t, none, 0)
}

func TestSQLiteStore_CreateAnswerUnknownQuestion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateAnswer(ctx, domain.Answer{QuestionID: "missing", Answer: "hello"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := store.ListAnswers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 0, "nothing is written for an unknown question")
}
