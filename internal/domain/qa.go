package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type Question struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	Region      string    `json:"region"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Answer struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"questionId"`
	Answer     string    `json:"answer"`
	CreatedAt  time.Time `json:"createdAt"`
}

// QAStore persists questions and their answers.
type QAStore interface {
	Init() error
	CreateQuestion(ctx context.Context, q Question) (Question, error)
	ListQuestions(ctx context.Context) ([]Question, error)
	GetQuestion(ctx context.Context, id string) (Question, error)
	CreateAnswer(ctx context.Context, a Answer) (Answer, error)
	ListAnswers(ctx context.Context, questionID string) ([]Answer, error)
	Close() error
}
