package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"qa-metrics/internal/domain"
)

// SQLiteStore persists questions and answers.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{dbPath: path, now: time.Now}
}

func (s *SQLiteStore) Init() error {
	var err error

	s.db, err = sql.Open("sqlite3", s.dbPath+"?_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	if err = s.db.Ping(); err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	createTablesSQL := `
	CREATE TABLE IF NOT EXISTS questions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		region TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS answers (
		id TEXT PRIMARY KEY,
		question_id TEXT NOT NULL REFERENCES questions(id),
		answer TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_answers_question ON answers(question_id);`

	_, err = s.db.Exec(createTablesSQL)
	if err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}

	log.Println("SQLiteStore initialized.")
	return nil
}

func (s *SQLiteStore) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	q.ID = uuid.NewString()
	q.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	if q.Tags == nil {
		q.Tags = []string{}
	}

	tags, err := json.Marshal(q.Tags)
	if err != nil {
		return domain.Question{}, fmt.Errorf("error encoding tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO questions(id, title, description, tags, region, created_at) VALUES(?, ?, ?, ?, ?, ?)",
		q.ID, q.Title, q.Description, string(tags), q.Region, q.CreatedAt.UnixMilli())
	if err != nil {
		return domain.Question{}, fmt.Errorf("error inserting question: %w", err)
	}
	return q, nil
}

func (s *SQLiteStore) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, description, tags, region, created_at FROM questions ORDER BY created_at ASC, rowid ASC")
	if err != nil {
		return nil, fmt.Errorf("error querying questions: %w", err)
	}
	defer rows.Close()

	questions := []domain.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			log.Printf("Error scanning question row: %v", err)
			continue
		}
		questions = append(questions, q)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return questions, nil
}

// GetQuestion returns domain.ErrNotFound when no question has the given id.
func (s *SQLiteStore) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, description, tags, region, created_at FROM questions WHERE id = ?", id)

	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("error loading question: %w", err)
	}
	return q, nil
}

// CreateAnswer fails with domain.ErrNotFound if the question does not exist.
// The answers foreign key enforces this, so no separate lookup is made.
func (s *SQLiteStore) CreateAnswer(ctx context.Context, a domain.Answer) (domain.Answer, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = s.now().UTC().Truncate(time.Millisecond)

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO answers(id, question_id, answer, created_at) VALUES(?, ?, ?, ?)",
		a.ID, a.QuestionID, a.Answer, a.CreatedAt.UnixMilli())
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return domain.Answer{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Answer{}, fmt.Errorf("error inserting answer: %w", err)
	}
	return a, nil
}

// ListAnswers returns the answers of one question, or every answer when
// questionID is empty.
func (s *SQLiteStore) ListAnswers(ctx context.Context, questionID string) ([]domain.Answer, error) {
	query := "SELECT id, question_id, answer, created_at FROM answers"
	var args []interface{}

	if questionID != "" {
		query += " WHERE question_id = ?"
		args = append(args, questionID)
	}
	query += " ORDER BY created_at ASC, rowid ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying answers: %w", err)
	}
	defer rows.Close()

	answers := []domain.Answer{}
	for rows.Next() {
		var (
			a         domain.Answer
			createdAt int64
		)
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Answer, &createdAt); err != nil {
			log.Printf("Error scanning answer row: %v", err)
			continue
		}
		a.CreatedAt = time.UnixMilli(createdAt).UTC()
		answers = append(answers, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return answers, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuestion(row rowScanner) (domain.Question, error) {
	var (
		q         domain.Question
		tags      string
		createdAt int64
	)
	if err := row.Scan(&q.ID, &q.Title, &q.Description, &tags, &q.Region, &createdAt); err != nil {
		return domain.Question{}, err
	}
	if err := json.Unmarshal([]byte(tags), &q.Tags); err != nil {
		return domain.Question{}, fmt.Errorf("error decoding tags: %w", err)
	}
	q.CreatedAt = time.UnixMilli(createdAt).UTC()
	return q, nil
}
