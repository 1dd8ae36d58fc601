// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/quiz"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width so stored UTC timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for quiz attempts.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			started_at TEXT NOT NULL,
			completed_at TEXT NOT NULL,
			score INTEGER NOT NULL,
			total INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			unanswered INTEGER NOT NULL,
			time_taken_ms INTEGER NOT NULL,
			time_limit_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempt_questions (
			attempt_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			category TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			question TEXT NOT NULL,
			user_answer TEXT,
			correct_answer TEXT NOT NULL,
			is_correct INTEGER NOT NULL,
			PRIMARY KEY (attempt_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_completed_at ON attempts(completed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempt_questions_category ON attempt_questions(category);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertAttempt stores a completed quiz and its per-question results.
// Unanswered questions are stored with a NULL user_answer.
func (s *Store) InsertAttempt(ctx context.Context, summary model.ResultsSummary, startedAt time.Time) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO attempts (id, email, started_at, completed_at, score, total, correct, incorrect, unanswered, time_taken_ms, time_limit_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		summary.Email,
		formatTime(startedAt),
		formatTime(summary.CompletedAt),
		summary.Score,
		summary.TotalQuestions,
		summary.CorrectAnswers,
		summary.IncorrectAnswers,
		summary.UnansweredQuestions,
		summary.TimeTaken.Milliseconds(),
		summary.TimeLimit.Milliseconds(),
	)
	if err != nil {
		return "", err
	}

	if len(summary.Results) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO attempt_questions (attempt_id, seq, category, difficulty, question, user_answer, correct_answer, is_correct)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, r := range summary.Results {
			var answer sql.NullString
			if r.UserAnswer != quiz.NotAnswered {
				answer = sql.NullString{String: r.UserAnswer, Valid: true}
			}
			if _, err = stmt.ExecContext(ctx, id, r.QuestionID, r.Category, r.Difficulty, r.Question, answer, r.CorrectAnswer, r.IsCorrect); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListAttempts returns attempt aggregates filtered by the history config,
// oldest first.
func (s *Store) ListAttempts(ctx context.Context, cfg model.HistoryConfig) ([]model.AttemptAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Email != "" {
		clauses = append(clauses, "email = ?")
		args = append(args, cfg.Email)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "completed_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	query := fmt.Sprintf(`SELECT id, email, started_at, completed_at, score, total, correct, incorrect, unanswered, time_taken_ms
		FROM attempts
		WHERE %s
		ORDER BY completed_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.AttemptAggregate
	for rows.Next() {
		var agg model.AttemptAggregate
		var startedAt, completedAt string
		if err := rows.Scan(&agg.AttemptID, &agg.Email, &startedAt, &completedAt, &agg.Score, &agg.Total,
			&agg.Correct, &agg.Incorrect, &agg.Unanswered, &agg.TimeTakenMs); err != nil {
			return nil, err
		}
		if agg.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if agg.CompletedAt, err = parseTime(completedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(attempts) > cfg.Last {
		attempts = attempts[len(attempts)-cfg.Last:]
	}
	return attempts, nil
}

// ListCategoryAggregates aggregates question outcomes per category across attempts.
func (s *Store) ListCategoryAggregates(ctx context.Context, attemptIDs []string) ([]model.CategoryAggregate, error) {
	if len(attemptIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(attemptIDs))
	args := make([]any, len(attemptIDs))
	for i, id := range attemptIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT category,
		SUM(CASE WHEN is_correct = 1 THEN 1 ELSE 0 END) AS correct,
		SUM(CASE WHEN is_correct = 0 AND user_answer IS NOT NULL THEN 1 ELSE 0 END) AS incorrect,
		SUM(CASE WHEN user_answer IS NULL THEN 1 ELSE 0 END) AS unanswered
		FROM attempt_questions
		WHERE attempt_id IN (%s)
		GROUP BY category
		ORDER BY category`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.CategoryAggregate
	for rows.Next() {
		var agg model.CategoryAggregate
		if err := rows.Scan(&agg.Category, &agg.Correct, &agg.Incorrect, &agg.Unanswered); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAttemptResults returns the stored per-question results of one attempt.
func (s *Store) ListAttemptResults(ctx context.Context, attemptID string) ([]model.QuestionResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, category, difficulty, question, user_answer, correct_answer, is_correct
		 FROM attempt_questions
		 WHERE attempt_id = ?
		 ORDER BY seq ASC`, attemptID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.QuestionResult
	for rows.Next() {
		var r model.QuestionResult
		var answer sql.NullString
		if err := rows.Scan(&r.QuestionID, &r.Category, &r.Difficulty, &r.Question, &answer, &r.CorrectAnswer, &r.IsCorrect); err != nil {
			return nil, err
		}
		r.UserAnswer = quiz.NotAnswered
		if answer.Valid {
			r.UserAnswer = answer.String
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}
	return t.Local(), nil
}
