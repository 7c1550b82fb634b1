// Package sqlite is a single-file result and account store for deployments
// without Postgres.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cquiz-service/internal/auth"
	"cquiz-service/internal/domain"
	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	db    *sql.DB
	clock func() time.Time
}

func Open(path string) (*Store, error) {
	return OpenWithClock(path, time.Now)
}

// OpenWithClock is test-only for deterministic ordering.
func OpenWithClock(path string, clock func() time.Time) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = "quiz.db"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{db: db, clock: clock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS quiz_results (
			id TEXT PRIMARY KEY,
			user_email TEXT NOT NULL,
			user_name TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL,
			answers_json TEXT NOT NULL,
			submitted_at TEXT NOT NULL,
			total_questions INTEGER NOT NULL,
			time_spent INTEGER NOT NULL,
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS users (
			uid TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_results_created_at ON quiz_results(created_at_unix DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_results_user ON quiz_results(user_email, created_at_unix DESC);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Save(ctx context.Context, result domain.QuizResult) (domain.QuizResult, error) {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return domain.QuizResult{}, domain.NewStoreError("save quiz result", err)
	}
	result.ID = uuid.NewString()
	now := s.clock().UTC()
	result.Timestamp = now
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO quiz_results (id, user_email, user_name, score, answers_json, submitted_at, total_questions, time_spent, created_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.UserEmail,
		result.UserName,
		result.Score,
		string(answers),
		now.Format(time.RFC3339Nano),
		result.TotalQuestions,
		result.TimeSpent,
		now.UnixNano(),
	)
	if err != nil {
		return domain.QuizResult{}, domain.NewStoreError("save quiz result", err)
	}
	return result, nil
}

const resultColumns = `id, user_email, user_name, score, answers_json, submitted_at, total_questions, time_spent`

// rowid breaks ties between results stored within the same clock reading.
const newestFirst = ` ORDER BY created_at_unix DESC, rowid DESC`

func (s *Store) ListByUser(ctx context.Context, email string) ([]domain.QuizResult, error) {
	return s.queryResults(ctx, `SELECT `+resultColumns+` FROM quiz_results WHERE user_email = ?`+newestFirst, email)
}

func (s *Store) ListAll(ctx context.Context) ([]domain.QuizResult, error) {
	return s.queryResults(ctx, `SELECT `+resultColumns+` FROM quiz_results`+newestFirst)
}

func (s *Store) GetByID(ctx context.Context, id string) (domain.QuizResult, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+resultColumns+` FROM quiz_results WHERE id = ?`, id)
	result, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuizResult{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.QuizResult{}, domain.NewStoreError("fetch quiz result", err)
	}
	return result, nil
}

func (s *Store) DeleteByUser(ctx context.Context, email string) (int, error) {
	return s.deleteResults(ctx, `DELETE FROM quiz_results WHERE user_email = ?`, email)
}

func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	return s.deleteResults(ctx, `DELETE FROM quiz_results`)
}

func (s *Store) deleteResults(ctx context.Context, query string, args ...any) (int, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, domain.NewStoreError("delete quiz results", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, domain.NewStoreError("delete quiz results", err)
	}
	return int(n), nil
}

func (s *Store) queryResults(ctx context.Context, query string, args ...any) ([]domain.QuizResult, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStoreError("fetch quiz results", err)
	}
	defer rows.Close()

	results := []domain.QuizResult{}
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, domain.NewStoreError("fetch quiz results", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("fetch quiz results", err)
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (domain.QuizResult, error) {
	var (
		result      domain.QuizResult
		answersJSON string
		submittedAt string
	)
	err := row.Scan(
		&result.ID, &result.UserEmail, &result.UserName, &result.Score, &answersJSON,
		&submittedAt, &result.TotalQuestions, &result.TimeSpent,
	)
	if err != nil {
		return domain.QuizResult{}, err
	}
	if err := json.Unmarshal([]byte(answersJSON), &result.Answers); err != nil {
		return domain.QuizResult{}, fmt.Errorf("decode answers: %w", err)
	}
	result.Timestamp, err = time.Parse(time.RFC3339Nano, submittedAt)
	if err != nil {
		return domain.QuizResult{}, fmt.Errorf("decode timestamp: %w", err)
	}
	return result, nil
}

func (s *Store) CreateUser(ctx context.Context, user auth.User) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO users (uid, email, display_name, password_hash, created_at_unix) VALUES (?, ?, ?, ?, ?)`,
		user.UID, user.Email, user.DisplayName, user.PasswordHash, user.CreatedAt.UnixNano(),
	)
	if isUniqueViolation(err) {
		return auth.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (auth.User, error) {
	var (
		user      auth.User
		createdAt int64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT uid, email, display_name, password_hash, created_at_unix FROM users WHERE email = ?`,
		email,
	).Scan(&user.UID, &user.Email, &user.DisplayName, &user.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("select user: %w", err)
	}
	user.CreatedAt = time.Unix(0, createdAt).UTC()
	return user, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// primary code only when extended codes are off
		return strings.Contains(se.Error(), "UNIQUE")
	}
	return false
}
