package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"cquiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore keeps quiz results in the quiz_results table. Ids and
// timestamps are assigned by the database.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

const resultColumns = `id::text, user_email, user_name, score, answers, submitted_at, total_questions, time_spent`

func (s *ResultStore) Save(ctx context.Context, result domain.QuizResult) (domain.QuizResult, error) {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return domain.QuizResult{}, domain.NewStoreError("save quiz result", err)
	}

	// now() is fixed per transaction, so submitted_at equals created_at.
	query := `
	INSERT INTO quiz_results (user_email, user_name, score, answers, submitted_at, total_questions, time_spent)
	VALUES ($1, $2, $3, $4, now(), $5, $6)
	RETURNING id::text, submitted_at
	`
	err = s.pool.QueryRow(ctx, query,
		result.UserEmail, result.UserName, result.Score, answers,
		result.TotalQuestions, result.TimeSpent,
	).Scan(&result.ID, &result.Timestamp)
	if err != nil {
		return domain.QuizResult{}, domain.NewStoreError("save quiz result", err)
	}
	result.Timestamp = result.Timestamp.UTC()
	return result, nil
}

func (s *ResultStore) ListByUser(ctx context.Context, email string) ([]domain.QuizResult, error) {
	query := `SELECT ` + resultColumns + ` FROM quiz_results WHERE user_email = $1 ORDER BY created_at DESC`
	return s.query(ctx, "fetch quiz results", query, email)
}

func (s *ResultStore) ListAll(ctx context.Context) ([]domain.QuizResult, error) {
	query := `SELECT ` + resultColumns + ` FROM quiz_results ORDER BY created_at DESC`
	return s.query(ctx, "fetch quiz results", query)
}

func (s *ResultStore) GetByID(ctx context.Context, id string) (domain.QuizResult, error) {
	// Non-UUID input would fail the cast, so compare as text.
	query := `SELECT ` + resultColumns + ` FROM quiz_results WHERE id::text = $1`
	result, err := scanResult(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizResult{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.QuizResult{}, domain.NewStoreError("fetch quiz result", err)
	}
	return result, nil
}

func (s *ResultStore) DeleteByUser(ctx context.Context, email string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quiz_results WHERE user_email = $1`, email)
	if err != nil {
		return 0, domain.NewStoreError("delete quiz results", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *ResultStore) DeleteAll(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quiz_results`)
	if err != nil {
		return 0, domain.NewStoreError("delete quiz results", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *ResultStore) query(ctx context.Context, op, query string, args ...interface{}) ([]domain.QuizResult, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	defer rows.Close()

	results := []domain.QuizResult{}
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, domain.NewStoreError(op, err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	return results, nil
}

func scanResult(row pgx.Row) (domain.QuizResult, error) {
	var (
		result  domain.QuizResult
		answers []byte
	)
	err := row.Scan(
		&result.ID, &result.UserEmail, &result.UserName, &result.Score, &answers,
		&result.Timestamp, &result.TotalQuestions, &result.TimeSpent,
	)
	if err != nil {
		return domain.QuizResult{}, err
	}
	if err := json.Unmarshal(answers, &result.Answers); err != nil {
		return domain.QuizResult{}, err
	}
	result.Timestamp = result.Timestamp.UTC()
	return result, nil
}
