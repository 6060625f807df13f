package postgres

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizzyhq/quizzy/internal/domain"
	"github.com/quizzyhq/quizzy/internal/errors"
)

const codeUniqueViolation = "23505"

// Store persists profiles and their competitive sessions in Postgres.
// A profile is read and replaced as a whole record; concurrency
// control is the caller's job (the quiz engine serializes writers per
// user).
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Init creates the schema if it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: init schema: %w", err)
	}
	return nil
}

func (s *Store) CreateProfile(ctx context.Context, p *domain.Profile) error {
	const stmt = `
INSERT INTO profiles (username, password_hash, api_key, team, points, create_time)
VALUES ($1, $2, $3, $4, $5, $6);`

	_, err := s.db.Exec(ctx, stmt, p.Name, p.PasswordHash, p.APIKey, p.Team, p.Points, p.CreateTime)

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return errors.New(errors.CodeAlreadyExists,
			errors.WithMessagef("user %q already exists", p.Name),
			errors.WithCause(err),
		)
	}

	return err
}

func (s *Store) Profile(ctx context.Context, name string) (*domain.Profile, error) {
	const stmt = `
SELECT username, password_hash, api_key, team, points, create_time
FROM profiles
WHERE username = $1;`

	p := &domain.Profile{}
	err := s.db.QueryRow(ctx, stmt, name).
		Scan(&p.Name, &p.PasswordHash, &p.APIKey, &p.Team, &p.Points, &p.CreateTime)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("user %q does not exist", name))
	}
	if err != nil {
		return nil, fmt.Errorf("select profile: %w", err)
	}

	if p.ActiveQuizzes, err = s.sessions(ctx, name); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Store) ProfileByKey(ctx context.Context, key string) (*domain.Profile, error) {
	const stmt = `SELECT username FROM profiles WHERE api_key = $1;`

	var name string
	err := s.db.QueryRow(ctx, stmt, key).Scan(&name)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("unknown api key"))
	}
	if err != nil {
		return nil, fmt.Errorf("select profile by key: %w", err)
	}

	return s.Profile(ctx, name)
}

// SaveProfile replaces the stored record with p: the point total and
// the full set of active sessions.
func (s *Store) SaveProfile(ctx context.Context, p *domain.Profile) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = stderrors.Join(err, tx.Rollback(ctx))
		}
	}()

	const (
		updProfileStmt  = `UPDATE profiles SET points = $2 WHERE username = $1;`
		delSessionsStmt = `DELETE FROM quiz_sessions WHERE username = $1;`
		insSessionStmt  = `
INSERT INTO quiz_sessions (username, quiz_name, pos, questions, idx, create_time)
VALUES ($1, $2, $3, $4, $5, $6);`
	)

	tag, err := tx.Exec(ctx, updProfileStmt, p.Name, p.Points)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.CodeNotFound,
			errors.WithMessagef("user %q does not exist", p.Name))
	}

	if _, err = tx.Exec(ctx, delSessionsStmt, p.Name); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}

	for pos, sess := range p.ActiveQuizzes { // TODO: batch insert
		qs, err := json.Marshal(sess.Questions)
		if err != nil {
			return fmt.Errorf("marshal questions: %w", err)
		}

		_, err = tx.Exec(ctx, insSessionStmt, p.Name, sess.Name, pos, qs, sess.Index, sess.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// sessions loads the competitive sessions of a user ordered by
// creation, oldest first.
func (s *Store) sessions(ctx context.Context, name string) ([]*domain.CompetitiveSession, error) {
	const stmt = `
SELECT quiz_name, questions, idx, create_time
FROM quiz_sessions
WHERE username = $1
ORDER BY pos;`

	rows, err := s.db.Query(ctx, stmt, name)
	if err != nil {
		return nil, fmt.Errorf("select sessions: %w", err)
	}

	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (*domain.CompetitiveSession, error) {
		var (
			sess domain.CompetitiveSession
			qs   []byte
		)
		if err := r.Scan(&sess.Name, &qs, &sess.Index, &sess.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(qs, &sess.Questions); err != nil {
			return nil, fmt.Errorf("unmarshal questions: %w", err)
		}
		return &sess, nil
	})
}
