package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-tracker/internal/domain"
)

// UserRepository encapsulates team profile persistence.
type UserRepository interface {
	Create(ctx context.Context, profile *domain.UserProfile) error
	GetByUID(ctx context.Context, uid string) (*domain.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error)
	List(ctx context.Context) ([]domain.UserProfile, error)
	UpdateRole(ctx context.Context, uid string, role domain.Role) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates the repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	const query = `
        INSERT INTO users (email, username, role, password_hash)
        VALUES ($1,$2,$3,$4)
        RETURNING uid, created_at`
	return r.pool.QueryRow(ctx, query,
		profile.Email,
		profile.Username,
		profile.Role,
		profile.PasswordHash,
	).Scan(&profile.UID, &profile.CreatedAt)
}

func (r *userRepository) GetByUID(ctx context.Context, uid string) (*domain.UserProfile, error) {
	const query = `SELECT uid, email, username, role, password_hash, created_at FROM users WHERE uid=$1`
	return scanUser(r.pool.QueryRow(ctx, query, uid))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	const query = `SELECT uid, email, username, role, password_hash, created_at FROM users WHERE email=$1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) List(ctx context.Context) ([]domain.UserProfile, error) {
	const query = `SELECT uid, email, username, role, password_hash, created_at FROM users ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.UserProfile
	for rows.Next() {
		profile, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *profile)
	}
	return result, rows.Err()
}

func (r *userRepository) UpdateRole(ctx context.Context, uid string, role domain.Role) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET role=$1 WHERE uid=$2`, role, uid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUser(row rowScanner) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	if err := row.Scan(
		&profile.UID,
		&profile.Email,
		&profile.Username,
		&profile.Role,
		&profile.PasswordHash,
		&profile.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}
