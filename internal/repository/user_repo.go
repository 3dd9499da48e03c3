package repository

import (
	"context"
	"fmt"
	"time"

	"canteen/internal/domain"
)

type UserRepository struct {
	*base
}

func NewUserRepository(b *base) UserRepositoryInterface {
	return &UserRepository{base: b}
}

// userRow keeps the joined role name apart so it can be normalized.
type userRow struct {
	domain.User
	RoleName string `db:"role_name"`
}

func (r userRow) toUser() domain.User {
	u := r.User
	u.Role = domain.ParseRole(r.RoleName)
	return u
}

const selectUser = `
	SELECT u.id, u.username, u.email, u.password_digest,
	       u.reset_code, u.reset_code_expires_at, u.reset_verified_at, u.created_at,
	       COALESCE(ur.name, '') AS role_name
	FROM users u
	LEFT JOIN user_roles ur ON ur.id = u.role_id`

func (r *UserRepository) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	err := r.write(ctx, func(ctx context.Context) error {
		return r.db.QueryRowxContext(ctx, `
			INSERT INTO users (username, email, password_digest, role_id)
			VALUES ($1, $2, $3, (SELECT id FROM user_roles WHERE name = $4))
			RETURNING id, created_at
		`, u.Username, u.Email, u.PasswordDigest, string(u.Role)).Scan(&u.ID, &u.CreatedAt)
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("create user %q: %w", u.Username, mapError(err))
	}
	return u, nil
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (domain.User, error) {
	var row userRow
	err := r.read(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &row, selectUser+` WHERE `+where, arg)
	})
	if err != nil {
		return domain.User{}, mapError(err)
	}
	return row.toUser(), nil
}

func (r *UserRepository) GetUser(ctx context.Context, id int64) (domain.User, error) {
	u, err := r.getOne(ctx, `u.id = $1`, id)
	if err != nil {
		return u, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	u, err := r.getOne(ctx, `u.username = $1`, username)
	if err != nil {
		return u, fmt.Errorf("get user %q: %w", username, err)
	}
	return u, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := r.getOne(ctx, `lower(u.email) = lower($1)`, email)
	if err != nil {
		return u, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	err := r.read(ctx, func(ctx context.Context) error {
		rows = rows[:0]
		return r.db.SelectContext(ctx, &rows, selectUser+` ORDER BY u.id`)
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", mapError(err))
	}
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (r *UserRepository) SetResetCode(ctx context.Context, userID int64, code string, expiresAt time.Time) error {
	return r.exec(ctx, "set reset code", `
		UPDATE users SET reset_code = $2, reset_code_expires_at = $3, reset_verified_at = NULL
		WHERE id = $1
	`, userID, code, expiresAt)
}

func (r *UserRepository) MarkResetVerified(ctx context.Context, userID int64, at time.Time) error {
	return r.exec(ctx, "mark reset verified", `UPDATE users SET reset_verified_at = $2 WHERE id = $1`, userID, at)
}

func (r *UserRepository) ResetPassword(ctx context.Context, userID int64, digest string) error {
	return r.exec(ctx, "reset password", `
		UPDATE users
		SET password_digest = $2, reset_code = NULL, reset_code_expires_at = NULL, reset_verified_at = NULL
		WHERE id = $1
	`, userID, digest)
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID int64, role domain.Role) (domain.User, error) {
	err := r.exec(ctx, "update role", `
		UPDATE users SET role_id = (SELECT id FROM user_roles WHERE name = $2) WHERE id = $1
	`, userID, string(role))
	if err != nil {
		return domain.User{}, err
	}
	return r.GetUser(ctx, userID)
}

// DeleteUser keeps the user's orders and reviews; their user reference is nulled by the schema.
func (r *UserRepository) DeleteUser(ctx context.Context, userID int64) error {
	return r.exec(ctx, "delete user", `DELETE FROM users WHERE id = $1`, userID)
}
