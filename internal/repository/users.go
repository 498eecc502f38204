package repository

import (
	"context"

	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
)

const userColumns = `id, username, password_hash, full_name, email, role, is_active, created_at, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	dst := []any{&user.ID, &user.Username, &user.PasswordHash, &user.FullName, &user.Email, &user.Role, &user.IsActive, &user.CreatedAt, &user.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) GetUserByID(id int64) (*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetUserByUsername(username string) (*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.dbpool.QueryRowContext(ctx, query, username))
}

func (r *Repository) UpdateUser(user *domain.User) error {
	query := `
		UPDATE users
		SET
			password_hash = $1,
			email = $2,
			role = $3,
			is_active = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING username, full_name, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{user.PasswordHash, user.Email, user.Role, user.IsActive, user.ID, user.Version}
	dst := []any{&user.Username, &user.FullName, &user.CreatedAt, &user.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...)
}

// GetUsersByRole 返回某一角色的全部已激活用户，例如排程完成后需要通知的组织者
func (r *Repository) GetUsersByRole(role domain.Role) ([]*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 AND is_active ORDER BY id`
	return r.queryUsers(ctx, query, role)
}

func (r *Repository) GetAllUsers() ([]*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	return r.queryUsers(ctx, query)
}

func (r *Repository) DeleteUser(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *Repository) CreateUser(user *domain.User) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO users (username, password_hash, full_name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, version
	`

	args := []any{user.Username, user.PasswordHash, user.FullName, user.Email, user.Role}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.Version)
}

func (r *Repository) queryUsers(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
