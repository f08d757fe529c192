package sqlite

import (
	"context"
	"time"

	"github.com/quotables/quotes-api/internal/quotes/domain"
	"github.com/quotables/quotes-api/internal/quotes/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, email, password_hash, active, roles, created_at, updated_at`

func (r *usersRepo) scanUser(row interface{ Scan(dest ...any) error }) (domain.User, error) {
	var (
		u     domain.User
		roles string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Active, &roles, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	u.Roles = splitRoles(roles)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, active, roles, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Active, joinRoles(u.Roles),
		u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	return mapErr(err)
}

func (r *usersRepo) ListUsers(ctx context.Context, page domain.PageRequest) ([]domain.User, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT ? OFFSET ?`,
		page.Size, page.Offset(),
	)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, mapErr(rows.Err())
}

func (r *usersRepo) UpdateRoles(ctx context.Context, userID string, roles []string) error {
	return r.update(ctx,
		`UPDATE users SET roles = ?, updated_at = ? WHERE id = ?`,
		joinRoles(roles), time.Now().UTC(), userID)
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool) error {
	return r.update(ctx,
		`UPDATE users SET active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), userID)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	return r.update(ctx, `DELETE FROM users WHERE id = ?`, userID)
}

func (r *usersRepo) update(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
