package storage

import (
	"context"
	"database/sql"
	"fmt"

	"finbot/internal/core"
)

const userColumns = `id, telegram_id, name, login, phone_number, created_at, updated_at`

type CreateUserParams struct {
	TelegramID  int64
	Name        *string
	Login       *string
	PhoneNumber string
}

func scanUser(row rowScanner) (core.User, error) {
	var (
		u           core.User
		name, login sql.NullString
		created     timestamp
		updated     timestamp
	)
	if err := row.Scan(&u.ID, &u.TelegramID, &name, &login, &u.PhoneNumber, &created, &updated); err != nil {
		return core.User{}, err
	}
	u.Name = stringPtr(name)
	u.Login = stringPtr(login)
	u.CreatedAt = created.Time
	u.UpdatedAt = updated.ptr()
	return u, nil
}

const createUser = `INSERT INTO "user" (telegram_id, name, login, phone_number, created_at)
VALUES (?, ?, ?, ?, ?)`

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (core.User, error) {
	res, err := q.db.ExecContext(ctx, createUser,
		arg.TelegramID,
		nullString(arg.Name),
		nullString(arg.Login),
		arg.PhoneNumber,
		q.now(),
	)
	if err != nil {
		return core.User{}, translate("create user", core.EntityUser, 0, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("create user: last insert id: %w", err)
	}
	return q.GetUser(ctx, id)
}

const getUser = `SELECT ` + userColumns + ` FROM "user" WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id int64) (core.User, error) {
	u, err := scanUser(q.db.QueryRowContext(ctx, getUser, id))
	if err != nil {
		return core.User{}, translate("get user", core.EntityUser, id, err)
	}
	return u, nil
}

const getUserByTelegramID = `SELECT ` + userColumns + ` FROM "user" WHERE telegram_id = ?`

func (q *Queries) GetUserByTelegramID(ctx context.Context, telegramID int64) (core.User, error) {
	u, err := scanUser(q.db.QueryRowContext(ctx, getUserByTelegramID, telegramID))
	if err != nil {
		return core.User{}, translate("get user by telegram id", core.EntityUser, telegramID, err)
	}
	return u, nil
}

const listUsers = `SELECT ` + userColumns + ` FROM "user" ORDER BY id`

func (q *Queries) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []core.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

const userExists = `SELECT EXISTS(SELECT 1 FROM "user" WHERE id = ?)`

func (q *Queries) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := q.db.QueryRowContext(ctx, userExists, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

const updateUser = `UPDATE "user"
SET telegram_id = ?, name = ?, login = ?, phone_number = ?, updated_at = ?
WHERE id = ?`

// UpdateUser overwrites every mutable column of u and stamps updated_at.
func (q *Queries) UpdateUser(ctx context.Context, u core.User) (core.User, error) {
	res, err := q.db.ExecContext(ctx, updateUser,
		u.TelegramID,
		nullString(u.Name),
		nullString(u.Login),
		u.PhoneNumber,
		q.now(),
		u.ID,
	)
	if err != nil {
		return core.User{}, translate("update user", core.EntityUser, u.ID, err)
	}
	if err := expectOneRow(res, core.EntityUser, u.ID); err != nil {
		return core.User{}, err
	}
	return q.GetUser(ctx, u.ID)
}

const deleteUser = `DELETE FROM "user" WHERE id = ?`

func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, deleteUser, id)
	if err != nil {
		return translate("delete user", core.EntityUser, id, err)
	}
	return expectOneRow(res, core.EntityUser, id)
}

func expectOneRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.NotFound(entity, id)
	}
	return nil
}
