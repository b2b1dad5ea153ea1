package storage

import (
	"context"
	"database/sql"
	"fmt"

	"finbot/internal/core"
)

const expenseColumns = `e.id, e.title, e.text, e.amount_cents, e.user_id, e.category_id,
c.id, c.name, e.created_at, e.updated_at`

const expenseFrom = ` FROM expense e JOIN expense_category c ON c.id = e.category_id`

type CreateExpenseParams struct {
	Title       string
	Text        *string
	AmountCents int64
	UserID      int64
	CategoryID  int64
}

func scanExpense(row rowScanner, extra ...any) (core.Expense, error) {
	var (
		e       core.Expense
		text    sql.NullString
		created timestamp
		updated timestamp
	)
	dest := []any{
		&e.ID, &e.Title, &text, &e.Amount.Cents, &e.UserID, &e.CategoryID,
		&e.Category.ID, &e.Category.Name, &created, &updated,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return core.Expense{}, err
	}
	e.Text = stringPtr(text)
	e.CreatedAt = created.Time
	e.UpdatedAt = updated.ptr()
	return e, nil
}

func scanExpenses(rows *sql.Rows) ([]core.Expense, error) {
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return expenses, nil
}

const createExpense = `INSERT INTO expense (title, text, amount_cents, user_id, category_id, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (core.Expense, error) {
	res, err := q.db.ExecContext(ctx, createExpense,
		arg.Title,
		nullString(arg.Text),
		arg.AmountCents,
		arg.UserID,
		arg.CategoryID,
		q.now(),
	)
	if err != nil {
		return core.Expense{}, translate("create expense", core.EntityExpense, 0, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: last insert id: %w", err)
	}
	return q.GetExpense(ctx, id)
}

const getExpense = `SELECT ` + expenseColumns + expenseFrom + ` WHERE e.id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	e, err := scanExpense(q.db.QueryRowContext(ctx, getExpense, id))
	if err != nil {
		return core.Expense{}, translate("get expense", core.EntityExpense, id, err)
	}
	return e, nil
}

const getExpenseWithUser = `SELECT ` + expenseColumns + `,
u.id, u.telegram_id, u.name, u.login, u.phone_number, u.created_at, u.updated_at` +
	expenseFrom + ` JOIN "user" u ON u.id = e.user_id WHERE e.id = ?`

// GetExpenseWithUser returns the expense with its category and owner.
func (q *Queries) GetExpenseWithUser(ctx context.Context, id int64) (core.ExpenseWithUser, error) {
	var (
		out         core.ExpenseWithUser
		name, login sql.NullString
		created     timestamp
		updated     timestamp
	)
	e, err := scanExpense(q.db.QueryRowContext(ctx, getExpenseWithUser, id),
		&out.User.ID, &out.User.TelegramID, &name, &login, &out.User.PhoneNumber, &created, &updated)
	if err != nil {
		return core.ExpenseWithUser{}, translate("get expense with user", core.EntityExpense, id, err)
	}
	out.Expense = e
	out.User.Name = stringPtr(name)
	out.User.Login = stringPtr(login)
	out.User.CreatedAt = created.Time
	out.User.UpdatedAt = updated.ptr()
	return out, nil
}

const listExpenses = `SELECT ` + expenseColumns + expenseFrom + ` ORDER BY e.id LIMIT ? OFFSET ?`

func (q *Queries) ListExpenses(ctx context.Context, page core.Page) ([]core.Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	expenses, err := scanExpenses(rows)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

const listExpensesByUser = `SELECT ` + expenseColumns + expenseFrom + ` WHERE e.user_id = ? ORDER BY e.id`

func (q *Queries) ListExpensesByUser(ctx context.Context, userID int64) ([]core.Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpensesByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses by user: %w", err)
	}
	expenses, err := scanExpenses(rows)
	if err != nil {
		return nil, fmt.Errorf("list expenses by user: %w", err)
	}
	return expenses, nil
}

const countExpensesByCategory = `SELECT COUNT(*) FROM expense WHERE category_id = ?`

func (q *Queries) CountExpensesByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, countExpensesByCategory, categoryID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses by category: %w", err)
	}
	return n, nil
}

const updateExpense = `UPDATE expense
SET title = ?, text = ?, amount_cents = ?, user_id = ?, updated_at = ?
WHERE id = ?`

// UpdateExpense overwrites the mutable columns of e. The category is left
// untouched.
func (q *Queries) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	res, err := q.db.ExecContext(ctx, updateExpense,
		e.Title,
		nullString(e.Text),
		e.Amount.Cents,
		e.UserID,
		q.now(),
		e.ID,
	)
	if err != nil {
		return core.Expense{}, translate("update expense", core.EntityExpense, e.ID, err)
	}
	if err := expectOneRow(res, core.EntityExpense, e.ID); err != nil {
		return core.Expense{}, err
	}
	return q.GetExpense(ctx, e.ID)
}

const deleteExpense = `DELETE FROM expense WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return translate("delete expense", core.EntityExpense, id, err)
	}
	return expectOneRow(res, core.EntityExpense, id)
}
