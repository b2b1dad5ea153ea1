package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbot/internal/core"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "test.db"),
		WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

func seedUserAndCategory(t *testing.T, s *Store) (core.User, core.Category) {
	t.Helper()
	var (
		user     core.User
		category core.Category
	)
	err := s.WithTx(context.Background(), func(q *Queries) error {
		var err error
		user, err = q.CreateUser(context.Background(), CreateUserParams{TelegramID: 1, PhoneNumber: "+1"})
		if err != nil {
			return err
		}
		category, err = q.CreateCategory(context.Background(), "Food")
		return err
	})
	require.NoError(t, err)
	return user, category
}

func TestOpenRunsMigrations(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Ping(context.Background()))

	version, dirty, err := MigrationVersion(s.Path())
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Reopening an up-to-date database is a no-op.
	require.NoError(t, RunMigrations(s.Path()))
}

func TestUserRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.WithSession(ctx, func(q *Queries) error {
		created, err := q.CreateUser(ctx, CreateUserParams{
			TelegramID:  42,
			Name:        ptr("Ann"),
			PhoneNumber: "+100",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
		assert.Equal(t, fixedNow, created.CreatedAt)
		assert.Nil(t, created.UpdatedAt)
		assert.Nil(t, created.Login)

		got, err := q.GetUser(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)

		byTelegram, err := q.GetUserByTelegramID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, created.ID, byTelegram.ID)

		created.Login = ptr("ann")
		created.Name = nil
		updated, err := q.UpdateUser(ctx, created)
		require.NoError(t, err)
		assert.Equal(t, "ann", *updated.Login)
		assert.Nil(t, updated.Name)
		require.NotNil(t, updated.UpdatedAt)
		assert.Equal(t, fixedNow, *updated.UpdatedAt)

		users, err := q.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)

		require.NoError(t, q.DeleteUser(ctx, created.ID))
		_, err = q.GetUser(ctx, created.ID)
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.ErrorIs(t, q.DeleteUser(ctx, created.ID), core.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestUserUniqueConflicts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.WithSession(ctx, func(q *Queries) error {
		_, err := q.CreateUser(ctx, CreateUserParams{TelegramID: 1, Login: ptr("bob"), PhoneNumber: "+1"})
		require.NoError(t, err)

		cases := []struct {
			params CreateUserParams
			field  string
		}{
			{CreateUserParams{TelegramID: 1, PhoneNumber: "+2"}, "telegram_id"},
			{CreateUserParams{TelegramID: 2, Login: ptr("bob"), PhoneNumber: "+2"}, "login"},
			{CreateUserParams{TelegramID: 2, PhoneNumber: "+1"}, "phone_number"},
		}
		for _, tc := range cases {
			_, err := q.CreateUser(ctx, tc.params)
			var coreErr *core.Error
			require.True(t, errors.As(err, &coreErr), "field %s", tc.field)
			assert.ErrorIs(t, err, core.ErrConflict)
			assert.Equal(t, tc.field, coreErr.Field)
		}

		// Two users without a login do not collide.
		_, err = q.CreateUser(ctx, CreateUserParams{TelegramID: 3, PhoneNumber: "+3"})
		assert.NoError(t, err)
		return nil
	})
	require.NoError(t, err)
}

func TestExpenseQueries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	user, category := seedUserAndCategory(t, s)

	err := s.WithSession(ctx, func(q *Queries) error {
		for i := 0; i < 3; i++ {
			_, err := q.CreateExpense(ctx, CreateExpenseParams{
				Title:       "Lunch",
				AmountCents: int64(1000 + i),
				UserID:      user.ID,
				CategoryID:  category.ID,
			})
			require.NoError(t, err)
		}

		e, err := q.GetExpense(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Food", e.Category.Name)
		assert.Equal(t, int64(1000), e.Amount.Cents)
		assert.Nil(t, e.Text)

		withUser, err := q.GetExpenseWithUser(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, user.PhoneNumber, withUser.User.PhoneNumber)
		assert.Equal(t, int64(1001), withUser.Amount.Cents)

		page, err := q.ListExpenses(ctx, core.Page{Offset: 1, Limit: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, int64(2), page[0].ID)

		empty, err := q.ListExpenses(ctx, core.Page{Offset: 0, Limit: 0})
		require.NoError(t, err)
		assert.Empty(t, empty)

		byUser, err := q.ListExpensesByUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, byUser, 3)

		e.Text = ptr("with rice")
		e.Amount = core.Money{Cents: 5}
		e.CategoryID = 999
		updated, err := q.UpdateExpense(ctx, e)
		require.NoError(t, err)
		assert.Equal(t, "with rice", *updated.Text)
		assert.Equal(t, category.ID, updated.CategoryID)
		require.NotNil(t, updated.UpdatedAt)

		require.NoError(t, q.DeleteExpense(ctx, 3))
		assert.ErrorIs(t, q.DeleteExpense(ctx, 3), core.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestExpenseConstraints(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	user, category := seedUserAndCategory(t, s)

	err := s.WithSession(ctx, func(q *Queries) error {
		_, err := q.CreateExpense(ctx, CreateExpenseParams{Title: "x", UserID: 99, CategoryID: category.ID})
		assert.ErrorIs(t, err, core.ErrForeignKey)

		_, err = q.CreateExpense(ctx, CreateExpenseParams{Title: "x", AmountCents: -1, UserID: user.ID, CategoryID: category.ID})
		assert.ErrorIs(t, err, core.ErrValidation)

		_, err = q.CreateExpense(ctx, CreateExpenseParams{Title: "x", UserID: user.ID, CategoryID: category.ID})
		require.NoError(t, err)

		err = q.DeleteCategory(ctx, category.ID)
		assert.ErrorIs(t, err, core.ErrConflict)
		assert.NotErrorIs(t, err, core.ErrForeignKey)
		assert.Contains(t, err.Error(), "still used by expenses")

		require.NoError(t, q.DeleteUser(ctx, user.ID))
		expenses, err := q.ListExpenses(ctx, core.DefaultPage())
		require.NoError(t, err)
		assert.Empty(t, expenses, "expenses are removed with their user")

		require.NoError(t, q.DeleteCategory(ctx, category.ID))
		return nil
	})
	require.NoError(t, err)
}

func TestCategoryQueries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.WithSession(ctx, func(q *Queries) error {
		food, err := q.CreateCategory(ctx, "Food")
		require.NoError(t, err)

		_, err = q.CreateCategory(ctx, "Food")
		var coreErr *core.Error
		require.True(t, errors.As(err, &coreErr))
		assert.ErrorIs(t, err, core.ErrConflict)
		assert.Equal(t, "name", coreErr.Field)

		renamed, err := q.RenameCategory(ctx, food.ID, "Groceries")
		require.NoError(t, err)
		assert.Equal(t, "Groceries", renamed.Name)

		byName, err := q.GetCategoryByName(ctx, "Groceries")
		require.NoError(t, err)
		assert.Equal(t, food.ID, byName.ID)

		exists, err := q.CategoryExists(ctx, food.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		_, err = q.RenameCategory(ctx, 404, "x")
		assert.ErrorIs(t, err, core.ErrNotFound)

		categories, err := q.ListCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.Category{{ID: food.ID, Name: "Groceries"}}, categories)
		return nil
	})
	require.NoError(t, err)
}

func TestWithTxRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(q *Queries) error {
		_, err := q.CreateCategory(ctx, "Food")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Panics(t, func() {
		_ = s.WithTx(ctx, func(q *Queries) error {
			_, err := q.CreateCategory(ctx, "Travel")
			require.NoError(t, err)
			panic("unexpected")
		})
	})

	// The single pooled connection must have been released by both calls.
	err = s.WithSession(ctx, func(q *Queries) error {
		categories, err := q.ListCategories(ctx)
		require.NoError(t, err)
		assert.Empty(t, categories)
		return nil
	})
	require.NoError(t, err)
}

func TestUniqueColumn(t *testing.T) {
	assert.Equal(t, "login", uniqueColumn("constraint failed: UNIQUE constraint failed: user.login (2067)"))
	assert.Equal(t, "name", uniqueColumn("UNIQUE constraint failed: expense_category.name"))
	assert.Equal(t, "", uniqueColumn("disk I/O error"))
}

func TestTimestampScan(t *testing.T) {
	var ts timestamp
	require.NoError(t, ts.Scan("2024-03-15 10:30:00+00:00"))
	assert.Equal(t, fixedNow, ts.Time)

	require.NoError(t, ts.Scan([]byte("2024-03-15T10:30:00Z")))
	assert.Equal(t, fixedNow, ts.Time)

	require.NoError(t, ts.Scan(nil))
	assert.Nil(t, ts.ptr())

	assert.Error(t, ts.Scan("yesterday"))
}
