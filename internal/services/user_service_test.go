package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbot/internal/core"
)

func TestUserService_CreateGetRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.users.Create(ctx, core.UserCreate{TelegramID: 10, Name: ptr("Ann"), Login: ptr("ann"), PhoneNumber: "+39 123"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Nil(t, created.UpdatedAt)

	got, err := f.users.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	byTelegram, err := f.users.GetByTelegramID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byTelegram.ID)

	_, err = f.users.GetByTelegramID(ctx, 11)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.users.Get(ctx, 2)
	assert.ErrorIs(t, err, core.ErrNotFound)

	users, err := f.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserService_Conflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Create(ctx, core.UserCreate{TelegramID: 1, Login: ptr("bob"), PhoneNumber: "+1"})
	require.NoError(t, err)

	cases := []struct {
		name  string
		in    core.UserCreate
		field string
	}{
		{"telegram id", core.UserCreate{TelegramID: 1, PhoneNumber: "+2"}, "telegram_id"},
		{"login", core.UserCreate{TelegramID: 2, Login: ptr("bob"), PhoneNumber: "+2"}, "login"},
		{"phone", core.UserCreate{TelegramID: 2, PhoneNumber: "+1"}, "phone_number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.users.Create(ctx, tc.in)
			var coreErr *core.Error
			require.True(t, errors.As(err, &coreErr))
			assert.ErrorIs(t, err, core.ErrConflict)
			assert.Equal(t, tc.field, coreErr.Field)
		})
	}

	second, err := f.users.Create(ctx, core.UserCreate{TelegramID: 2, PhoneNumber: "+2"})
	require.NoError(t, err)

	_, err = f.users.Update(ctx, second.ID, core.UserUpdate{Login: core.Some("bob")})
	assert.ErrorIs(t, err, core.ErrConflict)
}

func TestUserService_PartialUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.users.Create(ctx, core.UserCreate{TelegramID: 1, Login: ptr("bob"), PhoneNumber: "+1"})
	require.NoError(t, err)

	var upd core.UserUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"name":"A"}`), &upd))
	updated, err := f.users.Update(ctx, created.ID, upd)
	require.NoError(t, err)
	require.NotNil(t, updated.Name)
	assert.Equal(t, "A", *updated.Name)
	assert.Equal(t, "bob", *updated.Login)
	assert.Equal(t, "+1", updated.PhoneNumber)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.NotNil(t, updated.UpdatedAt)

	upd = core.UserUpdate{}
	require.NoError(t, json.Unmarshal([]byte(`{"name":null}`), &upd))
	cleared, err := f.users.Update(ctx, created.ID, upd)
	require.NoError(t, err)
	assert.Nil(t, cleared.Name)

	_, err = f.users.Update(ctx, created.ID, core.UserUpdate{PhoneNumber: core.Null[string]()})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = f.users.Update(ctx, 99, core.UserUpdate{Name: core.Some("x")})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUserService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, category := f.seed(t)

	_, err := f.expenses.Create(ctx, core.ExpenseCreate{Title: "x", Amount: money(t, "3"), UserID: user.ID, CategoryID: category.ID})
	require.NoError(t, err)

	require.NoError(t, f.users.Delete(ctx, user.ID))

	_, err = f.users.Get(ctx, user.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	remaining, err := f.expenses.List(ctx, core.DefaultPage())
	require.NoError(t, err)
	assert.Empty(t, remaining)

	assert.ErrorIs(t, f.users.Delete(ctx, user.ID), core.ErrNotFound)
}

func TestUserService_EventsOnlyForSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.users.Create(ctx, core.UserCreate{TelegramID: 1, PhoneNumber: "+1"})
	require.NoError(t, err)
	_, err = f.users.Create(ctx, core.UserCreate{TelegramID: 1, PhoneNumber: "+2"})
	require.Error(t, err)
	_, err = f.users.Update(ctx, created.ID, core.UserUpdate{})
	require.NoError(t, err)
	_, err = f.users.Update(ctx, created.ID, core.UserUpdate{Name: core.Some("A")})
	require.NoError(t, err)

	assert.Equal(t, []string{"user.created", "user.updated"}, f.events.keys())
}
