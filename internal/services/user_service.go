package services

import (
	"context"

	"finbot/internal/core"
	"finbot/internal/log"
	"finbot/internal/storage"
)

// UserService manages registered users
type UserService struct {
	store *storage.Store
	notifier
}

func NewUserService(store *storage.Store, events EventPublisher, logger *log.Logger) *UserService {
	return &UserService{
		store:    store,
		notifier: newNotifier(log.ComponentUser, events, logger),
	}
}

// Create registers a user. Collisions on telegram_id, login or phone_number
// are reported as core.ErrConflict naming the field.
func (s *UserService) Create(ctx context.Context, in core.UserCreate) (core.User, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.User{}, err
	}

	var user core.User
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		user, err = q.CreateUser(ctx, storage.CreateUserParams{
			TelegramID:  in.TelegramID,
			Name:        in.Name,
			Login:       in.Login,
			PhoneNumber: in.PhoneNumber,
		})
		return err
	})
	if err != nil {
		return core.User{}, err
	}

	s.notify(ctx, core.EntityUser, core.ActionCreated, user.ID)
	return user, nil
}

// List returns all users in id order
func (s *UserService) List(ctx context.Context) ([]core.User, error) {
	var users []core.User
	err := s.store.WithSession(ctx, func(q *storage.Queries) error {
		var err error
		users, err = q.ListUsers(ctx)
		return err
	})
	return users, err
}

func (s *UserService) Get(ctx context.Context, id int64) (core.User, error) {
	var user core.User
	err := s.store.WithSession(ctx, func(q *storage.Queries) error {
		var err error
		user, err = q.GetUser(ctx, id)
		return err
	})
	return user, err
}

// GetByTelegramID looks a user up by chat identifier
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (core.User, error) {
	var user core.User
	err := s.store.WithSession(ctx, func(q *storage.Queries) error {
		var err error
		user, err = q.GetUserByTelegramID(ctx, telegramID)
		return err
	})
	return user, err
}

// Update applies the supplied fields only. An update with no fields returns
// the stored row untouched.
func (s *UserService) Update(ctx context.Context, id int64, in core.UserUpdate) (core.User, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.User{}, err
	}

	var (
		user    core.User
		changed bool
	)
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		current, err := q.GetUser(ctx, id)
		if err != nil {
			return err
		}
		if in.IsEmpty() {
			user = current
			return nil
		}
		user, err = q.UpdateUser(ctx, in.Apply(current))
		changed = err == nil
		return err
	})
	if err != nil {
		return core.User{}, err
	}

	if changed {
		s.notify(ctx, core.EntityUser, core.ActionUpdated, user.ID)
	}
	return user, nil
}

// Delete removes the user together with the expenses it owns
func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		return q.DeleteUser(ctx, id)
	})
	if err != nil {
		return err
	}

	s.notify(ctx, core.EntityUser, core.ActionDeleted, id)
	return nil
}
