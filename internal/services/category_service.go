package services

import (
	"context"
	"errors"
	"fmt"

	"finbot/internal/core"
	"finbot/internal/log"
	"finbot/internal/storage"
)

// CategoryService exposes categories read-only to the API and lets finctl
// manage them out of band.
type CategoryService struct {
	store *storage.Store
	notifier
}

func NewCategoryService(store *storage.Store, events EventPublisher, logger *log.Logger) *CategoryService {
	return &CategoryService{
		store:    store,
		notifier: newNotifier(log.ComponentCategory, events, logger),
	}
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	var categories []core.Category
	err := s.store.WithSession(ctx, func(q *storage.Queries) error {
		var err error
		categories, err = q.ListCategories(ctx)
		return err
	})
	return categories, err
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	var category core.Category
	err := s.store.WithSession(ctx, func(q *storage.Queries) error {
		var err error
		category, err = q.GetCategory(ctx, id)
		return err
	})
	return category, err
}

func (s *CategoryService) Create(ctx context.Context, in core.CategoryCreate) (core.Category, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}

	var category core.Category
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		category, err = q.CreateCategory(ctx, in.Name)
		return err
	})
	if err != nil {
		return core.Category{}, err
	}

	s.notify(ctx, core.EntityCategory, core.ActionCreated, category.ID)
	return category, nil
}

func (s *CategoryService) Rename(ctx context.Context, id int64, name string) (core.Category, error) {
	in := core.CategoryCreate{Name: name}.Normalize()
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}

	var category core.Category
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		category, err = q.RenameCategory(ctx, id, in.Name)
		return err
	})
	if err != nil {
		return core.Category{}, err
	}

	s.notify(ctx, core.EntityCategory, core.ActionUpdated, category.ID)
	return category, nil
}

// Delete removes an unused category. Categories still referenced by
// expenses are reported as core.ErrConflict.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		if _, err := q.GetCategory(ctx, id); err != nil {
			return err
		}
		n, err := q.CountExpensesByCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &core.Error{
				Kind:    core.ErrConflict,
				Entity:  core.EntityCategory,
				Message: fmt.Sprintf("category %d is used by %d expenses", id, n),
			}
		}
		return q.DeleteCategory(ctx, id)
	})
	if err != nil {
		return err
	}

	s.notify(ctx, core.EntityCategory, core.ActionDeleted, id)
	return nil
}

// Seed creates every named category that does not exist yet, in a single
// transaction, and returns the ones it created.
func (s *CategoryService) Seed(ctx context.Context, names []string) ([]core.Category, error) {
	inputs := make([]core.CategoryCreate, 0, len(names))
	for _, name := range names {
		in := core.CategoryCreate{Name: name}.Normalize()
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		inputs = append(inputs, in)
	}

	created := []core.Category{}
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		for _, in := range inputs {
			_, err := q.GetCategoryByName(ctx, in.Name)
			if err == nil {
				continue
			}
			if !errors.Is(err, core.ErrNotFound) {
				return err
			}
			category, err := q.CreateCategory(ctx, in.Name)
			if err != nil {
				return err
			}
			created = append(created, category)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range created {
		s.notify(ctx, core.EntityCategory, core.ActionCreated, c.ID)
	}
	return created, nil
}
