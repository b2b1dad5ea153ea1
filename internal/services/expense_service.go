package services

import (
	"context"

	"finbot/internal/core"
	"finbot/internal/log"
	"finbot/internal/storage"
)

// ExpenseService manages expenses and enforces their references at write time
type ExpenseService struct {
	store *storage.Store
	notifier
}

func NewExpenseService(store *storage.Store, events EventPublisher, logger *log.Logger) *ExpenseService {
	return &ExpenseService{
		store:    store,
		notifier: newNotifier(log.ComponentExpense, events, logger),
	}
}

// Create saves an expense. A missing user or category is reported as
// core.ErrForeignKey and nothing is written.
func (s *ExpenseService) Create(ctx context.Context, in core.ExpenseCreate) (core.Expense, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}

	var expense core.Expense
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		if err := requireUser(ctx, q, in.UserID); err != nil {
			return err
		}
		if err := requireCategory(ctx, q, in.CategoryID); err != nil {
			return err
		}

		var err error
		expense, err = q.CreateExpense(ctx, storage.CreateExpenseParams{
			Title:       in.Title,
			Text:        in.Text,
			AmountCents: in.Amount.Cents,
			UserID:      in.UserID,
			CategoryID:  in.CategoryID,
		})
		return err
	})
	if err != nil {
		return core.Expense{}, err
	}

	s.logger.DebugContext(ctx, "Expense created",
		log.NewFields().WithExpense(expense.UserID, expense.CategoryID, expense.Amount.Cents).ToSlice()...)
	s.notify(ctx, core.EntityExpense, core.ActionCreated, expense.ID)
	return expense, nil
}

// List returns one page of expenses in id order
func (s *ExpenseService) List(ctx context.Context, page core.Page) ([]core.Expense, error) {
	var expenses []core.Expense
	err := s.store.WithSession(ctx, func(q *storage.Queries) error {
		var err error
		expenses, err = q.ListExpenses(ctx, page)
		return err
	})
	return expenses, err
}

// Get returns the expense with its category and owner
func (s *ExpenseService) Get(ctx context.Context, id int64) (core.ExpenseWithUser, error) {
	var expense core.ExpenseWithUser
	err := s.store.WithSession(ctx, func(q *storage.Queries) error {
		var err error
		expense, err = q.GetExpenseWithUser(ctx, id)
		return err
	})
	return expense, err
}

// ListByUser returns every expense owned by userID, or core.ErrNotFound when
// the user does not exist.
func (s *ExpenseService) ListByUser(ctx context.Context, userID int64) ([]core.Expense, error) {
	var expenses []core.Expense
	err := s.store.WithSession(ctx, func(q *storage.Queries) error {
		exists, err := q.UserExists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return core.NotFound(core.EntityUser, userID)
		}
		expenses, err = q.ListExpensesByUser(ctx, userID)
		return err
	})
	return expenses, err
}

// Update applies the supplied fields only. The category cannot be changed.
func (s *ExpenseService) Update(ctx context.Context, id int64, in core.ExpenseUpdate) (core.Expense, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}

	var (
		expense core.Expense
		changed bool
	)
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		current, err := q.GetExpense(ctx, id)
		if err != nil {
			return err
		}
		if in.IsEmpty() {
			expense = current
			return nil
		}
		if in.UserID.HasValue() {
			if err := requireUser(ctx, q, in.UserID.Value); err != nil {
				return err
			}
		}
		expense, err = q.UpdateExpense(ctx, in.Apply(current))
		changed = err == nil
		return err
	})
	if err != nil {
		return core.Expense{}, err
	}

	if changed {
		s.notify(ctx, core.EntityExpense, core.ActionUpdated, expense.ID)
	}
	return expense, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		return q.DeleteExpense(ctx, id)
	})
	if err != nil {
		return err
	}

	s.notify(ctx, core.EntityExpense, core.ActionDeleted, id)
	return nil
}

func requireUser(ctx context.Context, q *storage.Queries, id int64) error {
	exists, err := q.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return core.ForeignKey(core.EntityExpense, "user_id", id)
	}
	return nil
}

func requireCategory(ctx context.Context, q *storage.Queries, id int64) error {
	exists, err := q.CategoryExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return core.ForeignKey(core.EntityExpense, "category_id", id)
	}
	return nil
}
