package core

import (
	"strings"
	"time"
)

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 100
)

type (
	Money struct {
		Cents int64
	}

	User struct {
		ID          int64      `json:"id"`
		TelegramID  int64      `json:"telegram_id"`
		Name        *string    `json:"name"`
		Login       *string    `json:"login"`
		PhoneNumber string     `json:"phone_number"`
		CreatedAt   time.Time  `json:"created_at"`
		UpdatedAt   *time.Time `json:"updated_at"`
	}

	Category struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	Expense struct {
		ID         int64      `json:"id"`
		Title      string     `json:"title"`
		Text       *string    `json:"text"`
		Amount     Money      `json:"amount"`
		UserID     int64      `json:"user_id"`
		CategoryID int64      `json:"category_id"`
		Category   Category   `json:"category"`
		CreatedAt  time.Time  `json:"created_at"`
		UpdatedAt  *time.Time `json:"updated_at"`
	}

	ExpenseWithUser struct {
		Expense
		User User `json:"user"`
	}

	UserCreate struct {
		TelegramID  int64   `json:"telegram_id" validate:"gt=0"`
		Name        *string `json:"name" validate:"omitempty,max=128"`
		Login       *string `json:"login" validate:"omitempty,max=64"`
		PhoneNumber string  `json:"phone_number" validate:"required,max=32"`
	}

	UserUpdate struct {
		TelegramID  Optional[int64]  `json:"telegram_id"`
		Name        Optional[string] `json:"name"`
		Login       Optional[string] `json:"login"`
		PhoneNumber Optional[string] `json:"phone_number"`
	}

	ExpenseCreate struct {
		Title      string  `json:"title" validate:"required,max=255"`
		Text       *string `json:"text" validate:"omitempty,max=4096"`
		Amount     *Money  `json:"amount" validate:"required"`
		UserID     int64   `json:"user_id" validate:"gt=0"`
		CategoryID int64   `json:"category_id" validate:"gt=0"`
	}

	// ExpenseUpdate has no category field: the category of an expense is
	// fixed at creation.
	ExpenseUpdate struct {
		Title  Optional[string] `json:"title"`
		Text   Optional[string] `json:"text"`
		Amount Optional[Money]  `json:"amount"`
		UserID Optional[int64]  `json:"user_id"`
	}

	CategoryCreate struct {
		Name string `json:"name" validate:"required,max=64"`
	}

	Page struct {
		Offset int
		Limit  int
	}
)

// NewPage builds a page window. Negative values are rejected; the limit is
// clamped to MaxPageLimit.
func NewPage(offset, limit int) (Page, error) {
	if offset < 0 {
		return Page{}, Invalid("offset", "offset must not be negative")
	}
	if limit < 0 {
		return Page{}, Invalid("limit", "limit must not be negative")
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Offset: offset, Limit: limit}, nil
}

// DefaultPage is the window used when no paging parameters are supplied.
func DefaultPage() Page {
	return Page{Offset: 0, Limit: DefaultPageLimit}
}

// SanitizeInput removes control characters except tab, newline and carriage
// return, and trims surrounding whitespace.
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// sanitizeOptional sanitizes p, collapsing empty strings to nil.
func sanitizeOptional(p *string) *string {
	if p == nil {
		return nil
	}
	s := SanitizeInput(*p)
	if s == "" {
		return nil
	}
	return &s
}

// sanitizeNullable sanitizes a nullable update field; an empty string becomes
// an explicit null.
func sanitizeNullable(o Optional[string]) Optional[string] {
	if !o.HasValue() {
		return o
	}
	s := SanitizeInput(o.Value)
	if s == "" {
		return Null[string]()
	}
	return Some(s)
}

func sanitizeRequired(o Optional[string]) Optional[string] {
	if !o.HasValue() {
		return o
	}
	return Some(SanitizeInput(o.Value))
}

func (u UserCreate) Normalize() UserCreate {
	u.Name = sanitizeOptional(u.Name)
	u.Login = sanitizeOptional(u.Login)
	u.PhoneNumber = SanitizeInput(u.PhoneNumber)
	return u
}

func (u UserUpdate) Normalize() UserUpdate {
	u.Name = sanitizeNullable(u.Name)
	u.Login = sanitizeNullable(u.Login)
	u.PhoneNumber = sanitizeRequired(u.PhoneNumber)
	return u
}

// IsEmpty reports whether the update carries no fields at all.
func (u UserUpdate) IsEmpty() bool {
	return !u.TelegramID.Set && !u.Name.Set && !u.Login.Set && !u.PhoneNumber.Set
}

// Apply returns a copy of user with the supplied fields replaced.
func (u UserUpdate) Apply(user User) User {
	if u.TelegramID.HasValue() {
		user.TelegramID = u.TelegramID.Value
	}
	if u.Name.Set {
		user.Name = u.Name.Ptr()
	}
	if u.Login.Set {
		user.Login = u.Login.Ptr()
	}
	if u.PhoneNumber.HasValue() {
		user.PhoneNumber = u.PhoneNumber.Value
	}
	return user
}

func (e ExpenseCreate) Normalize() ExpenseCreate {
	e.Title = SanitizeInput(e.Title)
	e.Text = sanitizeOptional(e.Text)
	return e
}

func (e ExpenseUpdate) Normalize() ExpenseUpdate {
	e.Title = sanitizeRequired(e.Title)
	e.Text = sanitizeNullable(e.Text)
	return e
}

func (e ExpenseUpdate) IsEmpty() bool {
	return !e.Title.Set && !e.Text.Set && !e.Amount.Set && !e.UserID.Set
}

// Apply returns a copy of expense with the supplied fields replaced.
func (e ExpenseUpdate) Apply(expense Expense) Expense {
	if e.Title.HasValue() {
		expense.Title = e.Title.Value
	}
	if e.Text.Set {
		expense.Text = e.Text.Ptr()
	}
	if e.Amount.HasValue() {
		expense.Amount = e.Amount.Value
	}
	if e.UserID.HasValue() {
		expense.UserID = e.UserID.Value
	}
	return expense
}

func (c CategoryCreate) Normalize() CategoryCreate {
	c.Name = SanitizeInput(c.Name)
	return c
}
