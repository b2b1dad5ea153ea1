package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so messages match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (u UserCreate) Validate() error {
	return validationError("", validate.Struct(u))
}

func (u UserUpdate) Validate() error {
	if err := notNull("telegram_id", u.TelegramID.Set, u.TelegramID.Null); err != nil {
		return err
	}
	if err := notNull("phone_number", u.PhoneNumber.Set, u.PhoneNumber.Null); err != nil {
		return err
	}
	checks := []struct {
		field string
		set   bool
		value any
		tag   string
	}{
		{"telegram_id", u.TelegramID.HasValue(), u.TelegramID.Value, "gt=0"},
		{"name", u.Name.HasValue(), u.Name.Value, "max=128"},
		{"login", u.Login.HasValue(), u.Login.Value, "max=64"},
		{"phone_number", u.PhoneNumber.HasValue(), u.PhoneNumber.Value, "required,max=32"},
	}
	for _, c := range checks {
		if !c.set {
			continue
		}
		if err := validationError(c.field, validate.Var(c.value, c.tag)); err != nil {
			return err
		}
	}
	return nil
}

func (e ExpenseCreate) Validate() error {
	if err := validationError("", validate.Struct(e)); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return Invalid("amount", err.Error())
	}
	return nil
}

func (e ExpenseUpdate) Validate() error {
	for _, f := range []struct {
		field     string
		set, null bool
	}{
		{"title", e.Title.Set, e.Title.Null},
		{"amount", e.Amount.Set, e.Amount.Null},
		{"user_id", e.UserID.Set, e.UserID.Null},
	} {
		if err := notNull(f.field, f.set, f.null); err != nil {
			return err
		}
	}
	if e.Title.HasValue() {
		if err := validationError("title", validate.Var(e.Title.Value, "required,max=255")); err != nil {
			return err
		}
	}
	if e.Text.HasValue() {
		if err := validationError("text", validate.Var(e.Text.Value, "max=4096")); err != nil {
			return err
		}
	}
	if e.Amount.HasValue() {
		if err := e.Amount.Value.Validate(); err != nil {
			return Invalid("amount", err.Error())
		}
	}
	if e.UserID.HasValue() {
		if err := validationError("user_id", validate.Var(e.UserID.Value, "gt=0")); err != nil {
			return err
		}
	}
	return nil
}

func (c CategoryCreate) Validate() error {
	return validationError("", validate.Struct(c))
}

func notNull(field string, set, null bool) error {
	if set && null {
		return Invalid(field, fmt.Sprintf("%s cannot be null", field))
	}
	return nil
}

// validationError converts validator output into an *Error. field overrides
// the reported field name, which validate.Var leaves empty.
func validationError(field string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}
	fe := verrs[0]
	if field == "" {
		field = fe.Field()
	}
	return Invalid(field, describe(field, fe))
}

func describe(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
