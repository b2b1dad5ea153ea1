package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"finbot/internal/core"
	"finbot/internal/log"
)

// Exit codes for finctl commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // unexpected failure (database, I/O)
	ExitCommandError = 2 // bad input, missing or conflicting rows
)

// ExitError carries the exit code for an error that has already been
// reported to the user.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for finctl commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
}

// CLIResponse is the JSON envelope written in json mode.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Success writes data. In text mode text renders it.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return f.writeJSON(CLIResponse{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

// Failure reports err and returns it wrapped with its exit code.
func (f *OutputFormatter) Failure(err error) error {
	code, errType := classify(err)
	if f.Format == "json" {
		if werr := f.writeJSON(CLIResponse{Status: "error", Error: &CLIError{Type: errType, Message: err.Error()}}); werr != nil {
			return werr
		}
	} else {
		fmt.Fprintf(f.ErrWriter, "Error: %v\n", err)
	}
	return &ExitError{Code: code, Err: err}
}

func (f *OutputFormatter) writeJSON(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrValidation):
		return ExitCommandError, log.ErrorTypeValidation
	case errors.Is(err, core.ErrNotFound):
		return ExitCommandError, log.ErrorTypeNotFound
	case errors.Is(err, core.ErrConflict):
		return ExitCommandError, log.ErrorTypeConflict
	case errors.Is(err, core.ErrForeignKey):
		return ExitCommandError, log.ErrorTypeForeignKey
	default:
		return ExitFailure, log.ErrorTypeInternal
	}
}
