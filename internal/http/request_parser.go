// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Decoding failures are reported as core validation errors so every handler
// maps them to the same 422 response.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finbot/internal/core"
)

// MaxBodyBytes bounds the size of a JSON request body.
const MaxBodyBytes = 1 << 20

// DecodeJSON reads a single JSON value from the request body into dst.
// Unknown fields are ignored.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))

	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return core.Invalid("", "request body must contain a single JSON value")
	}
	return nil
}

func decodeError(err error) error {
	var (
		coreErr   *core.Error
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &coreErr):
		return coreErr
	case errors.Is(err, io.EOF):
		return core.Invalid("", "request body is empty")
	case errors.Is(err, io.ErrUnexpectedEOF):
		return core.Invalid("", "request body contains malformed JSON")
	case errors.As(err, &syntaxErr):
		return core.Invalid("", fmt.Sprintf("request body contains malformed JSON at position %d", syntaxErr.Offset))
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			return core.Invalid("", "request body must be a JSON object")
		}
		return core.Invalid(field, fmt.Sprintf("%s must be a %s", field, jsonKind(typeErr.Type.Kind().String())))
	case errors.As(err, &tooLarge):
		return core.Invalid("", fmt.Sprintf("request body must not exceed %d bytes", tooLarge.Limit))
	default:
		return core.Invalid("", "request body could not be decoded")
	}
}

func jsonKind(goKind string) string {
	switch {
	case strings.HasPrefix(goKind, "int"), strings.HasPrefix(goKind, "uint"), strings.HasPrefix(goKind, "float"):
		return "number"
	case goKind == "string":
		return "string"
	case goKind == "bool":
		return "boolean"
	default:
		return "valid value"
	}
}

// ParsePageParams extracts offset and limit from query parameters. Missing
// values fall back to offset 0 and the default limit; the limit is clamped.
func ParsePageParams(query url.Values) (core.Page, error) {
	page := core.DefaultPage()

	offset, err := intParam(query, "offset", page.Offset)
	if err != nil {
		return core.Page{}, err
	}
	limit, err := intParam(query, "limit", page.Limit)
	if err != nil {
		return core.Page{}, err
	}
	return core.NewPage(offset, limit)
}

func intParam(query url.Values, name string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, core.Invalid(name, name+" must be an integer")
	}
	return n, nil
}
