package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error is a failed call. Status is zero for transport failures.
type Error struct {
	Status      int
	Message     string
	FieldErrors map[string]string
	Err         error
}

func (e *Error) Error() string {
	if len(e.FieldErrors) == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		return e.Message
	}
	fields := make([]string, 0, len(e.FieldErrors))
	for name := range e.FieldErrors {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, name := range fields {
		parts = append(parts, name+": "+e.FieldErrors[name])
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

func (e *Error) Unwrap() error { return e.Err }

// IsValidation reports whether the server rejected individual fields.
func (e *Error) IsValidation() bool {
	return e != nil && len(e.FieldErrors) > 0
}

// Unauthorized reports whether the credential was rejected.
func (e *Error) Unauthorized() bool {
	return e != nil && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

type errorBody struct {
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

func errorFromResponse(status int, contentType string, raw []byte) *Error {
	e := &Error{
		Status:  status,
		Message: fmt.Sprintf("Request failed with status %d", status),
	}
	if !isJSON(contentType) || len(raw) == 0 {
		return e
	}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return e
	}
	if strings.TrimSpace(body.Message) != "" {
		e.Message = body.Message
	}
	if len(body.Errors) > 0 {
		var fields map[string]string
		if err := json.Unmarshal(body.Errors, &fields); err == nil && len(fields) > 0 {
			e.FieldErrors = fields
		}
	}
	return e
}
