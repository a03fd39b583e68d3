// Package schema validates and normalizes recovery request payloads
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"recovery-backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// Failure reasons reported per field
const (
	ReasonRequired      = "required"
	ReasonInvalidType   = "invalid type"
	ReasonInvalidChoice = "invalid choice"
	ReasonInvalidFormat = "invalid format"
)

// ErrValidation matched by every *ValidationError through errors.Is
var ErrValidation = errors.New("validation failed")

// FieldError one rejected field
type FieldError struct {
	Field   string   `json:"field"`
	Reason  string   `json:"reason"`
	Allowed []string `json:"allowed,omitempty"`
}

func (e FieldError) String() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("%s: %s (allowed: %s)", e.Field, e.Reason, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationError payload rejected by the schema
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) hold
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Field returns the error for the named field, if any
func (e *ValidationError) Field(name string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldError{}, false
}

func (e *ValidationError) add(field, reason string, allowed []string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason, Allowed: allowed})
}

var validate = validator.New()

// Validate checks a decoded payload against the RecoveryRequest schema and
// returns the record with defaults applied. Text is stored exactly as sent;
// enum values must match their set verbatim. All field errors are
// collected. Fields not declared by the schema are ignored.
func Validate(raw map[string]interface{}) (*models.RecoveryRequest, error) {
	verr := &ValidationError{}
	if raw == nil {
		verr.add("body", ReasonRequired, nil)
		return nil, verr
	}

	req := &models.RecoveryRequest{}
	for _, f := range recoveryRequestFields {
		v, present := raw[f.Name]
		if !present || v == nil {
			switch {
			case f.Default != "":
				f.setText(req, f.Default)
			case f.Required:
				verr.add(f.Name, ReasonRequired, nil)
			}
			continue
		}

		if f.Kind == kindBool {
			b, ok := v.(bool)
			if !ok {
				verr.add(f.Name, ReasonInvalidType, nil)
				continue
			}
			f.setBool(req, b)
			continue
		}

		s, ok := v.(string)
		if !ok {
			verr.add(f.Name, ReasonInvalidType, nil)
			continue
		}
		blank := strings.TrimSpace(s) == ""

		switch f.Kind {
		case kindText:
			if blank && f.Required {
				verr.add(f.Name, ReasonRequired, nil)
				continue
			}
		case kindEmail:
			if blank {
				verr.add(f.Name, ReasonRequired, nil)
				continue
			}
			if err := validate.Var(s, "email"); err != nil {
				verr.add(f.Name, ReasonInvalidFormat, nil)
				continue
			}
		case kindChoice:
			if !contains(f.Choices, s) {
				verr.add(f.Name, ReasonInvalidChoice, f.Choices)
				continue
			}
		}
		f.setText(req, s)
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return req, nil
}

// DecodeJSON reads a JSON object body into the untyped form Validate expects.
// Numbers are kept as json.Number so they are never mistaken for text.
func DecodeJSON(r io.Reader) (map[string]interface{}, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		verr := &ValidationError{}
		verr.add("body", ReasonRequired, nil)
		return nil, verr
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		verr := &ValidationError{}
		verr.add("body", ReasonInvalidFormat, nil)
		return nil, verr
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		verr := &ValidationError{}
		verr.add("body", ReasonInvalidFormat, nil)
		return nil, verr
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		verr := &ValidationError{}
		verr.add("body", ReasonInvalidType, nil)
		return nil, verr
	}
	return obj, nil
}

func contains(choices []string, s string) bool {
	for _, c := range choices {
		if c == s {
			return true
		}
	}
	return false
}
