// Package schema validates request bodies against embedded JSON schemas.
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	domainerrors "mechamind.backend/internal/domain/errors"
)

//go:embed schemas/chat_request.schema.json
var chatRequestSchema []byte

// Validator checks raw JSON documents against one schema.
type Validator struct {
	schema *gojsonschema.Schema
}

func newValidator(raw []byte) (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// ChatRequest returns the validator for POST /chat bodies.
func ChatRequest() (*Validator, error) {
	return newValidator(chatRequestSchema)
}

// Validate returns nil for a conforming document, or an ErrInvalidInput
// wrapping every violation.
func (v *Validator) Validate(doc []byte) error {
	res, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("malformed JSON body: %w", domainerrors.ErrInvalidInput)
	}
	if res.Valid() {
		return nil
	}

	details := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		details = append(details, e.String())
	}
	return &ValidationError{Details: details}
}

// ValidationError lists schema violations.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == domainerrors.ErrInvalidInput
}

// IsValidationError reports whether err came from a schema check.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
