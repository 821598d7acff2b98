package rules

import (
	"errors"
	"fmt"
	"strings"
)

const (
	maxIDLength         = 100
	maxExpressionLength = 4096
)

// ErrInvalidRule is returned for rules that fail ValidateRule
var ErrInvalidRule = errors.New("invalid rule")

// ValidateRule checks the shape of a rule before it is compiled.
// Expression semantics are left to the CEL checker.
func ValidateRule(r *Rule) error {
	if r == nil {
		return fmt.Errorf("%w: rule is nil", ErrInvalidRule)
	}

	if err := validateID(r.ID); err != nil {
		return fmt.Errorf("%w: id %q: %v", ErrInvalidRule, r.ID, err)
	}

	if strings.TrimSpace(r.Expression) == "" {
		return fmt.Errorf("%w: rule %s has an empty expression", ErrInvalidRule, r.ID)
	}
	if len(r.Expression) > maxExpressionLength {
		return fmt.Errorf("%w: rule %s expression length %d exceeds maximum of %d", ErrInvalidRule, r.ID, len(r.Expression), maxExpressionLength)
	}

	if r.Priority < 0 {
		return fmt.Errorf("%w: rule %s has negative priority %d", ErrInvalidRule, r.ID, r.Priority)
	}

	return nil
}

func validateID(id string) error {
	if id == "" {
		return errors.New("identifier cannot be empty")
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("identifier length %d exceeds maximum of %d characters", len(id), maxIDLength)
	}
	if strings.TrimSpace(id) != id {
		return errors.New("identifier has leading/trailing whitespace")
	}
	if strings.ContainsAny(id, "\t\r\n") {
		return errors.New("identifier contains control whitespace")
	}
	return nil
}
