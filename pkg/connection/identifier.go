package connection

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/nnnkkk7/sqlpager/pkg/config"
)

// Identifier validation errors. Every one of them also matches ErrInvalidIdentifier.
var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrEmptyIdentifier   = errors.New("identifier cannot be empty")
	ErrIdentifierTooLong = fmt.Errorf("identifier exceeds maximum length of %d characters", config.MaxIdentifierLength)
	ErrInvalidCharacter  = errors.New("identifier must start with a letter or underscore and contain only letters, digits, and underscores")
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdentifier checks a database, table, or column name against the
// allow-pattern before it is placed in connection configuration or SQL text.
func ValidateIdentifier(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: %w", ErrInvalidIdentifier, ErrEmptyIdentifier)
	case len(name) > config.MaxIdentifierLength:
		return fmt.Errorf("%w: %w", ErrInvalidIdentifier, ErrIdentifierTooLong)
	case !identifierPattern.MatchString(name):
		return fmt.Errorf("%w %q: %w", ErrInvalidIdentifier, name, ErrInvalidCharacter)
	}
	return nil
}
