package tenant

import (
	"fmt"
	"regexp"
)

// identifierRegex is the full grammar for names this package will splice
// into DDL. Deliberately narrower than what Postgres accepts: generated
// names only ever contain lowercase letters, digits and underscores, so
// anything else indicates a bug or injection attempt.
var identifierRegex = regexp.MustCompile(`^[a-z0-9_]+$`)

// maxIdentifierLength is the PostgreSQL identifier limit. Longer names
// are silently truncated by the server, which would break the
// schema-name round trip used by cleanup verification.
const maxIdentifierLength = 63

// ValidateIdentifier checks that name is safe to interpolate into SQL as
// a schema or table identifier. DDL does not support bound parameters
// for identifiers, so this is the single choke point preventing SQL
// injection via generated names; every derived name passes through here
// before any string composition.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("%w: identifier is empty", ErrUnsafeIdentifier)
	}
	if len(name) > maxIdentifierLength {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrUnsafeIdentifier, name, maxIdentifierLength)
	}
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("%w: %q must contain only lowercase letters, digits, and underscores", ErrUnsafeIdentifier, name)
	}
	return nil
}
