package connection

import (
	"errors"
	"fmt"
)

// Resolver and registry errors.
var (
	ErrNoDefaultConnection = errors.New("no default connection configured")
	ErrConnectionExists    = errors.New("connection name already registered")
	ErrUnknownDialect      = errors.New("unknown dialect")
	ErrDatabaseNotFound    = errors.New("database not found")
)

// ConnectionError reports that a target database could not be reached.
type ConnectionError struct {
	Database string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to database %q: %v", e.Database, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
