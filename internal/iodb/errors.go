package iodb

import "fmt"

// ConnectionError is returned when the database connection fails.
// Connectivity errors are fatal and abort the run before any work
// starts.
type ConnectionError struct {
	Host     string
	Port     int
	Database string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf(
		"failed to connect to %s:%d/%s: %v",
		e.Host, e.Port, e.Database, e.Err,
	)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// NotConnectedError is returned when an operation is attempted before
// Connect succeeded.
type NotConnectedError struct{}

func (e *NotConnectedError) Error() string {
	return "not connected to database"
}

// TableCheckError is returned when the table existence preflight
// query fails.
type TableCheckError struct {
	Schema string
	Table  string
	Err    error
}

func (e *TableCheckError) Error() string {
	return fmt.Sprintf(
		"failed to check table %s.%s: %v", e.Schema, e.Table, e.Err,
	)
}

func (e *TableCheckError) Unwrap() error { return e.Err }

// MissingTableError is returned when the destination table does not
// exist. The loader never creates it.
type MissingTableError struct {
	Schema   string
	Table    string
	Database string
}

func (e *MissingTableError) Error() string {
	return fmt.Sprintf(
		"table %s.%s does not exist in %s",
		e.Schema, e.Table, e.Database,
	)
}
