package ioingest

import "fmt"

// NoFilesError happens when the resolved artifact set is empty. An
// empty load is always a configuration mistake, never a no-op.
type NoFilesError struct {
	Dir     string
	Pattern string
}

func (e *NoFilesError) Error() string {
	return fmt.Sprintf(
		"no artifact files match '%s' in '%s'", e.Pattern, e.Dir,
	)
}

// IdentifierError happens when a configured schema or table name is
// not a plain SQL identifier. Names are spliced into COPY statements,
// so anything else is rejected up front.
type IdentifierError struct {
	Name string
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("'%s' is not a valid identifier", e.Name)
}

// CopyError wraps a failed COPY of one artifact file.
type CopyError struct {
	Path string
	Err  error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("cannot load '%s': %v", e.Path, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}
