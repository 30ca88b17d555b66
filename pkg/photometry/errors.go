package photometry

import "fmt"

// ShapeMismatchError is returned when the length of a flux spectrum
// does not match the wavelength grid.
type ShapeMismatchError struct {
	Row     int
	FluxLen int
	WaveLen int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf(
		"photometry: spectrum %d has %d samples, wavelength grid has %d",
		e.Row, e.FluxLen, e.WaveLen,
	)
}

// UnknownChoiceError is returned for a filter choice other than
// optimistic, pessimistic, or mean.
type UnknownChoiceError struct {
	Choice string
}

func (e *UnknownChoiceError) Error() string {
	return fmt.Sprintf("photometry: invalid filter type %q", e.Choice)
}

// UnknownUnitError is returned for an unsupported flux density unit.
type UnknownUnitError struct {
	Unit string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("photometry: unsupported flux unit %q", e.Unit)
}

// CalibrationTableError reports a malformed row in one of the bundled
// calibration assets.
type CalibrationTableError struct {
	Table string
	Line  int
	Err   error
}

func (e *CalibrationTableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"photometry: %s table, line %d: %v", e.Table, e.Line, e.Err,
		)
	}
	return fmt.Sprintf(
		"photometry: %s table, line %d: malformed row", e.Table, e.Line,
	)
}

func (e *CalibrationTableError) Unwrap() error { return e.Err }
