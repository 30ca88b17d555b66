package ioextract

import "fmt"

// ArtifactWriteError happens when a pixel artifact cannot be written
// to disk.
type ArtifactWriteError struct {
	Path string
	Err  error
}

func (e *ArtifactWriteError) Error() string {
	return fmt.Sprintf("cannot write artifact '%s': %v", e.Path, e.Err)
}

func (e *ArtifactWriteError) Unwrap() error {
	return e.Err
}

// ArtifactReadError happens when a pixel artifact exists but cannot
// be read back.
type ArtifactReadError struct {
	Path string
	Err  error
}

func (e *ArtifactReadError) Error() string {
	return fmt.Sprintf("cannot read artifact '%s': %v", e.Path, e.Err)
}

func (e *ArtifactReadError) Unwrap() error {
	return e.Err
}

// OutputDirError happens when the output directory cannot be created
// or resolved.
type OutputDirError struct {
	Dir string
	Err error
}

func (e *OutputDirError) Error() string {
	return fmt.Sprintf("cannot use output directory '%s': %v", e.Dir, e.Err)
}

func (e *OutputDirError) Unwrap() error {
	return e.Err
}

// PixelError wraps a failure while extracting one pixel, keeping the
// pixel index for the operator.
type PixelError struct {
	Pixel int64
	Err   error
}

func (e *PixelError) Error() string {
	return fmt.Sprintf("extraction of pixel %d failed: %v", e.Pixel, e.Err)
}

func (e *PixelError) Unwrap() error {
	return e.Err
}
