package vtc

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrNoFiles indicates an evaluation without any reference file.
	ErrNoFiles = errors.New("vtc: no reference files")

	// ErrNilProfile indicates an Evaluator built without a class profile.
	ErrNilProfile = errors.New("vtc: nil profile")
)
