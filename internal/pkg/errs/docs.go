// Package errs provides standardized error types for the dispatch application.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError: For when a required value is missing
//   - ValueIsInvalidError: For when a value is invalid
//   - ObjectNotFoundError: For when an object cannot be found
//   - InvalidStateError: For when an operation loses a state-transition race
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// The taxonomy maps directly onto the engine's failure semantics: validation
// failures (ErrValueIsRequired, ErrValueIsInvalid) and missing objects
// (ErrObjectNotFound) are reported to the caller and never retried, while
// ErrInvalidState marks the loser of a conditional-update race on an offer.
package errs
