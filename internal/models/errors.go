package models

import "errors"

// Per-company identity errors. A company failing any of these is skipped, never retried.
var (
	ErrMissingCIK        = errors.New("company facts missing cik")
	ErrMissingEntityName = errors.New("company facts missing entityName")
	ErrMissingFacts      = errors.New("company facts missing facts")
)

// ErrNotFound is returned by point-in-time lookups with no qualifying row.
var ErrNotFound = errors.New("not found")

// IsIdentityError reports whether err marks a company as unprocessable.
func IsIdentityError(err error) bool {
	return errors.Is(err, ErrMissingCIK) || errors.Is(err, ErrMissingEntityName) || errors.Is(err, ErrMissingFacts)
}
