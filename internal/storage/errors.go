package storage

import "errors"

// Sentinels shared by every backend. Stored series and runs are write-once:
// a computed table is never overwritten in place.
var (
	// ErrNotFound means no run or series exists under the requested id.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey means a series or run id is already stored.
	ErrDuplicateKey = errors.New("duplicate key: stored series and runs are write-once")

	// ErrInvalidInput flags an empty id, account or row set.
	ErrInvalidInput = errors.New("invalid input")
)
