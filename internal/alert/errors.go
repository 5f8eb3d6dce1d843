package alert

import "github.com/pkg/errors"

// Engine errors map one-to-one onto HTTP statuses at the server boundary.
var (
	ErrValidation = errors.New("invalid saved search")           // 400
	ErrConflict   = errors.New("duplicate saved search")         // 409
	ErrQuota      = errors.New("saved search limit reached")     // 429
	ErrNotFound   = errors.New("saved search not found")         // 404
	ErrDependency = errors.New("saved search store unavailable") // 500
)
