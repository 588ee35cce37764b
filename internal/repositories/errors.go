package repositories

import "errors"

var ErrNotFound = errors.New("record not found")

// IsNotFoundError reports whether err means the requested record is absent.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
