// errors.go
package shopstate

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input parameters")
	ErrInvalidTheme       = errors.New("invalid theme")
	ErrNotFound           = errors.New("state not found")
	ErrSerialization      = errors.New("state serialization failed")
	ErrStorageUnavailable = errors.New("storage backend unavailable")
	ErrCacheUnavailable   = errors.New("cache backend unavailable")
)
