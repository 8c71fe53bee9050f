package probe

import "errors"

var (
	ErrEmptyURL         = errors.New("probe url cannot be empty")
	ErrInvalidTimestamp = errors.New("probe timestamp must not be zero")
)
