package page

import "errors"

// ErrColumnOutOfRange is returned when a caller-supplied column (or
// column+width, or limitRight) falls outside [0, W).
var ErrColumnOutOfRange = errors.New("page: column out of range")
