package detect

import "errors"

// ErrInvalidKeyword is returned when a keyword is empty or only whitespace.
var ErrInvalidKeyword = errors.New("invalid keyword")
