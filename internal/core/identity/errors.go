package identity

import "errors"

// ErrNotFound is returned by a NameDirectory when the id has no display name
var ErrNotFound = errors.New("name not found")
