package database

import "errors"

// ErrNotReady is returned by Ping while the registry database is unreachable.
var ErrNotReady = errors.New("registry database unreachable")
