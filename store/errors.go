package store

import "errors"

// ErrProtected is returned by DeleteProject/DeleteStudent when the target
// is still referenced by a Team row.
var ErrProtected = errors.New("store: entity is referenced by an existing team")
