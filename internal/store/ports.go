package store

import (
	"context"
	"errors"

	"pantry/internal/core"
)

// Ports for outbound document stores.
type (
	Loader interface {
		// Load fetches the whole document. Implementations fall back to the
		// default document on a missing or unreadable remote file instead of
		// failing the caller.
		Load(ctx context.Context) (core.Document, error)
	}

	Saver interface {
		// Save rewrites the whole document. There is no partial update.
		Save(ctx context.Context, doc core.Document) error
	}

	Store interface {
		Loader
		Saver
	}
)

// ErrConflict is returned by compare-and-swap writes when the remote
// version token moved under us.
var ErrConflict = errors.New("document version conflict")
