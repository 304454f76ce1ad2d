// Package ra is a repository-access plugin registry: one Plugin per
// URL scheme, dispatched by Registry. Only the session surface
// pkg/client.Switch drives is implemented; commit-side operations are
// stubbed, since this module never initiates a commit.
package ra

import (
	"context"

	"github.com/utkarsh5026/gosvn/pkg/editor"
)

// Session is an open repository-access session.
type Session interface {
	// LatestRevision returns the repository's youngest revision,
	// mirroring what a real RA layer would fetch over the wire before
	// an update or switch.
	LatestRevision(ctx context.Context) (int64, error)

	// Update drives ed with the tree delta between fromRevision and
	// toRevision. toRevision == LatestRevision's result for a plain
	// update; a switch additionally changes the session's URL before
	// calling Update.
	Update(ctx context.Context, fromRevision, toRevision int64, ed editor.Editor) error

	// GetCommitEditor is stubbed: this module never drives a commit.
	GetCommitEditor(ctx context.Context) (editor.Editor, error)

	Close() error
}

// Plugin opens Sessions against repository URLs of one scheme.
type Plugin interface {
	// Scheme is the URL scheme this plugin handles, e.g. "file" or "svn".
	Scheme() string

	// Open starts a session against rawURL.
	Open(ctx context.Context, rawURL string) (Session, error)
}
