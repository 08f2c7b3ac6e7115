package ports

import (
	"context"
	"route-selection-client/internal/domain"
)

// ArtifactHandle is an opaque, releasable reference to a stored map document.
type ArtifactHandle interface {
	ID() string
	// URL is where view code loads the document from while the handle is live.
	URL() string
	// Release frees the document. Releasing twice returns an error.
	Release(ctx context.Context) error
}

// ArtifactStore turns rendered documents into handles.
type ArtifactStore interface {
	Create(ctx context.Context, doc domain.Document) (ArtifactHandle, error)
}
