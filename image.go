package xconnector

import "context"

// Image is a downloaded structure image.
type Image struct {
	Accession string
	URL       string
	Data      []byte
}

// ImageStore persists images with atomic semantics.
// Save writes to a temporary location; Commit makes changes permanent;
// Abort discards pending changes.
type ImageStore interface {
	Save(ctx context.Context, img *Image) error
	Commit() error
	Abort() error
}
