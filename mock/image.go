package mock

import (
	"context"

	"github.com/fwojciec/xconnector"
)

var _ xconnector.ImageStore = (*ImageStore)(nil)

// ImageStore is a mock implementation of xconnector.ImageStore.
type ImageStore struct {
	SaveFn   func(ctx context.Context, img *xconnector.Image) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *ImageStore) Save(ctx context.Context, img *xconnector.Image) error {
	return s.SaveFn(ctx, img)
}

func (s *ImageStore) Commit() error {
	return s.CommitFn()
}

func (s *ImageStore) Abort() error {
	return s.AbortFn()
}
