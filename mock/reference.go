package mock

import (
	"context"

	"github.com/fwojciec/xconnector"
)

var _ xconnector.ReferenceService = (*ReferenceService)(nil)

// ReferenceService is a mock implementation of xconnector.ReferenceService.
type ReferenceService struct {
	FindReferenceFn func(ctx context.Context, dataset xconnector.SourceID, identifier string, values []string) (xconnector.Table, error)
	FindRelatedFn   func(ctx context.Context, dataset xconnector.SourceID, related string, rows xconnector.Table) (xconnector.Table, error)
}

func (s *ReferenceService) FindReference(ctx context.Context, dataset xconnector.SourceID, identifier string, values []string) (xconnector.Table, error) {
	return s.FindReferenceFn(ctx, dataset, identifier, values)
}

func (s *ReferenceService) FindRelated(ctx context.Context, dataset xconnector.SourceID, related string, rows xconnector.Table) (xconnector.Table, error) {
	return s.FindRelatedFn(ctx, dataset, related, rows)
}
