package launchpad

import (
	"context"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

// UserProgress returns the caller's progress document.
func (s *Service) UserProgress(ctx context.Context, req *types.Request) (any, error) {
	if req.UserID == "" {
		return errorDoc(msgMissingUser), nil
	}
	return nilIfEmpty(s.field(ctx, types.CollectionUserProgress, req.UserID, "progress"))
}

// UpdateUserProgress replaces the caller's progress with req.Body and echoes
// it back.
func (s *Service) UpdateUserProgress(ctx context.Context, req *types.Request) (any, error) {
	if req.UserID == "" {
		return errorDoc(msgMissingUser), nil
	}
	if req.Body == nil {
		return errorDoc(msgMissingBody), nil
	}
	progress := map[string]any(req.Body.Clone())
	if err := s.save(ctx, types.CollectionUserProgress, req.UserID, types.Document{"progress": progress}); err != nil {
		return nil, err
	}
	return types.Document{"success": true, "updatedProgress": map[string]any(req.Body.Clone())}, nil
}
