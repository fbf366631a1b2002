package launchpad

import (
	"context"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

// HRAReport returns the caller's health-risk assessment report.
func (s *Service) HRAReport(ctx context.Context, req *types.Request) (any, error) {
	if req.UserID == "" {
		return errorDoc(msgMissingUser), nil
	}
	return nilIfEmpty(s.field(ctx, types.CollectionHRA, req.UserID, "report"))
}

// ActivityDashboard returns the caller's activity dashboard.
func (s *Service) ActivityDashboard(ctx context.Context, req *types.Request) (any, error) {
	if req.UserID == "" {
		return errorDoc(msgMissingUser), nil
	}
	return nilIfEmpty(s.field(ctx, types.CollectionActivities, req.UserID, "dashboard"))
}

// LogActivity appends req.Body to the caller's activity log. The entry gets
// an id when it has none and a loggedAt timestamp.
func (s *Service) LogActivity(ctx context.Context, req *types.Request) (any, error) {
	if req.UserID == "" {
		return errorDoc(msgMissingUser), nil
	}
	if req.Body == nil {
		return errorDoc(msgMissingBody), nil
	}

	entry := req.Body.Clone()
	id := entry.String("id")
	if id == "" {
		id = s.newID()
		entry["id"] = id
	}
	entry["loggedAt"] = s.timestamp()

	c, err := s.store.GetCollection(types.CollectionActivities)
	if err != nil {
		return nil, err
	}
	if err := c.Push(ctx, req.UserID, "logs", map[string]any(entry)); err != nil {
		return nil, err
	}
	return types.Document{"success": true, "activityId": id}, nil
}

// UpdateActivityGoals replaces the caller's activity goals with req.Body.
func (s *Service) UpdateActivityGoals(ctx context.Context, req *types.Request) (any, error) {
	if req.UserID == "" {
		return errorDoc(msgMissingUser), nil
	}
	if req.Body == nil {
		return errorDoc(msgMissingBody), nil
	}
	goals := map[string]any(req.Body.Clone())
	if err := s.save(ctx, types.CollectionActivities, req.UserID, types.Document{"goals": goals}); err != nil {
		return nil, err
	}
	return types.Document{"success": true, "updatedGoals": map[string]any(req.Body.Clone())}, nil
}
