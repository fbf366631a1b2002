package launchpad

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

// defaultSection is used when a navigation body names no section.
const defaultSection = "onboarding"

// SaveAndContinue records the caller's position and returns the route of
// the next step. The body carries "section" and "step".
func (s *Service) SaveAndContinue(ctx context.Context, req *types.Request) (any, error) {
	if req.UserID == "" {
		return errorDoc(msgMissingUser), nil
	}
	section, step, ok := position(req.Body)
	if !ok {
		return errorDoc(msgMissingStep), nil
	}

	if err := s.save(ctx, types.CollectionNavigation, req.UserID, types.Document{
		"section":   section,
		"step":      step,
		"updatedAt": s.timestamp(),
	}); err != nil {
		return nil, err
	}

	next := step + 1
	return types.Document{
		"success":   true,
		"nextRoute": fmt.Sprintf("/%s/%d", section, next),
		"nextStep":  next,
		"message":   "Progress saved. Continue to next step.",
	}, nil
}

// SaveAndExit records the caller's position under a new resume token and
// returns the token.
func (s *Service) SaveAndExit(ctx context.Context, req *types.Request) (any, error) {
	if req.UserID == "" {
		return errorDoc(msgMissingUser), nil
	}
	section, step, ok := position(req.Body)
	if !ok {
		return errorDoc(msgMissingStep), nil
	}

	token := s.newID()
	if err := s.save(ctx, types.CollectionNavigation, req.UserID, types.Document{
		"section":     section,
		"step":        step,
		"resumeToken": token,
		"exitedAt":    s.timestamp(),
	}); err != nil {
		return nil, err
	}
	return types.Document{
		"success":     true,
		"resumeToken": token,
		"message":     "Progress saved. You can resume later.",
	}, nil
}

func position(body types.Document) (string, int, bool) {
	if body == nil {
		return "", 0, false
	}
	step, ok := types.AsInt(body["step"])
	if !ok {
		return "", 0, false
	}
	section := body.String("section")
	if section == "" {
		section = defaultSection
	}
	return section, step, true
}
