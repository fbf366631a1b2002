package launchpad

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

// stepsField holds a user's saved steps in every step collection.
const stepsField = "steps"

// StepCollections maps each step-indexed feature to its collection.
var StepCollections = map[string]string{
	"onboarding": types.CollectionOnboarding,
	"profile":    types.CollectionProfiles,
	"goals":      types.CollectionGoals,
	"trackers":   types.CollectionTrackers,
	"hra":        types.CollectionHRA,
}

// GetStep returns the adapter that reads the caller's saved req.Step from
// collection. It yields nil when the user or the step is missing.
func (s *Service) GetStep(collection string) Adapter {
	return func(ctx context.Context, req *types.Request) (any, error) {
		if req.UserID == "" {
			return errorDoc(msgMissingUser), nil
		}
		doc, err := s.load(ctx, collection, req.UserID)
		if err != nil || doc == nil {
			return nil, err
		}
		steps, _ := doc[stepsField].([]any)
		if i := findStep(steps, req.Step); i >= 0 {
			entry, _ := types.AsDocument(steps[i])
			return entry.Clone(), nil
		}
		return nil, nil
	}
}

// SaveStep returns the adapter that stores req.Body as the caller's
// req.Step in collection. The saved entry is stamped with its step number
// and replaces any earlier entry for the same step.
func (s *Service) SaveStep(collection string) Adapter {
	return func(ctx context.Context, req *types.Request) (any, error) {
		if req.UserID == "" {
			return errorDoc(msgMissingUser), nil
		}
		if req.Body == nil {
			return errorDoc(msgMissingBody), nil
		}

		doc, err := s.load(ctx, collection, req.UserID)
		if err != nil {
			return nil, err
		}

		entry := map[string]any(req.Body.Clone())
		entry["step"] = req.Step

		var steps []any
		if doc != nil {
			existing, _ := doc[stepsField].([]any)
			steps = append(steps, existing...)
		}
		if i := findStep(steps, req.Step); i >= 0 {
			steps[i] = entry
		} else {
			steps = append(steps, entry)
		}

		if err := s.save(ctx, collection, req.UserID, types.Document{stepsField: steps}); err != nil {
			return nil, err
		}
		logger.Debugf("saved %s step %d for %s", collection, req.Step, req.UserID)
		return types.Document{
			"success":  true,
			"nextStep": req.Step + 1,
			"message":  fmt.Sprintf("Step %d saved successfully.", req.Step),
		}, nil
	}
}

// findStep returns the index of the entry whose step equals step, or -1.
func findStep(steps []any, step int) int {
	for i, s := range steps {
		entry, ok := types.AsDocument(s)
		if !ok {
			continue
		}
		if n, ok := types.AsInt(entry["step"]); ok && n == step {
			return i
		}
	}
	return -1
}
