package launchpad

import (
	"context"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

// HomeConfigKey is the configs document whose value lists the fields of the
// home screen.
const HomeConfigKey = "homePage"

// Home returns the caller's home data conformed to the homePage config:
// exactly the config's keys, each taken from the user's data (nil when the
// user has no value). Missing config or data yields nil.
func (s *Service) Home(ctx context.Context, req *types.Request) (any, error) {
	if req.UserID == "" {
		return errorDoc(msgMissingUser), nil
	}
	config, err := s.field(ctx, types.CollectionConfigs, HomeConfigKey, "value")
	if err != nil || config == nil {
		return nil, err
	}
	data, err := s.field(ctx, types.CollectionHomeData, req.UserID, "data")
	if err != nil || data == nil {
		return nil, err
	}

	conformed := make(types.Document, len(config))
	for k := range config {
		conformed[k] = data[k]
	}
	return conformed, nil
}

// WellnessIntro returns the caller's wellness intro document.
func (s *Service) WellnessIntro(ctx context.Context, req *types.Request) (any, error) {
	if req.UserID == "" {
		return errorDoc(msgMissingUser), nil
	}
	return nilIfEmpty(s.field(ctx, types.CollectionWellness, req.UserID, "intro"))
}

// nilIfEmpty turns a nil Document into an untyped nil result.
func nilIfEmpty(doc types.Document, err error) (any, error) {
	if err != nil || doc == nil {
		return nil, err
	}
	return doc, nil
}
