package launchpad

import (
	"context"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

// SuggestionsKey is the search document holding the suggestion screen data.
const SuggestionsKey = "suggestions"

// searchFields are matched by SearchQuery.
var searchFields = []string{"title", "description"}

// SearchSuggestions returns the shared search suggestion data.
func (s *Service) SearchSuggestions(ctx context.Context, _ *types.Request) (any, error) {
	return nilIfEmpty(s.field(ctx, types.CollectionSearch, SuggestionsKey, "data"))
}

// SearchQuery matches the body's query text against the title and
// description of the search documents. An empty query or no hits yields nil.
func (s *Service) SearchQuery(ctx context.Context, req *types.Request) (any, error) {
	q := req.Query()
	if q == "" {
		return nil, nil
	}
	c, err := s.store.GetCollection(types.CollectionSearch)
	if err != nil {
		return nil, err
	}
	docs, err := c.Search(ctx, q, searchFields...)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	results := make([]any, len(docs))
	for i, d := range docs {
		results[i] = map[string]any(d)
	}
	return types.Document{
		"query":      q,
		"results":    results,
		"totalCount": len(results),
	}, nil
}
