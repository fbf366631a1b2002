package fallback

import (
	"github.com/mesh-intelligence/launchpad/pkg/types"
)

// Feature names an endpoint family. It is the key into the dispatch table and
// the registry.
type Feature string

// Features served by the launchpad endpoints.
const (
	FeatureHome               Feature = "home"
	FeatureWellness           Feature = "wellness"
	FeatureOnboarding         Feature = "onboarding"
	FeatureProfile            Feature = "profile"
	FeatureGoals              Feature = "goals"
	FeatureTrackers           Feature = "trackers"
	FeatureHRA                Feature = "hra"
	FeatureHRAReport          Feature = "hra_report"
	FeatureActivity           Feature = "activity"
	FeatureActivityLog        Feature = "activity_log"
	FeatureActivityGoals      Feature = "activity_goals"
	FeatureSearch             Feature = "search"
	FeatureSearchResults      Feature = "search_results"
	FeatureNavigation         Feature = "navigation"
	FeatureNavigationExit     Feature = "navigation_exit"
	FeatureUserProgress       Feature = "user_progress"
	FeatureUserProgressUpdate Feature = "user_progress_update"
)

// StepFeatures are the features whose payloads are indexed by step.
var StepFeatures = []Feature{
	FeatureOnboarding,
	FeatureProfile,
	FeatureGoals,
	FeatureTrackers,
	FeatureHRA,
}

// simpleFeatures are served by a plain registry lookup.
var simpleFeatures = []Feature{
	FeatureHome,
	FeatureWellness,
	FeatureHRAReport,
	FeatureActivity,
	FeatureActivityLog,
	FeatureActivityGoals,
	FeatureSearch,
	FeatureNavigation,
	FeatureNavigationExit,
	FeatureUserProgress,
	FeatureUserProgressUpdate,
}

// Producer builds the canned payload for one request. It returns nil when no
// payload exists. Producers receive the same request as the wrapped
// operation.
type Producer func(req *types.Request) types.Document

// Table maps each feature to its Producer.
type Table map[Feature]Producer

// NewTable builds the dispatch table for every known feature over reg.
func NewTable(reg Registry) Table {
	t := make(Table, len(simpleFeatures)+len(StepFeatures)+1)
	for _, f := range simpleFeatures {
		t[f] = registryProducer(reg, f)
	}
	for _, f := range StepFeatures {
		t[f] = stepProducer(reg, f)
	}
	t[FeatureSearchResults] = searchResultsProducer(reg)
	return t
}

func registryProducer(reg Registry, f Feature) Producer {
	return func(*types.Request) types.Document {
		doc, _ := reg.Get(string(f))
		return doc
	}
}

func stepProducer(reg Registry, f Feature) Producer {
	return func(req *types.Request) types.Document {
		doc, _ := reg.GetStep(string(f), req.Step)
		return doc
	}
}

// searchResultsProducer echoes the request's query text in the canned
// results so the caller sees their own search term.
func searchResultsProducer(reg Registry) Producer {
	return func(req *types.Request) types.Document {
		doc, ok := reg.Get(string(FeatureSearchResults))
		if !ok {
			return nil
		}
		q := req.Query()
		doc["query"] = q
		if q != "" {
			suggestions, _ := doc["suggestions"].([]any)
			doc["suggestions"] = append([]any{q + " for beginners"}, suggestions...)
		}
		return doc
	}
}

// Endpoint describes how one operation is wrapped.
type Endpoint struct {
	// Feature selects the registry entry and dispatch-table producer.
	Feature Feature
	// Stepped selects the step-indexed variant: a missing step payload
	// yields a 404 outcome instead of a marked body.
	Stepped bool
	// Fallback overrides the dispatch-table producer when set.
	Fallback Producer
}
