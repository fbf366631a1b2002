package api

import (
	"net/http"

	"github.com/mesh-intelligence/launchpad/internal/fallback"
	"github.com/mesh-intelligence/launchpad/internal/launchpad"
)

// Kind classifies how a route is served.
type Kind int

// Route kinds.
const (
	// KindRead returns a document.
	KindRead Kind = iota
	// KindWrite stores the request body and returns an acknowledgement.
	KindWrite
	// KindStepRead returns the document for a step.
	KindStepRead
	// KindStepSave stores the request body for a step.
	KindStepSave
)

// Stepped reports whether the route takes a step number.
func (k Kind) Stepped() bool {
	return k == KindStepRead || k == KindStepSave
}

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	case KindStepRead:
		return "step"
	case KindStepSave:
		return "step-save"
	default:
		return "unknown"
	}
}

// Route describes one endpoint.
type Route struct {
	// Name is the key passed to API.Call.
	Name string
	// Method and Path document the HTTP shape of the endpoint.
	Method string
	Path   string
	// Feature selects the canned payload used by fallback and v1.
	Feature fallback.Feature
	Kind    Kind

	adapter func(*launchpad.Service) launchpad.Adapter
}

func stepRoutes(name, path string, feature fallback.Feature) []Route {
	collection := launchpad.StepCollections[string(feature)]
	return []Route{
		{
			Name: name + ".step", Method: http.MethodGet, Path: path + "/{step}",
			Feature: feature, Kind: KindStepRead,
			adapter: func(s *launchpad.Service) launchpad.Adapter { return s.GetStep(collection) },
		},
		{
			Name: name + ".save", Method: http.MethodPost, Path: path + "/{step}/save",
			Feature: feature, Kind: KindStepSave,
			adapter: func(s *launchpad.Service) launchpad.Adapter { return s.SaveStep(collection) },
		},
	}
}

// routeTable lists every endpoint in display order.
var routeTable = concat(
	[]Route{
		{Name: "home", Method: http.MethodGet, Path: "/home", Feature: fallback.FeatureHome, Kind: KindRead,
			adapter: func(s *launchpad.Service) launchpad.Adapter { return s.Home }},
		{Name: "wellness.intro", Method: http.MethodGet, Path: "/wellness/intro", Feature: fallback.FeatureWellness, Kind: KindRead,
			adapter: func(s *launchpad.Service) launchpad.Adapter { return s.WellnessIntro }},
	},
	stepRoutes("onboarding", "/onboarding", fallback.FeatureOnboarding),
	stepRoutes("profile", "/profile/basic", fallback.FeatureProfile),
	stepRoutes("goals", "/goals", fallback.FeatureGoals),
	stepRoutes("trackers", "/trackers", fallback.FeatureTrackers),
	stepRoutes("hra", "/hra", fallback.FeatureHRA),
	[]Route{
		{Name: "hra.report", Method: http.MethodGet, Path: "/hra/report", Feature: fallback.FeatureHRAReport, Kind: KindRead,
			adapter: func(s *launchpad.Service) launchpad.Adapter { return s.HRAReport }},
		{Name: "activity.dashboard", Method: http.MethodGet, Path: "/activity/dashboard", Feature: fallback.FeatureActivity, Kind: KindRead,
			adapter: func(s *launchpad.Service) launchpad.Adapter { return s.ActivityDashboard }},
		{Name: "activity.log", Method: http.MethodPost, Path: "/activity/log", Feature: fallback.FeatureActivityLog, Kind: KindWrite,
			adapter: func(s *launchpad.Service) launchpad.Adapter { return s.LogActivity }},
		{Name: "activity.goals", Method: http.MethodPost, Path: "/activity/goals/update", Feature: fallback.FeatureActivityGoals, Kind: KindWrite,
			adapter: func(s *launchpad.Service) launchpad.Adapter { return s.UpdateActivityGoals }},
		{Name: "search", Method: http.MethodGet, Path: "/search", Feature: fallback.FeatureSearch, Kind: KindRead,
			adapter: func(s *launchpad.Service) launchpad.Adapter { return s.SearchSuggestions }},
		{Name: "search.query", Method: http.MethodPost, Path: "/search/query", Feature: fallback.FeatureSearchResults, Kind: KindRead,
			adapter: func(s *launchpad.Service) launchpad.Adapter { return s.SearchQuery }},
		{Name: "navigation.continue", Method: http.MethodPost, Path: "/navigation/save-continue", Feature: fallback.FeatureNavigation, Kind: KindWrite,
			adapter: func(s *launchpad.Service) launchpad.Adapter { return s.SaveAndContinue }},
		{Name: "navigation.exit", Method: http.MethodPost, Path: "/navigation/save-exit", Feature: fallback.FeatureNavigationExit, Kind: KindWrite,
			adapter: func(s *launchpad.Service) launchpad.Adapter { return s.SaveAndExit }},
		{Name: "user.progress", Method: http.MethodGet, Path: "/user/progress", Feature: fallback.FeatureUserProgress, Kind: KindRead,
			adapter: func(s *launchpad.Service) launchpad.Adapter { return s.UserProgress }},
		{Name: "user.progress.update", Method: http.MethodPost, Path: "/user/progress/update", Feature: fallback.FeatureUserProgressUpdate, Kind: KindWrite,
			adapter: func(s *launchpad.Service) launchpad.Adapter { return s.UpdateUserProgress }},
	},
)

// Table returns every endpoint in display order.
func Table() []Route {
	out := make([]Route, len(routeTable))
	copy(out, routeTable)
	return out
}

func concat(groups ...[]Route) []Route {
	var out []Route
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
