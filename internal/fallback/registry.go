package fallback

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

//go:embed fallbacks.yaml
var defaultRegistryYAML []byte

// Registry holds canned payloads keyed by feature and, for step-indexed
// features, by step. Lookups never fail: a missing entry reports false.
type Registry interface {
	Get(feature string) (types.Document, bool)
	GetStep(feature string, step int) (types.Document, bool)
}

// Catalog is a Registry that can list what it holds.
type Catalog interface {
	Registry
	// Features returns the non-step feature names, sorted.
	Features() []string
	// StepFeatures returns each step feature with its sorted steps.
	StepFeatures() map[string][]int
}

// StaticRegistry is an immutable Registry. Every lookup returns a deep copy,
// so callers may mutate what they receive.
type StaticRegistry struct {
	features map[string]types.Document
	steps    map[string]map[int]types.Document
}

// registryFile is the YAML layout accepted by LoadRegistry.
type registryFile struct {
	Features map[string]map[string]any         `yaml:"features"`
	Steps    map[string]map[int]map[string]any `yaml:"steps"`
}

// NewStaticRegistry builds a registry from in-memory documents. The maps are
// copied; later changes by the caller are not observed.
func NewStaticRegistry(features map[string]types.Document, steps map[string]map[int]types.Document) *StaticRegistry {
	r := &StaticRegistry{
		features: make(map[string]types.Document, len(features)),
		steps:    make(map[string]map[int]types.Document, len(steps)),
	}
	for name, doc := range features {
		r.features[name] = doc.Clone()
	}
	for name, byStep := range steps {
		m := make(map[int]types.Document, len(byStep))
		for step, doc := range byStep {
			m[step] = doc.Clone()
		}
		r.steps[name] = m
	}
	return r
}

// LoadRegistry parses a YAML registry document.
func LoadRegistry(data []byte) (*StaticRegistry, error) {
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing registry: %w", err)
	}

	features := make(map[string]types.Document, len(f.Features))
	for name, doc := range f.Features {
		features[name] = types.FromYAML(doc)
	}
	steps := make(map[string]map[int]types.Document, len(f.Steps))
	for name, byStep := range f.Steps {
		m := make(map[int]types.Document, len(byStep))
		for step, doc := range byStep {
			m[step] = types.FromYAML(doc)
		}
		steps[name] = m
	}
	return NewStaticRegistry(features, steps), nil
}

// DefaultRegistry returns the registry compiled into the binary.
func DefaultRegistry() (*StaticRegistry, error) {
	return LoadRegistry(defaultRegistryYAML)
}

// Chain is a Registry that consults each registry in order and returns the
// first hit.
type Chain []Registry

// Get returns the first payload registered for feature.
func (c Chain) Get(feature string) (types.Document, bool) {
	for _, r := range c {
		if doc, ok := r.Get(feature); ok {
			return doc, true
		}
	}
	return nil, false
}

// GetStep returns the first payload registered for step of feature.
func (c Chain) GetStep(feature string, step int) (types.Document, bool) {
	for _, r := range c {
		if doc, ok := r.GetStep(feature, step); ok {
			return doc, true
		}
	}
	return nil, false
}

// Features returns the union of the members' feature names, sorted.
// Members that are not a Catalog contribute nothing.
func (c Chain) Features() []string {
	seen := map[string]bool{}
	var names []string
	for _, r := range c {
		cat, ok := r.(Catalog)
		if !ok {
			continue
		}
		for _, name := range cat.Features() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// StepFeatures returns the union of the members' steps per feature.
func (c Chain) StepFeatures() map[string][]int {
	sets := map[string]map[int]bool{}
	for _, r := range c {
		cat, ok := r.(Catalog)
		if !ok {
			continue
		}
		for name, steps := range cat.StepFeatures() {
			if sets[name] == nil {
				sets[name] = map[int]bool{}
			}
			for _, step := range steps {
				sets[name][step] = true
			}
		}
	}
	out := make(map[string][]int, len(sets))
	for name, set := range sets {
		steps := make([]int, 0, len(set))
		for step := range set {
			steps = append(steps, step)
		}
		sort.Ints(steps)
		out[name] = steps
	}
	return out
}

// Get returns the payload registered for feature.
func (r *StaticRegistry) Get(feature string) (types.Document, bool) {
	doc, ok := r.features[feature]
	if !ok {
		return nil, false
	}
	return doc.Clone(), true
}

// GetStep returns the payload registered for step of feature.
func (r *StaticRegistry) GetStep(feature string, step int) (types.Document, bool) {
	byStep, ok := r.steps[feature]
	if !ok {
		return nil, false
	}
	doc, ok := byStep[step]
	if !ok {
		return nil, false
	}
	return doc.Clone(), true
}

// Features returns the names of the non-step features, sorted.
func (r *StaticRegistry) Features() []string {
	names := make([]string, 0, len(r.features))
	for name := range r.features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StepFeatures returns the step-indexed feature names with their registered
// steps, both sorted.
func (r *StaticRegistry) StepFeatures() map[string][]int {
	out := make(map[string][]int, len(r.steps))
	for name, byStep := range r.steps {
		steps := make([]int, 0, len(byStep))
		for step := range byStep {
			steps = append(steps, step)
		}
		sort.Ints(steps)
		out[name] = steps
	}
	return out
}
