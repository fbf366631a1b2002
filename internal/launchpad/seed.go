package launchpad

import (
	"context"
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

//go:embed seed.yaml
var defaultSeedYAML []byte

// SeedData is the reference data written by Seed.
type SeedData struct {
	// Configs are stored in the configs collection, keyed by name.
	Configs map[string]map[string]any `yaml:"configs"`
	// Search documents are stored in the search collection, keyed by name.
	Search map[string]map[string]any `yaml:"search"`
	// User maps collection names to the document written for the seeded
	// user.
	User map[string]map[string]any `yaml:"user"`
}

// SeedResult counts the documents written per collection.
type SeedResult map[string]int

// Total returns the number of documents written.
func (r SeedResult) Total() int {
	n := 0
	for _, c := range r {
		n += c
	}
	return n
}

// LoadSeedData parses a seed YAML document.
func LoadSeedData(data []byte) (*SeedData, error) {
	var sd SeedData
	if err := yaml.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("parsing seed data: %w", err)
	}
	for name := range sd.User {
		if !types.IsStandardCollection(name) {
			return nil, fmt.Errorf("seed user collection %q: %w", name, types.ErrCollectionNotFound)
		}
	}
	return &sd, nil
}

// DefaultSeedData returns the seed data compiled into the binary.
func DefaultSeedData() (*SeedData, error) {
	return LoadSeedData(defaultSeedYAML)
}

// Seed upserts the shared configs and search documents. When userID is not
// empty it also writes the demo documents for that user.
func (s *Service) Seed(ctx context.Context, data *SeedData, userID string) (SeedResult, error) {
	result := SeedResult{}

	write := func(collection string, docs map[string]map[string]any) error {
		for _, key := range sortedKeys(docs) {
			if err := s.save(ctx, collection, key, types.FromYAML(docs[key])); err != nil {
				return err
			}
			result[collection]++
		}
		return nil
	}

	if err := write(types.CollectionConfigs, data.Configs); err != nil {
		return result, err
	}
	if err := write(types.CollectionSearch, data.Search); err != nil {
		return result, err
	}

	if userID != "" {
		for _, collection := range sortedKeys(data.User) {
			if err := s.save(ctx, collection, userID, types.FromYAML(data.User[collection])); err != nil {
				return result, err
			}
			result[collection]++
		}
	}

	logger.Infof("seeded %d documents", result.Total())
	return result, nil
}

func sortedKeys(m map[string]map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
