package sqlite

import (
	"fmt"
	"testing"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

// newBenchCollection attaches an on_close backend so writes stay in SQLite
// until the benchmark ends, and seeds n search documents.
func newBenchCollection(b *testing.B, n int) types.Collection {
	b.Helper()
	config := testConfig(b.TempDir())
	config.SQLiteConfig.SyncStrategy = types.SyncOnClose

	backend := NewBackend()
	if err := backend.Attach(config); err != nil {
		b.Fatalf("attach: %v", err)
	}
	b.Cleanup(func() { _ = backend.Detach() })

	c, err := backend.GetCollection(types.CollectionSearch)
	if err != nil {
		b.Fatalf("get collection: %v", err)
	}
	for i := 0; i < n; i++ {
		doc := types.Document{
			"title":       fmt.Sprintf("Exercise %d", i),
			"description": fmt.Sprintf("Routine number %d for beginners", i),
		}
		if err := c.Set(ctx(), fmt.Sprintf("doc-%d", i), doc); err != nil {
			b.Fatalf("seed %d: %v", i, err)
		}
	}
	return c
}

func BenchmarkCollectionSet(b *testing.B) {
	c := newBenchCollection(b, 0)
	doc := types.Document{"title": "Push-ups", "duration": "10 min"}

	for i := 0; b.Loop(); i++ {
		if err := c.Set(ctx(), fmt.Sprintf("doc-%d", i%1000), doc); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCollectionGet(b *testing.B) {
	const n = 1000
	c := newBenchCollection(b, n)

	for i := 0; b.Loop(); i++ {
		if _, err := c.Get(ctx(), fmt.Sprintf("doc-%d", i%n)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCollectionSearch(b *testing.B) {
	for _, n := range []int{100, 1000} {
		b.Run(fmt.Sprintf("docs=%d", n), func(b *testing.B) {
			c := newBenchCollection(b, n)
			for b.Loop() {
				if _, err := c.Search(ctx(), "number 4", "title", "description"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
