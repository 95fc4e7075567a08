package recommend

import (
	"context"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"cinevault/models"
)

// BuildPool flattens a section map into one deduplicated candidate pool.
// Sections routinely overlap (trending movies reappear under suggestions);
// each movie counts once, keyed by its canonical identity. Section names are
// visited in sorted order so the pool layout is deterministic.
func BuildPool(sections map[string][]models.MovieRecord) []models.MovieRecord {
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[string]struct{})
	var flat []models.MovieRecord
	for _, name := range names {
		for _, movie := range sections[name] {
			if movie.ID == "" {
				continue
			}
			if _, dup := seen[movie.ID]; dup {
				continue
			}
			seen[movie.ID] = struct{}{}
			flat = append(flat, movie)
		}
	}
	return flat
}

// SectionFetcher retrieves one source's section map.
type SectionFetcher func(ctx context.Context) (map[string][]models.MovieRecord, error)

// FetchPool fetches sections from all sources concurrently and merges them
// into one deduplicated pool. The first fetch error cancels the rest.
func FetchPool(ctx context.Context, fetchers ...SectionFetcher) ([]models.MovieRecord, error) {
	p := pool.NewWithResults[map[string][]models.MovieRecord]().
		WithContext(ctx).
		WithCancelOnError()

	for _, fetch := range fetchers {
		fetch := fetch
		p.Go(func(ctx context.Context) (map[string][]models.MovieRecord, error) {
			return fetch(ctx)
		})
	}

	results, err := p.Wait()
	if err != nil {
		return nil, err
	}

	merged := make(map[string][]models.MovieRecord)
	for i, sections := range results {
		for name, movies := range sections {
			// Prefix with the source index so same-named sections from
			// different sources do not clobber each other.
			merged[sectionKey(i, name)] = movies
		}
	}
	return BuildPool(merged), nil
}

func sectionKey(source int, name string) string {
	return string(rune('a'+source)) + ":" + name
}
