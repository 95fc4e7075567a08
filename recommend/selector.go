// Package recommend implements the "feeling lucky" picker: a weighted random
// movie selection biased toward the genres a user keeps saving, with a
// graceful fallback to the whole pool when no affinity data exists.
package recommend

import (
	"math/rand"
	"sort"
	"time"

	"cinevault/models"
)

// Affinity is a derived genre-occurrence table built from a user's saved
// list. It is ephemeral: recomputed on demand, never persisted.
type Affinity struct {
	counts map[string]int
	order  []string // genres in first-seen order, for stable tie-breaking
}

// BuildAffinity scans the entries' cached movie payloads and counts genre
// occurrences. Entries without a movie payload contribute nothing.
func BuildAffinity(entries []models.ListEntry) Affinity {
	aff := Affinity{counts: make(map[string]int)}
	for _, entry := range entries {
		if entry.Movie == nil {
			continue
		}
		for _, genre := range entry.Movie.Genres {
			if genre == "" {
				continue
			}
			if _, seen := aff.counts[genre]; !seen {
				aff.order = append(aff.order, genre)
			}
			aff.counts[genre]++
		}
	}
	return aff
}

// AffinityFromSources builds the table from the first non-empty source:
// the live list first, then the cached snapshot, then nothing. The snapshot
// fallback covers the window before the live list has loaded.
func AffinityFromSources(live, cached []models.ListEntry) Affinity {
	if len(live) > 0 {
		return BuildAffinity(live)
	}
	if len(cached) > 0 {
		return BuildAffinity(cached)
	}
	return Affinity{counts: make(map[string]int)}
}

// Empty reports whether the table holds no genre data.
func (a Affinity) Empty() bool {
	return len(a.counts) == 0
}

// Count returns the occurrence count for a genre.
func (a Affinity) Count(genre string) int {
	return a.counts[genre]
}

// Ranked returns the genres ordered by descending occurrence count. Ties
// keep first-seen order, matching the order the scan encountered them.
func (a Affinity) Ranked() []string {
	ranked := make([]string, len(a.order))
	copy(ranked, a.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return a.counts[ranked[i]] > a.counts[ranked[j]]
	})
	return ranked
}

// Select picks one movie from the pool:
//
//  1. movies sharing ANY genre with the affinity table form the candidate
//     set (union filter, not top-genre-only);
//  2. a uniform random pick is made from the candidates, or from the whole
//     pool when no candidate matched (or no affinity data exists);
//  3. an empty pool yields ok=false, which is a normal outcome, not an
//     error.
//
// Each invocation is stateless; "try another" is simply a repeated call and
// may return the same movie. Pass a nil rng for a time-seeded source.
func Select(pool []models.MovieRecord, aff Affinity, rng *rand.Rand) (models.MovieRecord, bool) {
	if len(pool) == 0 {
		return models.MovieRecord{}, false
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	candidates := Eligible(pool, aff)
	if len(candidates) == 0 {
		candidates = pool
	}

	return candidates[rng.Intn(len(candidates))], true
}

// Eligible returns the movies whose genre list intersects the affinity
// table. An empty table yields no candidates.
func Eligible(pool []models.MovieRecord, aff Affinity) []models.MovieRecord {
	if aff.Empty() {
		return nil
	}

	var eligible []models.MovieRecord
	for _, movie := range pool {
		for _, genre := range movie.Genres {
			if _, ok := aff.counts[genre]; ok {
				eligible = append(eligible, movie)
				break
			}
		}
	}
	return eligible
}
