package seeder

import (
	"sync"

	"moviedb/internal/models"
)

// Resolver tracks which shared entities (genres, persons) have already
// been committed during the current run, so a person appearing in fifty
// movies is upserted once per run instead of fifty times. Entities are
// marked only after their write commits; until then concurrent workers
// may upsert the same row twice, which the upserts tolerate. It is safe
// for use from concurrent workers.
type Resolver struct {
	mu          sync.Mutex
	seenGenres  map[int64]struct{}
	seenPersons map[int64]struct{}
}

func NewResolver() *Resolver {
	return &Resolver{
		seenGenres:  make(map[int64]struct{}),
		seenPersons: make(map[int64]struct{}),
	}
}

// Reset forgets all committed entities. Batch runs call it on start so
// a long-lived process still refreshes persons and genres every run.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seenGenres = make(map[int64]struct{})
	r.seenPersons = make(map[int64]struct{})
}

// FilterGenres dedupes a batch (last occurrence wins) and drops genres
// already committed this run.
func (r *Resolver) FilterGenres(in []models.Genre) []models.Genre {
	deduped := DedupeGenres(in)

	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Genre, 0, len(deduped))
	for _, g := range deduped {
		if _, seen := r.seenGenres[g.ID]; seen {
			continue
		}
		out = append(out, g)
	}
	return out
}

// MarkGenres records genres as committed.
func (r *Resolver) MarkGenres(genres []models.Genre) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range genres {
		r.seenGenres[g.ID] = struct{}{}
	}
}

// FilterPersons dedupes a batch (last occurrence wins) and drops persons
// already committed this run.
func (r *Resolver) FilterPersons(in []models.Person) []models.Person {
	deduped := DedupePersons(in)

	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Person, 0, len(deduped))
	for _, p := range deduped {
		if _, seen := r.seenPersons[p.ID]; seen {
			continue
		}
		out = append(out, p)
	}
	return out
}

// MarkPersons records persons as committed.
func (r *Resolver) MarkPersons(persons []models.Person) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range persons {
		r.seenPersons[p.ID] = struct{}{}
	}
}

// DedupeGenres keeps the last occurrence per id, preserving first-seen
// order. A movie payload occasionally repeats a genre.
func DedupeGenres(in []models.Genre) []models.Genre {
	byID := make(map[int64]models.Genre, len(in))
	order := make([]int64, 0, len(in))
	for _, g := range in {
		if _, ok := byID[g.ID]; !ok {
			order = append(order, g.ID)
		}
		byID[g.ID] = g
	}
	out := make([]models.Genre, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}

// DedupePersons keeps the last occurrence per id, preserving first-seen
// order. One person often holds several credits on the same movie.
func DedupePersons(in []models.Person) []models.Person {
	byID := make(map[int64]models.Person, len(in))
	order := make([]int64, 0, len(in))
	for _, p := range in {
		if _, ok := byID[p.ID]; !ok {
			order = append(order, p.ID)
		}
		byID[p.ID] = p
	}
	out := make([]models.Person, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}
