package seeder

import (
	"context"
	"fmt"
	"sync"

	"moviedb/internal/models"
	"moviedb/internal/repository"
)

// stubRepo is an in-memory CatalogRepository for seeder tests.
type stubRepo struct {
	mu      sync.Mutex
	nextID  uint
	movies  map[int64]models.Movie
	genres  map[int64]models.Genre
	links   map[string]models.MovieGenre
	images  map[string]models.Image
	persons map[int64]models.Person
	credits map[string]models.MovieCredit
	states  map[string]models.SeedState

	failPersons   error
	personsErrs   []error
	failCreditIDs map[string]error
	personsCalls  int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		movies:  map[int64]models.Movie{},
		genres:  map[int64]models.Genre{},
		links:   map[string]models.MovieGenre{},
		images:  map[string]models.Image{},
		persons: map[int64]models.Person{},
		credits: map[string]models.MovieCredit{},
		states:  map[string]models.SeedState{},
	}
}

func (r *stubRepo) InTx(ctx context.Context, fn func(tx repository.CatalogRepository) error) error {
	return fn(r)
}

func (r *stubRepo) UpsertMovie(ctx context.Context, movie *models.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.movies[movie.MovieID]; ok {
		movie.ID = existing.ID
	} else {
		r.nextID++
		movie.ID = r.nextID
	}
	r.movies[movie.MovieID] = *movie
	return nil
}

func (r *stubRepo) UpsertGenres(ctx context.Context, genres []models.Genre) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range genres {
		r.genres[g.ID] = g
	}
	return nil
}

func (r *stubRepo) UpsertMovieGenres(ctx context.Context, links []models.MovieGenre) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range links {
		r.links[fmt.Sprintf("%d:%d", l.MovieID, l.GenreID)] = l
	}
	return nil
}

func (r *stubRepo) UpsertImages(ctx context.Context, images []models.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, img := range images {
		r.images[fmt.Sprintf("%d:%s:%s", img.MovieID, img.Type, img.FilePath)] = img
	}
	return nil
}

func (r *stubRepo) UpsertPersons(ctx context.Context, persons []models.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.personsCalls++
	if len(r.personsErrs) > 0 {
		err := r.personsErrs[0]
		r.personsErrs = r.personsErrs[1:]
		return err
	}
	if r.failPersons != nil {
		return r.failPersons
	}
	for _, p := range persons {
		r.persons[p.ID] = p
	}
	return nil
}

func (r *stubRepo) UpsertCredit(ctx context.Context, credit models.MovieCredit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failCreditIDs[credit.CreditID]; ok {
		return err
	}
	r.credits[credit.CreditID] = credit
	return nil
}

func (r *stubRepo) GetMovieByExternalID(ctx context.Context, movieID int64) (*models.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.movies[movieID]; ok {
		out := m
		return &out, nil
	}
	return nil, nil
}

func (r *stubRepo) ListMovies(ctx context.Context, params repository.ListMoviesParams) ([]models.Movie, error) {
	return nil, nil
}

func (r *stubRepo) CountMovies(ctx context.Context, params repository.ListMoviesParams) (int64, error) {
	return 0, nil
}

func (r *stubRepo) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return nil, nil
}

func (r *stubRepo) ListGenresByMovieID(ctx context.Context, id uint) ([]models.Genre, error) {
	return nil, nil
}

func (r *stubRepo) ListImagesByMovieID(ctx context.Context, id uint) ([]models.Image, error) {
	return nil, nil
}

func (r *stubRepo) ListCreditsByMovieID(ctx context.Context, id uint) ([]models.MovieCredit, error) {
	return nil, nil
}

func (r *stubRepo) GetSeedState(ctx context.Context, scope string) (*models.SeedState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.states[scope]; ok {
		out := s
		return &out, nil
	}
	return nil, nil
}

func (r *stubRepo) SaveSeedState(ctx context.Context, state *models.SeedState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state.Scope] = *state
	return nil
}

func (r *stubRepo) ListSeedStates(ctx context.Context) ([]models.SeedState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.SeedState, 0, len(r.states))
	for _, s := range r.states {
		out = append(out, s)
	}
	return out, nil
}

// stubFetcher serves canned payloads and can fail a call a few times
// before succeeding.
type stubFetcher struct {
	mu          sync.Mutex
	movies      map[int64]string
	credits     map[int64]string
	images      map[int64]string
	genres      string
	popular     map[int]string
	movieErrs   map[int64][]error
	popularErrs map[int][]error
	movieCalls  map[int64]int
	pagesSeen   []int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		movies:      map[int64]string{},
		credits:     map[int64]string{},
		images:      map[int64]string{},
		popular:     map[int]string{},
		movieErrs:   map[int64][]error{},
		popularErrs: map[int][]error{},
		movieCalls:  map[int64]int{},
	}
}

func (f *stubFetcher) FetchMovie(ctx context.Context, movieID int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movieCalls[movieID]++
	if q := f.movieErrs[movieID]; len(q) > 0 {
		err := q[0]
		f.movieErrs[movieID] = q[1:]
		return nil, err
	}
	if body, ok := f.movies[movieID]; ok {
		return []byte(body), nil
	}
	return nil, fmt.Errorf("no stub movie %d", movieID)
}

func (f *stubFetcher) FetchCredits(ctx context.Context, movieID int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if body, ok := f.credits[movieID]; ok {
		return []byte(body), nil
	}
	return []byte(`{"cast": [], "crew": []}`), nil
}

func (f *stubFetcher) FetchImages(ctx context.Context, movieID int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if body, ok := f.images[movieID]; ok {
		return []byte(body), nil
	}
	return []byte(`{"backdrops": [], "logos": [], "posters": []}`), nil
}

func (f *stubFetcher) FetchGenres(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.genres != "" {
		return []byte(f.genres), nil
	}
	return []byte(`{"genres": []}`), nil
}

func (f *stubFetcher) FetchPopular(ctx context.Context, page int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pagesSeen = append(f.pagesSeen, page)
	if q := f.popularErrs[page]; len(q) > 0 {
		err := q[0]
		f.popularErrs[page] = q[1:]
		return nil, err
	}
	if body, ok := f.popular[page]; ok {
		return []byte(body), nil
	}
	return []byte(`{"results": []}`), nil
}
