package seeder

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"moviedb/internal/client/tmdb"
	"moviedb/internal/config"
	"moviedb/internal/mapper"
	"moviedb/internal/models"
)

const testMoviePayload = `{
	"id": 11,
	"title": "Star Wars",
	"release_date": "1977-05-25",
	"popularity": 88.5,
	"vote_average": 8.2,
	"vote_count": 20000,
	"genres": [{"id": 12, "name": "Adventure"}, {"id": 878, "name": "Science Fiction"}]
}`

const testCreditsPayload = `{
	"cast": [{"credit_id": "abc123", "id": 2, "name": "Mark Hamill", "character": "Luke Skywalker", "order": 0}],
	"crew": [{"credit_id": "def456", "id": 1, "name": "George Lucas", "department": "Directing", "job": "Director"}]
}`

const testImagesPayload = `{
	"backdrops": [{"file_path": "/bd.jpg"}],
	"posters": [{"file_path": "/ps.jpg"}]
}`

func testConfig() config.SeedConfig {
	return config.SeedConfig{
		StartPage: 1,
		MaxPages:  5,
		Resume:    true,
		Workers:   1,
		Retries:   2,
		Backoff:   time.Millisecond,
	}
}

func newTestSeeder(repo *stubRepo, fetch *stubFetcher, cfg config.SeedConfig) *Seeder {
	return New(repo, fetch, zap.NewNop(), cfg)
}

func seededFetcher() *stubFetcher {
	f := newStubFetcher()
	f.movies[11] = testMoviePayload
	f.credits[11] = testCreditsPayload
	f.images[11] = testImagesPayload
	return f
}

func TestSeedMovieWritesAllTables(t *testing.T) {
	repo := newStubRepo()
	s := newTestSeeder(repo, seededFetcher(), testConfig())

	result := s.SeedMovie(context.Background(), 11)
	if result.Status != StatusSucceeded {
		t.Fatalf("status = %s, errors = %v", result.Status, result.Errors)
	}

	movie, ok := repo.movies[11]
	if !ok || movie.ID == 0 {
		t.Fatalf("movie row missing or without internal id: %+v", movie)
	}
	if _, ok := repo.genres[12]; !ok {
		t.Fatal("genre 12 not written")
	}
	if len(repo.links) != 2 {
		t.Fatalf("movie_genres = %d, want 2", len(repo.links))
	}
	if len(repo.images) != 2 {
		t.Fatalf("images = %d, want 2", len(repo.images))
	}
	if _, ok := repo.persons[2]; !ok {
		t.Fatal("person 2 not written")
	}
	credit, ok := repo.credits["abc123"]
	if !ok {
		t.Fatal("credit abc123 not written")
	}
	if credit.MovieID != movie.ID {
		t.Fatalf("credit movie id = %d, want %d", credit.MovieID, movie.ID)
	}
	if result.Credits != 2 || result.Persons != 2 {
		t.Fatalf("counts = %+v", result)
	}
}

func TestSeedMovieMalformedCreditDoesNotBlockSiblings(t *testing.T) {
	fetch := seededFetcher()
	fetch.credits[11] = `{
		"cast": [
			{"credit_id": "ok1", "id": 2, "name": "Mark Hamill", "order": 0},
			{"id": 3, "name": "No Credit ID", "order": 1}
		],
		"crew": [{"credit_id": "ok2", "id": 1, "name": "George Lucas", "job": "Director"}]
	}`
	repo := newStubRepo()
	s := newTestSeeder(repo, fetch, testConfig())

	result := s.SeedMovie(context.Background(), 11)
	if result.Status != StatusPartiallyFailed {
		t.Fatalf("status = %s", result.Status)
	}
	if len(repo.credits) != 2 {
		t.Fatalf("credits = %d, want the 2 well-formed rows", len(repo.credits))
	}
	if len(result.Errors) != 1 || result.Errors[0].Kind != KindMapping {
		t.Fatalf("errors = %v", result.Errors)
	}
	if _, ok := repo.movies[11]; !ok {
		t.Fatal("movie row should still be written")
	}
}

func TestSeedMovieNotFound(t *testing.T) {
	fetch := seededFetcher()
	fetch.movieErrs[11] = []error{&tmdb.APIError{Status: 404, Body: "not found"}}
	repo := newStubRepo()
	s := newTestSeeder(repo, fetch, testConfig())

	result := s.SeedMovie(context.Background(), 11)
	if result.Status != StatusFailed {
		t.Fatalf("status = %s", result.Status)
	}
	if len(result.Errors) != 1 || result.Errors[0].Kind != KindNotFound {
		t.Fatalf("errors = %v", result.Errors)
	}
	if fetch.movieCalls[11] != 1 {
		t.Fatalf("fetch calls = %d, terminal errors must not retry", fetch.movieCalls[11])
	}
	if len(repo.movies) != 0 {
		t.Fatal("nothing should be written for a missing movie")
	}
}

func TestSeedMovieRetriesTransient(t *testing.T) {
	fetch := seededFetcher()
	fetch.movieErrs[11] = []error{&tmdb.APIError{Status: 503, Body: "upstream down"}}
	repo := newStubRepo()
	s := newTestSeeder(repo, fetch, testConfig())

	result := s.SeedMovie(context.Background(), 11)
	if result.Status != StatusSucceeded {
		t.Fatalf("status = %s, errors = %v", result.Status, result.Errors)
	}
	if fetch.movieCalls[11] != 2 {
		t.Fatalf("fetch calls = %d, want 2", fetch.movieCalls[11])
	}
}

func TestSeedMovieSecondRunConverges(t *testing.T) {
	repo := newStubRepo()
	s := newTestSeeder(repo, seededFetcher(), testConfig())

	first := s.SeedMovie(context.Background(), 11)
	if first.Status != StatusSucceeded {
		t.Fatalf("first status = %s", first.Status)
	}
	firstID := repo.movies[11].ID

	second := s.SeedMovie(context.Background(), 11)
	if second.Status != StatusSucceeded {
		t.Fatalf("second status = %s, errors = %v", second.Status, second.Errors)
	}
	if repo.movies[11].ID != firstID {
		t.Fatalf("internal id changed: %d -> %d", firstID, repo.movies[11].ID)
	}
	if len(repo.movies) != 1 || len(repo.credits) != 2 || len(repo.links) != 2 {
		t.Fatalf("rows grew on reseed: movies=%d credits=%d links=%d",
			len(repo.movies), len(repo.credits), len(repo.links))
	}
	// Shared entities were already committed this run, so the second
	// pass reports zero new writes for them.
	if second.Persons != 0 {
		t.Fatalf("second run persons = %d, want 0", second.Persons)
	}
	if second.Genres != 0 {
		t.Fatalf("second run genres = %d, want 0", second.Genres)
	}
}

func TestSharedPersonAcrossMovies(t *testing.T) {
	fetch := seededFetcher()
	fetch.movies[550] = `{"id": 550, "title": "Another Film", "genres": [{"id": 12, "name": "Adventure"}]}`
	fetch.credits[550] = `{"cast": [{"credit_id": "xyz789", "id": 2, "name": "Mark Hamill", "character": "Someone Else", "order": 1}], "crew": []}`
	repo := newStubRepo()
	s := newTestSeeder(repo, fetch, testConfig())

	results := s.SeedMovies(context.Background(), []int64{11, 550})
	for _, r := range results {
		if r.Status != StatusSucceeded {
			t.Fatalf("movie %d status = %s, errors = %v", r.MovieID, r.Status, r.Errors)
		}
	}
	if len(repo.persons) != 2 {
		t.Fatalf("persons = %d, want 2 (Hamill stored once plus Lucas)", len(repo.persons))
	}
	if _, ok := repo.credits["abc123"]; !ok {
		t.Fatal("credit abc123 missing")
	}
	if _, ok := repo.credits["xyz789"]; !ok {
		t.Fatal("credit xyz789 missing")
	}
	// The shared person was upserted by whichever movie ran first; the
	// second only wrote its credit line.
	if repo.personsCalls > 2 {
		t.Fatalf("person upsert calls = %d", repo.personsCalls)
	}
}

func TestSeedMoviePersonWriteRetriesOnce(t *testing.T) {
	repo := newStubRepo()
	repo.personsErrs = []error{errors.New("connection reset by peer")}
	s := newTestSeeder(repo, seededFetcher(), testConfig())

	result := s.SeedMovie(context.Background(), 11)
	if result.Status != StatusSucceeded {
		t.Fatalf("status = %s, errors = %v", result.Status, result.Errors)
	}
	if repo.personsCalls != 2 {
		t.Fatalf("person upsert calls = %d, want 2 (one failure, one retry)", repo.personsCalls)
	}
	if _, ok := repo.persons[2]; !ok {
		t.Fatal("person 2 not written after retry")
	}
	if len(repo.credits) != 2 {
		t.Fatalf("credits = %d, want 2", len(repo.credits))
	}
}

func TestSeedMoviePersonWriteFailureSkipsCredits(t *testing.T) {
	repo := newStubRepo()
	repo.failPersons = errors.New("db down")
	s := newTestSeeder(repo, seededFetcher(), testConfig())

	result := s.SeedMovie(context.Background(), 11)
	if result.Status != StatusPartiallyFailed {
		t.Fatalf("status = %s", result.Status)
	}
	if repo.personsCalls != 3 {
		t.Fatalf("person upsert calls = %d, want bounded retries to give up after 3", repo.personsCalls)
	}
	if len(repo.credits) != 0 {
		t.Fatal("credits must not be written when their persons are missing")
	}
	if _, ok := repo.movies[11]; !ok {
		t.Fatal("movie row should still be written")
	}
}

func TestSeedMovieCreditConstraintIsolated(t *testing.T) {
	repo := newStubRepo()
	repo.failCreditIDs = map[string]error{"abc123": gorm.ErrForeignKeyViolated}
	s := newTestSeeder(repo, seededFetcher(), testConfig())

	result := s.SeedMovie(context.Background(), 11)
	if result.Status != StatusPartiallyFailed {
		t.Fatalf("status = %s", result.Status)
	}
	if _, ok := repo.credits["def456"]; !ok {
		t.Fatal("sibling credit should still be written")
	}
	if len(result.Errors) != 1 || result.Errors[0].Kind != KindConstraint {
		t.Fatalf("errors = %v", result.Errors)
	}
	if result.Credits != 1 {
		t.Fatalf("credits = %d, want 1", result.Credits)
	}
}

func TestSeedGenres(t *testing.T) {
	fetch := seededFetcher()
	fetch.genres = `{"genres": [{"id": 12, "name": "Adventure"}, {"id": 18, "name": "Drama"}]}`
	repo := newStubRepo()
	s := newTestSeeder(repo, fetch, testConfig())

	if err := s.SeedGenres(context.Background()); err != nil {
		t.Fatalf("SeedGenres: %v", err)
	}
	if len(repo.genres) != 2 {
		t.Fatalf("genres = %d, want 2", len(repo.genres))
	}
	state := repo.states[ScopeGenres]
	if state.LastSuccessAt == nil || state.LastError != nil {
		t.Fatalf("state = %+v", state)
	}
}

func TestSeedPopularResumesFromCursor(t *testing.T) {
	fetch := seededFetcher()
	fetch.popular[3] = `{"results": [{"id": 11}]}`
	repo := newStubRepo()
	cursor := "2"
	repo.states[ScopePopular] = models.SeedState{Scope: ScopePopular, Cursor: &cursor}
	s := newTestSeeder(repo, fetch, testConfig())

	if err := s.SeedPopular(context.Background()); err != nil {
		t.Fatalf("SeedPopular: %v", err)
	}
	if len(fetch.pagesSeen) != 2 || fetch.pagesSeen[0] != 3 || fetch.pagesSeen[1] != 4 {
		t.Fatalf("pages = %v, want [3 4]", fetch.pagesSeen)
	}
	if _, ok := repo.movies[11]; !ok {
		t.Fatal("movie from page 3 not seeded")
	}
	state := repo.states[ScopePopular]
	if state.Cursor == nil || *state.Cursor != "3" {
		t.Fatalf("cursor = %v, want 3", state.Cursor)
	}
	if state.LastSuccessAt == nil {
		t.Fatal("success timestamp missing")
	}
}

func TestSeedPopularPersistsFailure(t *testing.T) {
	fetch := seededFetcher()
	err503 := &tmdb.APIError{Status: 503, Body: "down"}
	fetch.popularErrs[1] = []error{err503, err503, err503}
	repo := newStubRepo()
	cfg := testConfig()
	cfg.Retries = 2
	s := newTestSeeder(repo, fetch, cfg)

	if err := s.SeedPopular(context.Background()); err == nil {
		t.Fatal("want error when every attempt fails")
	}
	state := repo.states[ScopePopular]
	if state.LastError == nil {
		t.Fatal("failure must be recorded in seed state")
	}
	if state.LastSuccessAt != nil {
		t.Fatal("failed run must not claim success")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"not found", &tmdb.APIError{Status: 404}, KindNotFound},
		{"rate limited", &tmdb.APIError{Status: 429}, KindTransient},
		{"server error", &tmdb.APIError{Status: 500}, KindTransient},
		{"bad shape", &mapper.MappingError{Reason: "x"}, KindMapping},
		{"fk violation", gorm.ErrForeignKeyViolated, KindConstraint},
		{"duplicate key", gorm.ErrDuplicatedKey, KindConstraint},
		{"client error", &tmdb.APIError{Status: 400}, KindUnknown},
		{"transport failure", &url.Error{Op: "Get", URL: "https://api.themoviedb.org/3/movie/11", Err: errors.New("connection reset by peer")}, KindTransient},
		{"generic store failure", errors.New("connection reset by peer"), KindUnknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}
