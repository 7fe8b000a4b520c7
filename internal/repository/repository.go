package repository

import (
	"context"

	"moviedb/internal/models"
)

// ListMoviesParams narrows and pages the movie listing.
type ListMoviesParams struct {
	GenreID *int64
	Year    *int
	Search  *string
	OrderBy string
	Order   string
	Limit   int
	Offset  int
}

// CatalogRepository is the storage gateway for the movie catalog. All
// writes are idempotent upserts keyed on natural identifiers, so
// re-seeding the same payload converges instead of erroring.
//
// Methods called inside InTx run on the transaction-bound repository the
// callback receives; outside a transaction they auto-commit per call.
type CatalogRepository interface {
	InTx(ctx context.Context, fn func(tx CatalogRepository) error) error

	// UpsertMovie inserts or updates on the external movie id and fills
	// in the row's internal ID.
	UpsertMovie(ctx context.Context, movie *models.Movie) error
	UpsertGenres(ctx context.Context, genres []models.Genre) error
	UpsertMovieGenres(ctx context.Context, links []models.MovieGenre) error
	UpsertImages(ctx context.Context, images []models.Image) error
	UpsertPersons(ctx context.Context, persons []models.Person) error
	// UpsertCredit writes one credit row so a bad row cannot take its
	// siblings down with it.
	UpsertCredit(ctx context.Context, credit models.MovieCredit) error

	GetMovieByExternalID(ctx context.Context, movieID int64) (*models.Movie, error)
	ListMovies(ctx context.Context, params ListMoviesParams) ([]models.Movie, error)
	CountMovies(ctx context.Context, params ListMoviesParams) (int64, error)
	ListGenres(ctx context.Context) ([]models.Genre, error)
	ListGenresByMovieID(ctx context.Context, id uint) ([]models.Genre, error)
	ListImagesByMovieID(ctx context.Context, id uint) ([]models.Image, error)
	ListCreditsByMovieID(ctx context.Context, id uint) ([]models.MovieCredit, error)

	GetSeedState(ctx context.Context, scope string) (*models.SeedState, error)
	SaveSeedState(ctx context.Context, state *models.SeedState) error
	ListSeedStates(ctx context.Context) ([]models.SeedState, error)
}
