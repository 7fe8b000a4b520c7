package service

import (
	"context"

	"go.uber.org/zap"

	"moviedb/internal/models"
	"moviedb/internal/repository"
)

// MovieDetail bundles a movie row with its genres for the detail view.
type MovieDetail struct {
	Movie  models.Movie   `json:"movie"`
	Genres []models.Genre `json:"genres"`
}

// CatalogQueryService serves read access to the seeded catalog.
type CatalogQueryService struct {
	repo   repository.CatalogRepository
	logger *zap.Logger
}

func NewCatalogQueryService(repo repository.CatalogRepository, logger *zap.Logger) *CatalogQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogQueryService{repo: repo, logger: logger}
}

func (s *CatalogQueryService) ListMovies(ctx context.Context, params repository.ListMoviesParams) ([]models.Movie, int64, error) {
	movies, err := s.repo.ListMovies(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountMovies(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

// GetMovieDetail looks a movie up by its external id. A nil detail with
// a nil error means the movie is not in the catalog.
func (s *CatalogQueryService) GetMovieDetail(ctx context.Context, movieID int64) (*MovieDetail, error) {
	movie, err := s.repo.GetMovieByExternalID(ctx, movieID)
	if err != nil || movie == nil {
		return nil, err
	}
	genres, err := s.repo.ListGenresByMovieID(ctx, movie.ID)
	if err != nil {
		return nil, err
	}
	return &MovieDetail{Movie: *movie, Genres: genres}, nil
}

func (s *CatalogQueryService) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return s.repo.ListGenres(ctx)
}

// ListCredits returns the credits of a movie identified by external id,
// cast before crew. found is false when the movie is unknown.
func (s *CatalogQueryService) ListCredits(ctx context.Context, movieID int64) ([]models.MovieCredit, bool, error) {
	movie, err := s.repo.GetMovieByExternalID(ctx, movieID)
	if err != nil || movie == nil {
		return nil, false, err
	}
	credits, err := s.repo.ListCreditsByMovieID(ctx, movie.ID)
	if err != nil {
		return nil, true, err
	}
	return credits, true, nil
}

// ListImages returns the stored artwork of a movie identified by
// external id. found is false when the movie is unknown.
func (s *CatalogQueryService) ListImages(ctx context.Context, movieID int64) ([]models.Image, bool, error) {
	movie, err := s.repo.GetMovieByExternalID(ctx, movieID)
	if err != nil || movie == nil {
		return nil, false, err
	}
	images, err := s.repo.ListImagesByMovieID(ctx, movie.ID)
	if err != nil {
		return nil, true, err
	}
	return images, true, nil
}

func (s *CatalogQueryService) ListSeedStates(ctx context.Context) ([]models.SeedState, error) {
	return s.repo.ListSeedStates(ctx)
}
