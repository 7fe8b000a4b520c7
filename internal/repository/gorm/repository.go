package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"moviedb/internal/models"
	"moviedb/internal/repository"
)

// Store implements repository.CatalogRepository on gorm/Postgres.
type Store struct {
	gdb *gorm.DB
}

func New(gdb *gorm.DB) *Store {
	return &Store{gdb: gdb}
}

func (s *Store) InTx(ctx context.Context, fn func(tx repository.CatalogRepository) error) error {
	return s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{gdb: tx})
	})
}

var movieUpdateColumns = []string{
	"title", "original_title", "original_language", "overview",
	"adult", "video", "backdrop_path", "poster_path", "release_date",
	"popularity", "vote_average", "vote_count", "last_seen_at", "raw_json",
}

func (s *Store) UpsertMovie(ctx context.Context, movie *models.Movie) error {
	if movie == nil {
		return nil
	}
	err := s.gdb.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns(movieUpdateColumns),
	}).Create(movie).Error
	if err != nil {
		return err
	}
	if movie.ID != 0 {
		return nil
	}
	// The conflict path does not always report the surrogate id back.
	var existing models.Movie
	if err := s.gdb.WithContext(ctx).Select("id").
		Where("movie_id = ?", movie.MovieID).Take(&existing).Error; err != nil {
		return err
	}
	movie.ID = existing.ID
	return nil
}

func (s *Store) UpsertGenres(ctx context.Context, genres []models.Genre) error {
	if len(genres) == 0 {
		return nil
	}
	return s.gdb.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&genres).Error
}

func (s *Store) UpsertMovieGenres(ctx context.Context, links []models.MovieGenre) error {
	if len(links) == 0 {
		return nil
	}
	return s.gdb.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "movie_id"}, {Name: "genre_id"}},
		DoNothing: true,
	}).Create(&links).Error
}

func (s *Store) UpsertImages(ctx context.Context, images []models.Image) error {
	if len(images) == 0 {
		return nil
	}
	return s.gdb.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "movie_id"}, {Name: "type"}, {Name: "file_path"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"aspect_ratio", "height", "width", "vote_average", "vote_count", "iso_639_1",
		}),
	}).Create(&images).Error
}

func (s *Store) UpsertPersons(ctx context.Context, persons []models.Person) error {
	if len(persons) == 0 {
		return nil
	}
	return s.gdb.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "original_name", "gender", "popularity",
			"profile_path", "known_for_department", "last_seen_at", "raw_json",
		}),
	}).Create(&persons).Error
}

func (s *Store) UpsertCredit(ctx context.Context, credit models.MovieCredit) error {
	return s.gdb.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "credit_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"movie_id", "person_id", "kind", "cast_order",
			"character_name", "department", "job",
		}),
	}).Create(&credit).Error
}

func (s *Store) GetMovieByExternalID(ctx context.Context, movieID int64) (*models.Movie, error) {
	var movie models.Movie
	err := s.gdb.WithContext(ctx).Where("movie_id = ?", movieID).Take(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (s *Store) ListMovies(ctx context.Context, params repository.ListMoviesParams) ([]models.Movie, error) {
	var movies []models.Movie
	q := s.moviesQuery(ctx, params)
	q = applyOrder(q, params.OrderBy, params.Order)
	err := q.Limit(normalizeLimit(params.Limit)).
		Offset(normalizeOffset(params.Offset)).
		Find(&movies).Error
	return movies, err
}

func (s *Store) CountMovies(ctx context.Context, params repository.ListMoviesParams) (int64, error) {
	var count int64
	err := s.moviesQuery(ctx, params).Count(&count).Error
	return count, err
}

func (s *Store) moviesQuery(ctx context.Context, params repository.ListMoviesParams) *gorm.DB {
	q := s.gdb.WithContext(ctx).Model(&models.Movie{})
	if params.GenreID != nil {
		q = q.Joins("JOIN movie_genres mg ON mg.movie_id = movies.id").
			Where("mg.genre_id = ?", *params.GenreID)
	}
	if params.Year != nil {
		q = q.Where("EXTRACT(YEAR FROM release_date) = ?", *params.Year)
	}
	if params.Search != nil && *params.Search != "" {
		q = q.Where("title ILIKE ?", "%"+*params.Search+"%")
	}
	return q
}

func (s *Store) ListGenres(ctx context.Context) ([]models.Genre, error) {
	var genres []models.Genre
	err := s.gdb.WithContext(ctx).Order("id").Find(&genres).Error
	return genres, err
}

func (s *Store) ListGenresByMovieID(ctx context.Context, id uint) ([]models.Genre, error) {
	var genres []models.Genre
	err := s.gdb.WithContext(ctx).
		Joins("JOIN movie_genres mg ON mg.genre_id = genres.id").
		Where("mg.movie_id = ?", id).
		Order("genres.id").
		Find(&genres).Error
	return genres, err
}

func (s *Store) ListImagesByMovieID(ctx context.Context, id uint) ([]models.Image, error) {
	var images []models.Image
	err := s.gdb.WithContext(ctx).
		Where("movie_id = ?", id).
		Order("type, file_path").
		Find(&images).Error
	return images, err
}

func (s *Store) ListCreditsByMovieID(ctx context.Context, id uint) ([]models.MovieCredit, error) {
	var credits []models.MovieCredit
	err := s.gdb.WithContext(ctx).
		Preload("Person").
		Where("movie_id = ?", id).
		Order("kind, cast_order NULLS LAST, credit_id").
		Find(&credits).Error
	return credits, err
}

func (s *Store) GetSeedState(ctx context.Context, scope string) (*models.SeedState, error) {
	var state models.SeedState
	err := s.gdb.WithContext(ctx).Where("scope = ?", scope).Take(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Store) SaveSeedState(ctx context.Context, state *models.SeedState) error {
	if state == nil {
		return nil
	}
	return s.gdb.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope"}},
		UpdateAll: true,
	}).Create(state).Error
}

func (s *Store) ListSeedStates(ctx context.Context) ([]models.SeedState, error) {
	var states []models.SeedState
	err := s.gdb.WithContext(ctx).Order("scope").Find(&states).Error
	return states, err
}

var movieOrderColumns = map[string]string{
	"popularity":   "popularity",
	"vote_average": "vote_average",
	"release_date": "release_date",
	"title":        "title",
	"movie_id":     "movie_id",
}

func applyOrder(q *gorm.DB, orderBy, order string) *gorm.DB {
	col, ok := movieOrderColumns[orderBy]
	if !ok {
		col = "popularity"
	}
	dir := "DESC"
	if order == "asc" {
		dir = "ASC"
	}
	return q.Order(col + " " + dir + " NULLS LAST").Order("movies.id")
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
