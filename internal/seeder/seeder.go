package seeder

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"moviedb/internal/client/tmdb"
	"moviedb/internal/config"
	"moviedb/internal/db"
	"moviedb/internal/mapper"
	"moviedb/internal/models"
	"moviedb/internal/repository"
)

// Fetcher is the slice of the catalog API the seeder needs. The TMDb
// client satisfies it; tests swap in a stub.
type Fetcher interface {
	FetchMovie(ctx context.Context, movieID int64) ([]byte, error)
	FetchCredits(ctx context.Context, movieID int64) ([]byte, error)
	FetchImages(ctx context.Context, movieID int64) ([]byte, error)
	FetchGenres(ctx context.Context) ([]byte, error)
	FetchPopular(ctx context.Context, page int) ([]byte, error)
}

const (
	StatusSucceeded       = "succeeded"
	StatusPartiallyFailed = "partially_failed"
	StatusFailed          = "failed"
)

// SeedResult reports what one movie's seeding round accomplished.
type SeedResult struct {
	MovieID int64
	Status  string
	Genres  int
	Images  int
	Persons int
	Credits int
	Errors  []*SeedError
}

// Seeder pulls movie payloads from the catalog API, maps them to rows
// and writes them in dependency order. Failures stay scoped to the
// record that caused them.
type Seeder struct {
	store    repository.CatalogRepository
	fetch    Fetcher
	logger   *zap.Logger
	resolver *Resolver

	startPage int
	maxPages  int
	resume    bool
	workers   int
	retries   int
	backoff   time.Duration
	pageDelay time.Duration
}

func New(store repository.CatalogRepository, fetch Fetcher, logger *zap.Logger, cfg config.SeedConfig) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 400 * time.Millisecond
	}
	return &Seeder{
		store:     store,
		fetch:     fetch,
		logger:    logger,
		resolver:  NewResolver(),
		startPage: cfg.StartPage,
		maxPages:  cfg.MaxPages,
		resume:    cfg.Resume,
		workers:   workers,
		retries:   cfg.Retries,
		backoff:   backoff,
		pageDelay: cfg.PageDelay,
	}
}

// SeedMovie runs the full round for one movie: fetch detail, credits and
// images, map them, then write movie, genres, links and images in one
// transaction followed by persons and per-row credits.
func (s *Seeder) SeedMovie(ctx context.Context, movieID int64) SeedResult {
	result := SeedResult{MovieID: movieID, Status: StatusFailed}
	now := db.NowUTC()

	rawMovie, err := s.fetchWithRetry(ctx, func(ctx context.Context) ([]byte, error) {
		return s.fetch.FetchMovie(ctx, movieID)
	})
	if err != nil {
		result.Errors = append(result.Errors, newSeedError("fetch", "movies", extKey(movieID), err))
		return result
	}

	movie, genres, err := mapper.MapMovie(rawMovie, now)
	if err != nil {
		result.Errors = append(result.Errors, newSeedError("map", "movies", extKey(movieID), err))
		return result
	}
	genres = DedupeGenres(genres)

	// Images and credits are fetched before any write so a transient
	// fetch failure cannot leave the movie half-written.
	var images []models.Image
	rawImages, err := s.fetchWithRetry(ctx, func(ctx context.Context) ([]byte, error) {
		return s.fetch.FetchImages(ctx, movieID)
	})
	if err != nil {
		result.Errors = append(result.Errors, newSeedError("fetch", "images", extKey(movieID), err))
	} else if images, err = mapper.MapImages(rawImages); err != nil {
		images = nil
		result.Errors = append(result.Errors, newSeedError("map", "images", extKey(movieID), err))
	}

	var (
		persons    []models.Person
		credits    []models.MovieCredit
		creditsOK  bool
		creditErrs []error
	)
	rawCredits, err := s.fetchWithRetry(ctx, func(ctx context.Context) ([]byte, error) {
		return s.fetch.FetchCredits(ctx, movieID)
	})
	if err != nil {
		result.Errors = append(result.Errors, newSeedError("fetch", "movie_credits", extKey(movieID), err))
	} else if persons, credits, creditErrs, err = mapper.MapCredits(rawCredits, now); err != nil {
		result.Errors = append(result.Errors, newSeedError("map", "movie_credits", extKey(movieID), err))
	} else {
		creditsOK = true
		for _, cerr := range creditErrs {
			result.Errors = append(result.Errors, newSeedError("map", "movie_credits", extKey(movieID), cerr))
		}
	}

	newGenres := s.resolver.FilterGenres(genres)
	err = s.writeWithRetry(ctx, func(ctx context.Context) error {
		return s.store.InTx(ctx, func(tx repository.CatalogRepository) error {
			if err := tx.UpsertMovie(ctx, &movie); err != nil {
				return newSeedError("store", "movies", extKey(movieID), err)
			}
			if err := tx.UpsertGenres(ctx, newGenres); err != nil {
				return newSeedError("store", "genres", extKey(movieID), err)
			}
			links := make([]models.MovieGenre, 0, len(genres))
			for _, g := range genres {
				links = append(links, models.MovieGenre{MovieID: movie.ID, GenreID: g.ID})
			}
			if err := tx.UpsertMovieGenres(ctx, links); err != nil {
				return newSeedError("store", "movie_genres", extKey(movieID), err)
			}
			for i := range images {
				images[i].MovieID = movie.ID
			}
			if err := tx.UpsertImages(ctx, images); err != nil {
				return newSeedError("store", "images", extKey(movieID), err)
			}
			return nil
		})
	})
	if err != nil {
		result.Errors = append(result.Errors, asSeedError("store", "movies", extKey(movieID), err))
		return result
	}
	s.resolver.MarkGenres(newGenres)
	result.Genres = len(newGenres)
	result.Images = len(images)

	if creditsOK {
		newPersons := s.resolver.FilterPersons(persons)
		err := s.writeWithRetry(ctx, func(ctx context.Context) error {
			return s.store.UpsertPersons(ctx, newPersons)
		})
		if err != nil {
			result.Errors = append(result.Errors, newSeedError("store", "persons", extKey(movieID), err))
			creditsOK = false
		} else {
			s.resolver.MarkPersons(newPersons)
			result.Persons = len(newPersons)
		}
	}
	if creditsOK {
		for _, credit := range credits {
			credit.MovieID = movie.ID
			err := s.writeWithRetry(ctx, func(ctx context.Context) error {
				return s.store.UpsertCredit(ctx, credit)
			})
			if err != nil {
				result.Errors = append(result.Errors, newSeedError("store", "movie_credits", credit.CreditID, err))
				continue
			}
			result.Credits++
		}
	}

	if len(result.Errors) == 0 {
		result.Status = StatusSucceeded
	} else {
		result.Status = StatusPartiallyFailed
	}
	s.logger.Info("seeded movie",
		zap.Int64("movie_id", movieID),
		zap.String("status", result.Status),
		zap.Int("genres", result.Genres),
		zap.Int("images", result.Images),
		zap.Int("persons", result.Persons),
		zap.Int("credits", result.Credits),
		zap.Int("errors", len(result.Errors)))
	return result
}

// fetchWithRetry retries transient failures with a linearly growing
// backoff. Terminal errors come back immediately.
func (s *Seeder) fetchWithRetry(ctx context.Context, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.backoff * time.Duration(attempt)):
			}
		}
		raw, err := fn(ctx)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !tmdb.IsTransient(err) {
			return nil, err
		}
		s.logger.Warn("transient fetch failure, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return nil, lastErr
}

// writeWithRetry gives store writes the same bounded-backoff treatment
// as fetches. Deterministic kinds (mapping, constraint, not-found) come
// back immediately; everything else gets another attempt.
func (s *Seeder) writeWithRetry(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.backoff * time.Duration(attempt)):
			}
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		switch Classify(err) {
		case KindMapping, KindConstraint, KindNotFound:
			return err
		}
		s.logger.Warn("store write failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return lastErr
}

func asSeedError(stage, table, key string, err error) *SeedError {
	if se, ok := err.(*SeedError); ok {
		return se
	}
	return newSeedError(stage, table, key, err)
}

func extKey(movieID int64) string {
	return "movie:" + strconv.FormatInt(movieID, 10)
}
