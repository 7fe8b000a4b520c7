package seeder

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"moviedb/internal/db"
	"moviedb/internal/mapper"
	"moviedb/internal/models"
)

const (
	ScopeGenres  = "genres"
	ScopePopular = "popular"
)

// RunStats is the per-scope summary persisted alongside the cursor.
type RunStats struct {
	Pages           int `json:"pages,omitempty"`
	Genres          int `json:"genres,omitempty"`
	Movies          int `json:"movies"`
	Succeeded       int `json:"succeeded"`
	PartiallyFailed int `json:"partially_failed"`
	Failed          int `json:"failed"`
	Errors          int `json:"errors"`
}

// SeedGenres refreshes the genre reference list in one pass. Running it
// before the popular walk keeps genre names current even for genres no
// popular movie currently carries.
func (s *Seeder) SeedGenres(ctx context.Context) error {
	state := s.loadState(ctx, ScopeGenres)
	attempt := db.NowUTC()
	state.LastAttemptAt = &attempt

	raw, err := s.fetchWithRetry(ctx, s.fetch.FetchGenres)
	if err != nil {
		s.saveFailedState(ctx, state, err)
		return err
	}
	genres, err := mapper.MapGenreList(raw)
	if err != nil {
		s.saveFailedState(ctx, state, err)
		return err
	}
	genres = DedupeGenres(genres)
	err = s.writeWithRetry(ctx, func(ctx context.Context) error {
		return s.store.UpsertGenres(ctx, genres)
	})
	if err != nil {
		s.saveFailedState(ctx, state, err)
		return err
	}
	s.resolver.MarkGenres(genres)

	done := db.NowUTC()
	state.LastSuccessAt = &done
	state.LastError = nil
	state.StatsJSON = marshalStats(RunStats{Genres: len(genres)})
	s.saveState(ctx, state)
	s.logger.Info("seeded genres", zap.Int("genres", len(genres)))
	return nil
}

// SeedMovies fans the ids out over a bounded worker pool. Each movie is
// independent; one failing does not stop the others.
func (s *Seeder) SeedMovies(ctx context.Context, ids []int64) []SeedResult {
	jobs := make(chan int64)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []SeedResult
	)
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if ctx.Err() != nil {
					return
				}
				r := s.SeedMovie(ctx, id)
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}
		}()
	}
send:
	for _, id := range ids {
		select {
		case <-ctx.Done():
			break send
		case jobs <- id:
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

// SeedPopular walks the popular listing page by page, seeding every
// movie on each page. The last completed page is persisted as a cursor
// so an interrupted walk resumes where it stopped.
func (s *Seeder) SeedPopular(ctx context.Context) error {
	s.resolver.Reset()
	state := s.loadState(ctx, ScopePopular)

	start := s.startPage
	if start <= 0 {
		start = 1
	}
	if s.resume && state.Cursor != nil {
		if last, err := strconv.Atoi(*state.Cursor); err == nil && last >= start {
			start = last + 1
		}
	}

	var (
		stats  RunStats
		runErr error
	)
	for page := start; s.maxPages <= 0 || page < start+s.maxPages; page++ {
		if ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}
		attempt := db.NowUTC()
		state.LastAttemptAt = &attempt

		raw, err := s.fetchWithRetry(ctx, func(ctx context.Context) ([]byte, error) {
			return s.fetch.FetchPopular(ctx, page)
		})
		if err != nil {
			runErr = err
			break
		}
		ids, err := mapper.MapPopularPage(raw)
		if err != nil {
			runErr = err
			break
		}
		if len(ids) == 0 {
			// Walked past the last page.
			break
		}

		results := s.SeedMovies(ctx, ids)
		stats.Pages++
		stats.Movies += len(results)
		for _, r := range results {
			switch r.Status {
			case StatusSucceeded:
				stats.Succeeded++
			case StatusPartiallyFailed:
				stats.PartiallyFailed++
			default:
				stats.Failed++
			}
			stats.Errors += len(r.Errors)
		}
		s.logger.Info("seeded popular page",
			zap.Int("page", page),
			zap.Int("movies", len(results)))

		cursor := strconv.Itoa(page)
		state.Cursor = &cursor
		state.StatsJSON = marshalStats(stats)
		s.saveState(ctx, state)

		if s.pageDelay > 0 {
			select {
			case <-ctx.Done():
				runErr = ctx.Err()
			case <-time.After(s.pageDelay):
			}
			if runErr != nil {
				break
			}
		}
	}

	state.StatsJSON = marshalStats(stats)
	if runErr != nil {
		s.saveFailedState(ctx, state, runErr)
		return runErr
	}
	done := db.NowUTC()
	state.LastSuccessAt = &done
	state.LastError = nil
	s.saveState(ctx, state)
	s.logger.Info("popular walk finished",
		zap.Int("pages", stats.Pages),
		zap.Int("movies", stats.Movies),
		zap.Int("failed", stats.Failed))
	return nil
}

func (s *Seeder) loadState(ctx context.Context, scope string) *models.SeedState {
	state, err := s.store.GetSeedState(ctx, scope)
	if err != nil {
		s.logger.Warn("failed to load seed state", zap.String("scope", scope), zap.Error(err))
	}
	if state == nil {
		return &models.SeedState{Scope: scope}
	}
	return state
}

func (s *Seeder) saveState(ctx context.Context, state *models.SeedState) {
	if err := s.store.SaveSeedState(ctx, state); err != nil {
		s.logger.Warn("failed to save seed state",
			zap.String("scope", state.Scope), zap.Error(err))
	}
}

func (s *Seeder) saveFailedState(ctx context.Context, state *models.SeedState, cause error) {
	msg := cause.Error()
	state.LastError = &msg
	s.saveState(ctx, state)
	s.logger.Error("seed run failed",
		zap.String("scope", state.Scope), zap.Error(cause))
}

func marshalStats(stats RunStats) []byte {
	raw, err := json.Marshal(stats)
	if err != nil {
		return nil
	}
	return raw
}
