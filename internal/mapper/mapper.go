package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"moviedb/internal/models"
)

// releaseDateLayout is the fixed date format TMDb uses everywhere.
const releaseDateLayout = "2006-01-02"

// MappingError marks a raw record whose shape cannot be mapped. It is
// deterministic: retrying the same payload yields the same error.
type MappingError struct {
	Field  string
	Reason string
	Raw    json.RawMessage
}

func (e *MappingError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("mapping error on %q: %s", e.Field, e.Reason)
	}
	return "mapping error: " + e.Reason
}

type rawGenre struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
}

type rawMovie struct {
	ID               *int64     `json:"id"`
	Title            *string    `json:"title"`
	OriginalTitle    *string    `json:"original_title"`
	OriginalLanguage *string    `json:"original_language"`
	Overview         *string    `json:"overview"`
	Adult            bool       `json:"adult"`
	Video            bool       `json:"video"`
	BackdropPath     *string    `json:"backdrop_path"`
	PosterPath       *string    `json:"poster_path"`
	ReleaseDate      *string    `json:"release_date"`
	Popularity       *float64   `json:"popularity"`
	VoteAverage      *float64   `json:"vote_average"`
	VoteCount        *int       `json:"vote_count"`
	Genres           []rawGenre `json:"genres"`
}

// MapMovie converts one raw movie detail payload into a movie row plus the
// genre rows embedded in it. The returned movie has no internal ID yet;
// the store assigns it on upsert.
func MapMovie(raw []byte, now time.Time) (models.Movie, []models.Genre, error) {
	var src rawMovie
	if err := json.Unmarshal(raw, &src); err != nil {
		return models.Movie{}, nil, &MappingError{Reason: "movie payload is not valid JSON", Raw: raw}
	}
	if src.ID == nil {
		return models.Movie{}, nil, &MappingError{Field: "id", Reason: "movie record has no external id", Raw: raw}
	}

	movie := models.Movie{
		MovieID:          *src.ID,
		Title:            strOrEmpty(src.Title),
		OriginalTitle:    src.OriginalTitle,
		OriginalLanguage: src.OriginalLanguage,
		Overview:         src.Overview,
		Adult:            src.Adult,
		Video:            src.Video,
		BackdropPath:     src.BackdropPath,
		PosterPath:       src.PosterPath,
		ReleaseDate:      parseReleaseDate(src.ReleaseDate),
		Popularity:       decimalPtr(src.Popularity),
		VoteAverage:      decimalPtr(src.VoteAverage),
		VoteCount:        intOrZero(src.VoteCount),
		LastSeenAt:       now,
		RawJSON:          datatypes.JSON(raw),
	}

	genres := mapGenres(src.Genres)
	return movie, genres, nil
}

// MapGenreList converts the /genre/movie/list payload.
func MapGenreList(raw []byte) ([]models.Genre, error) {
	var src struct {
		Genres []rawGenre `json:"genres"`
	}
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, &MappingError{Reason: "genre list payload is not valid JSON", Raw: raw}
	}
	return mapGenres(src.Genres), nil
}

func mapGenres(src []rawGenre) []models.Genre {
	out := make([]models.Genre, 0, len(src))
	for _, g := range src {
		// Entries without an id cannot be keyed; skip them.
		if g.ID == nil || *g.ID == 0 {
			continue
		}
		out = append(out, models.Genre{ID: *g.ID, Name: strOrEmpty(g.Name)})
	}
	return out
}

type rawImage struct {
	FilePath    *string  `json:"file_path"`
	AspectRatio *float64 `json:"aspect_ratio"`
	Height      *int     `json:"height"`
	Width       *int     `json:"width"`
	VoteAverage *float64 `json:"vote_average"`
	VoteCount   *int     `json:"vote_count"`
	ISO6391     *string  `json:"iso_639_1"`
}

// MapImages flattens the backdrops/logos/posters arrays of an images
// payload into rows, tagging each with its singular type. MovieID is left
// unset; the orchestrator fills it after the movie row exists.
func MapImages(raw []byte) ([]models.Image, error) {
	var src struct {
		Backdrops []rawImage `json:"backdrops"`
		Logos     []rawImage `json:"logos"`
		Posters   []rawImage `json:"posters"`
	}
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, &MappingError{Reason: "images payload is not valid JSON", Raw: raw}
	}

	out := make([]models.Image, 0, len(src.Backdrops)+len(src.Logos)+len(src.Posters))
	appendImages := func(imageType string, entries []rawImage) {
		for _, img := range entries {
			// file_path is the natural identity of an image; unkeyed
			// entries cannot be upserted idempotently.
			if img.FilePath == nil || *img.FilePath == "" {
				continue
			}
			out = append(out, models.Image{
				Type:        imageType,
				FilePath:    *img.FilePath,
				AspectRatio: decimalPtr(img.AspectRatio),
				Height:      img.Height,
				Width:       img.Width,
				VoteAverage: decimalPtr(img.VoteAverage),
				VoteCount:   intOrZero(img.VoteCount),
				ISO6391:     img.ISO6391,
			})
		}
	}
	appendImages(models.ImageTypeBackdrop, src.Backdrops)
	appendImages(models.ImageTypeLogo, src.Logos)
	appendImages(models.ImageTypePoster, src.Posters)
	return out, nil
}

// MapPopularPage extracts the external movie ids from one /movie/popular page.
func MapPopularPage(raw []byte) ([]int64, error) {
	var src struct {
		Results []struct {
			ID *int64 `json:"id"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, &MappingError{Reason: "popular page payload is not valid JSON", Raw: raw}
	}
	ids := make([]int64, 0, len(src.Results))
	for _, r := range src.Results {
		if r.ID == nil || *r.ID == 0 {
			continue
		}
		ids = append(ids, *r.ID)
	}
	return ids, nil
}

func parseReleaseDate(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	t, err := time.Parse(releaseDateLayout, *value)
	if err != nil {
		// Release dates are legitimately sometimes missing or junk
		// upstream; unset beats a sentinel date.
		return nil
	}
	return &t
}

func decimalPtr(value *float64) *decimal.Decimal {
	if value == nil {
		return nil
	}
	d := decimal.NewFromFloat(*value)
	return &d
}

func strOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func intOrZero(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}
