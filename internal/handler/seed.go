package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"moviedb/internal/seeder"
	"moviedb/internal/service"
)

// SeedHandler triggers seeding rounds over HTTP. The cron job drives the
// same seeder; these routes exist for manual runs and backfills.
type SeedHandler struct {
	Seeder       *seeder.Seeder
	QueryService *service.CatalogQueryService
	Logger       *zap.Logger
}

func (h *SeedHandler) Register(r *gin.Engine) {
	group := r.Group("/api/seed")
	group.POST("/popular", h.seedPopular)
	group.POST("/genres", h.seedGenres)
	group.POST("/movies/:id", h.seedMovie)
	group.GET("/state", h.listSeedState)
}

type seedMovieResponse struct {
	MovieID int64    `json:"movie_id"`
	Status  string   `json:"status"`
	Genres  int      `json:"genres"`
	Images  int      `json:"images"`
	Persons int      `json:"persons"`
	Credits int      `json:"credits"`
	Errors  []string `json:"errors,omitempty"`
}

func toSeedMovieResponse(result seeder.SeedResult) seedMovieResponse {
	resp := seedMovieResponse{
		MovieID: result.MovieID,
		Status:  result.Status,
		Genres:  result.Genres,
		Images:  result.Images,
		Persons: result.Persons,
		Credits: result.Credits,
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, e.Error())
	}
	return resp
}

// @Summary Run the popular movie walk
// @Tags seed
// @Success 200 {object} apiResponse
// @Router /api/seed/popular [post]
func (h *SeedHandler) seedPopular(c *gin.Context) {
	if h.Seeder == nil {
		Error(c, http.StatusInternalServerError, "seeder unavailable", nil)
		return
	}
	if err := h.Seeder.SeedPopular(c.Request.Context()); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("popular seed failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"scope": seeder.ScopePopular}, nil)
}

// @Summary Refresh the genre reference list
// @Tags seed
// @Success 200 {object} apiResponse
// @Router /api/seed/genres [post]
func (h *SeedHandler) seedGenres(c *gin.Context) {
	if h.Seeder == nil {
		Error(c, http.StatusInternalServerError, "seeder unavailable", nil)
		return
	}
	if err := h.Seeder.SeedGenres(c.Request.Context()); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("genre seed failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"scope": seeder.ScopeGenres}, nil)
}

// @Summary Seed one movie by external id
// @Tags seed
// @Param id path int true "external movie id"
// @Success 200 {object} apiResponse
// @Router /api/seed/movies/{id} [post]
func (h *SeedHandler) seedMovie(c *gin.Context) {
	if h.Seeder == nil {
		Error(c, http.StatusInternalServerError, "seeder unavailable", nil)
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid movie id", nil)
		return
	}
	result := h.Seeder.SeedMovie(c.Request.Context(), id)
	if result.Status == seeder.StatusFailed {
		Error(c, http.StatusBadGateway, "seed failed", map[string]any{
			"result": toSeedMovieResponse(result),
		})
		return
	}
	Ok(c, toSeedMovieResponse(result), nil)
}

// @Summary List seed states
// @Tags seed
// @Success 200 {object} apiResponse
// @Router /api/seed/state [get]
func (h *SeedHandler) listSeedState(c *gin.Context) {
	if h.QueryService == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	states, err := h.QueryService.ListSeedStates(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("list seed state failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, states, nil)
}
