package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"moviedb/internal/repository"
	"moviedb/internal/service"
)

// CatalogHandler serves read access to the seeded catalog. Movie ids in
// routes are the external catalog ids, not internal surrogate keys.
type CatalogHandler struct {
	QueryService *service.CatalogQueryService
	Logger       *zap.Logger
}

func (h *CatalogHandler) Register(r *gin.Engine) {
	group := r.Group("/api/catalog")
	group.GET("/movies", h.listMovies)
	group.GET("/movies/:id", h.getMovie)
	group.GET("/movies/:id/credits", h.listCredits)
	group.GET("/movies/:id/images", h.listImages)
	group.GET("/genres", h.listGenres)
}

// @Summary List movies
// @Tags catalog
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Param genre_id query int false "genre id"
// @Param year query int false "release year"
// @Param search query string false "title contains"
// @Param order_by query string false "order by field"
// @Param order query string false "asc|desc"
// @Success 200 {object} apiResponse
// @Router /api/catalog/movies [get]
func (h *CatalogHandler) listMovies(c *gin.Context) {
	if h.QueryService == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)
	params := repository.ListMoviesParams{
		GenreID: int64QueryPtr(c, "genre_id"),
		Year:    intQueryPtr(c, "year"),
		Search:  strQueryPtr(c, "search"),
		OrderBy: parseOrder(c.Query("order_by"), map[string]string{
			"popularity":   "popularity",
			"vote_average": "vote_average",
			"release_date": "release_date",
			"title":        "title",
			"movie_id":     "movie_id",
		}),
		Order:  c.Query("order"),
		Limit:  limit,
		Offset: offset,
	}

	movies, total, err := h.QueryService.ListMovies(c.Request.Context(), params)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("list movies failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, movies, paginationMeta(limit, offset, total))
}

// @Summary Get movie detail by external id
// @Tags catalog
// @Param id path int true "external movie id"
// @Success 200 {object} apiResponse
// @Router /api/catalog/movies/{id} [get]
func (h *CatalogHandler) getMovie(c *gin.Context) {
	if h.QueryService == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid movie id", nil)
		return
	}
	detail, err := h.QueryService.GetMovieDetail(c.Request.Context(), id)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("get movie failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if detail == nil {
		Error(c, http.StatusNotFound, "movie not found", nil)
		return
	}
	Ok(c, detail, nil)
}

// @Summary List movie credits by external id
// @Tags catalog
// @Param id path int true "external movie id"
// @Success 200 {object} apiResponse
// @Router /api/catalog/movies/{id}/credits [get]
func (h *CatalogHandler) listCredits(c *gin.Context) {
	if h.QueryService == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid movie id", nil)
		return
	}
	credits, found, err := h.QueryService.ListCredits(c.Request.Context(), id)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("list credits failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if !found {
		Error(c, http.StatusNotFound, "movie not found", nil)
		return
	}
	Ok(c, credits, nil)
}

// @Summary List movie images by external id
// @Tags catalog
// @Param id path int true "external movie id"
// @Success 200 {object} apiResponse
// @Router /api/catalog/movies/{id}/images [get]
func (h *CatalogHandler) listImages(c *gin.Context) {
	if h.QueryService == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid movie id", nil)
		return
	}
	images, found, err := h.QueryService.ListImages(c.Request.Context(), id)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("list images failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if !found {
		Error(c, http.StatusNotFound, "movie not found", nil)
		return
	}
	Ok(c, images, nil)
}

// @Summary List genres
// @Tags catalog
// @Success 200 {object} apiResponse
// @Router /api/catalog/genres [get]
func (h *CatalogHandler) listGenres(c *gin.Context) {
	if h.QueryService == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	genres, err := h.QueryService.ListGenres(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("list genres failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, genres, nil)
}
