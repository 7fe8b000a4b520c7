package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Client is a thin REST client for the TMDb v3 API. It returns raw JSON
// bodies; shape validation and row mapping happen in the mapper.
type Client struct {
	host       string
	token      string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host, bearerToken string) *Client {
	if host == "" {
		host = "https://api.themoviedb.org/3"
	}
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		token:      bearerToken,
		httpClient: httpClient,
	}
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// FetchMovie returns the raw detail payload for one movie.
func (c *Client) FetchMovie(ctx context.Context, movieID int64) ([]byte, error) {
	return c.doRequest(ctx, fmt.Sprintf("/movie/%d", movieID), nil)
}

// FetchCredits returns the raw cast/crew payload for one movie.
func (c *Client) FetchCredits(ctx context.Context, movieID int64) ([]byte, error) {
	return c.doRequest(ctx, fmt.Sprintf("/movie/%d/credits", movieID), nil)
}

// FetchImages returns the raw backdrops/logos/posters payload for one movie.
func (c *Client) FetchImages(ctx context.Context, movieID int64) ([]byte, error) {
	return c.doRequest(ctx, fmt.Sprintf("/movie/%d/images", movieID), nil)
}

// FetchGenres returns the full genre reference list.
func (c *Client) FetchGenres(ctx context.Context) ([]byte, error) {
	return c.doRequest(ctx, "/genre/movie/list", nil)
}

// FetchPopular returns one page of the popular movie listing.
func (c *Client) FetchPopular(ctx context.Context, page int) ([]byte, error) {
	if page <= 0 {
		page = 1
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	return c.doRequest(ctx, "/movie/popular", query)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsTransient reports whether err is worth retrying: rate limits, server
// errors, or plain transport failures.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Connection resets and timeouts arrive as wrapped url.Errors.
	return err != nil
}
