package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"probrowse/internal/catalog/model"
	pkgerrors "probrowse/pkg/errors"
)

const (
	problemsPath    = "/resources/problems.json"
	contestsPath    = "/resources/contests.json"
	modelsPath      = "/resources/problem-models.json"
	submissionsPath = "/api/v3/user/submissions"
	userInfoPath    = "/api/v3/user_info"

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "probrowse-sync"

	// maxPayloadBytes caps a single upstream response so a misbehaving
	// endpoint cannot exhaust memory.
	maxPayloadBytes = 256 << 20
)

// Config holds upstream API client settings.
type Config struct {
	BaseURL   string        `yaml:"baseURL"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
}

// Client fetches catalog resources and per-user data from the upstream
// archive API. Bulk resources are returned along with the raw payload
// so callers can archive the exact bytes that were applied.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("upstream baseURL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}, nil
}

// NewClientWithHTTP builds a client around an existing http.Client.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) (*Client, error) {
	client, err := NewClient(Config{BaseURL: baseURL})
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		client.http = httpClient
	}
	return client, nil
}

// Problems fetches the full problem catalog.
func (c *Client) Problems(ctx context.Context) ([]model.Problem, []byte, error) {
	raw, err := c.get(ctx, problemsPath, nil)
	if err != nil {
		return nil, nil, err
	}
	var problems []model.Problem
	if err := json.Unmarshal(raw, &problems); err != nil {
		return nil, nil, pkgerrors.Wrap(err, pkgerrors.UpstreamBadPayload)
	}
	return problems, raw, nil
}

// Contests fetches the full contest list.
func (c *Client) Contests(ctx context.Context) ([]model.Contest, []byte, error) {
	raw, err := c.get(ctx, contestsPath, nil)
	if err != nil {
		return nil, nil, err
	}
	var contests []model.Contest
	if err := json.Unmarshal(raw, &contests); err != nil {
		return nil, nil, pkgerrors.Wrap(err, pkgerrors.UpstreamBadPayload)
	}
	return contests, raw, nil
}

// DifficultyModels fetches the fitted models, keyed upstream by
// problem id.
func (c *Client) DifficultyModels(ctx context.Context) ([]model.DifficultyModel, []byte, error) {
	raw, err := c.get(ctx, modelsPath, nil)
	if err != nil {
		return nil, nil, err
	}
	var keyed map[string]model.DifficultyModel
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, nil, pkgerrors.Wrap(err, pkgerrors.UpstreamBadPayload)
	}
	models := make([]model.DifficultyModel, 0, len(keyed))
	for problemID, m := range keyed {
		m.ProblemID = problemID
		models = append(models, m)
	}
	return models, raw, nil
}

// UserSubmissions fetches all submissions of one user from the given
// epoch second onward.
func (c *Client) UserSubmissions(ctx context.Context, userID string, fromSecond int64) ([]model.Submission, error) {
	query := url.Values{}
	query.Set("user", userID)
	query.Set("from_second", fmt.Sprintf("%d", fromSecond))
	raw, err := c.get(ctx, submissionsPath, query)
	if err != nil {
		return nil, err
	}
	var submissions []model.Submission
	if err := json.Unmarshal(raw, &submissions); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.UpstreamBadPayload)
	}
	return submissions, nil
}

// UserRating fetches the current rating of one user. Users with no
// rated history yield a nil rating, not an error.
func (c *Client) UserRating(ctx context.Context, userID string) (*model.UserRating, error) {
	query := url.Values{}
	query.Set("user", userID)
	raw, err := c.get(ctx, userInfoPath, query)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.NotFound) {
			return nil, nil
		}
		return nil, err
	}
	var info struct {
		UserID string `json:"user_id"`
		Rating *int   `json:"rating"`
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.UpstreamBadPayload)
	}
	if info.Rating == nil {
		return nil, nil
	}
	userName := info.UserID
	if userName == "" {
		userName = userID
	}
	return &model.UserRating{UserID: userName, Rating: *info.Rating}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.UpstreamUnavailable)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.UpstreamUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, pkgerrors.Newf(pkgerrors.NotFound, "upstream resource %s not found", path)
	case resp.StatusCode != http.StatusOK:
		return nil, pkgerrors.Newf(pkgerrors.UpstreamUnavailable, "upstream returned status %d for %s", resp.StatusCode, path)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.UpstreamUnavailable)
	}
	return raw, nil
}
